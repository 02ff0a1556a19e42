package sheetsync

import (
	"orderhub/domain"
	"orderhub/idgen"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	orderIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	// PurgeBatchSize bounds the identity list of a single purge delete to
	// respect backend query-size limits.
	PurgeBatchSize = 200

	ReconcileFunc = Reconcile
)

type Report struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Purged    int `json:"purged"`
	TotalRows int `json:"totalRows"`
}

type persistedRow struct {
	ID         types.ID
	SheetRowID string
}

// Reconcile merges the parsed feed snapshot into the orders table. New
// identities are inserted as available; existing ones get their descriptive
// fields refreshed while workflow fields (status, assignee, timestamps,
// deliverable) are never touched, so in-flight work survives sheet edits.
// Purge mode additionally deletes all non-feed orders and every feed order
// whose identity left the snapshot.
func Reconcile(db *gorm.DB, rows []ParsedOrder, totalRows int, purge bool) (*Report, error) {
	report := &Report{TotalRows: totalRows}

	var existing []persistedRow
	if err := db.Model(&domain.Order{}).Where("source = ?", domain.SourceSheet).
		Select("id, sheet_row_id").Scan(&existing).Error; err != nil {
		return nil, err
	}
	known := make(map[string]types.ID, len(existing))
	for _, row := range existing {
		known[row.SheetRowID] = row.ID
	}

	now := types.CurrentTimestamp()
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if seen[row.SheetRowID] {
			// in-run duplicate identity, first occurrence wins
			continue
		}
		seen[row.SheetRowID] = true

		if id, ok := known[row.SheetRowID]; ok {
			err := db.Model(&domain.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
				"client_name": row.ClientName,
				"requirement": row.Requirement,
				"price":       row.Price,
				"due_time":    row.DueTime,
				"raw_payload": row.RawPayload,
				"source":      domain.SourceSheet,
				"update_time": now,
			}).Error
			if err != nil {
				return nil, err
			}
			report.Updated++
			continue
		}

		order := domain.Order{
			ID:          idgen.NextID(orderIdWorker),
			SheetRowID:  row.SheetRowID,
			ClientName:  row.ClientName,
			Requirement: row.Requirement,
			Price:       row.Price,
			DueTime:     row.DueTime,
			Source:      domain.SourceSheet,
			RawPayload:  row.RawPayload,
			CreateTime:  now,
			UpdateTime:  now,
			Status:      domain.StatusAvailable,
		}
		if err := db.Create(&order).Error; err != nil {
			return nil, err
		}
		report.Inserted++
	}

	if purge {
		purged, err := purgeStale(db, seen, known)
		if err != nil {
			return nil, err
		}
		report.Purged = purged
	}

	return report, nil
}

func purgeStale(db *gorm.DB, seen map[string]bool, known map[string]types.ID) (int, error) {
	// non-feed rows go unconditionally
	res := db.Where("source <> ?", domain.SourceSheet).Delete(&domain.Order{})
	if res.Error != nil {
		return 0, res.Error
	}
	purged := int(res.RowsAffected)

	var stale []string
	for identity := range known {
		if !seen[identity] {
			stale = append(stale, identity)
		}
	}
	for start := 0; start < len(stale); start += PurgeBatchSize {
		end := start + PurgeBatchSize
		if end > len(stale) {
			end = len(stale)
		}
		res := db.Where("source = ? AND sheet_row_id IN (?)", domain.SourceSheet, stale[start:end]).
			Delete(&domain.Order{})
		if res.Error != nil {
			return purged, res.Error
		}
		purged += int(res.RowsAffected)
	}
	return purged, nil
}
