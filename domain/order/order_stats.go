package order

import (
	"orderhub/account"
	"orderhub/bizerror"
	"orderhub/domain"
	"orderhub/persistence"
	"orderhub/session"

	"github.com/fundwit/go-commons/types"
)

var QueryOrderStatsFunc = QueryOrderStats

func QueryOrderStats(sec *session.Context) (*domain.OrderStats, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	if !sec.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB()

	byStatus := []domain.StatusStat{}
	err := db.Model(&domain.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(price), 0) AS total_price").
		Group("status").Scan(&byStatus).Error
	if err != nil {
		return nil, err
	}

	byEditor := []domain.EditorStat{}
	err = db.Model(&domain.Order{}).
		Select("assignee_id, COUNT(*) AS completed_count, COALESCE(SUM(actual_amount), 0) AS total_actual_amount").
		Where("status = ?", domain.StatusCompleted).
		Group("assignee_id").Scan(&byEditor).Error
	if err != nil {
		return nil, err
	}

	ids := make([]types.ID, 0, len(byEditor))
	for _, stat := range byEditor {
		ids = append(ids, stat.AssigneeID)
	}
	names, err := account.QueryAccountNames(ids)
	if err != nil {
		return nil, err
	}
	for i := range byEditor {
		byEditor[i].AssigneeName = names[byEditor[i].AssigneeID]
	}

	return &domain.OrderStats{ByStatus: byStatus, ByEditor: byEditor}, nil
}
