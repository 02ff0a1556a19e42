package order

import (
	"orderhub/bizerror"
	"orderhub/domain"
	"orderhub/idgen"
	"orderhub/persistence"
	"orderhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	assignmentIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryOrdersFunc   = QueryOrders
	DetailOrderFunc   = DetailOrder
	ClaimOrderFunc    = ClaimOrder
	CompleteOrderFunc = CompleteOrder
	ReleaseOrderFunc  = ReleaseOrder
	FailOrderFunc     = FailOrder
)

func QueryOrders(query *domain.OrderQuery, sec *session.Context) (*[]domain.Order, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}

	q := persistence.ActiveDataSourceManager.GormDB().Model(&domain.Order{})
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}
	if query.Mine {
		q = q.Where("assignee_id = ?", sec.Identity.ID)
	} else if !sec.IsAdmin() {
		// editors see the open board plus their own work
		q = q.Where("status = ? OR assignee_id = ?", domain.StatusAvailable, sec.Identity.ID)
	}

	var orders []domain.Order
	if err := q.Order("due_time ASC, create_time ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return &orders, nil
}

func DetailOrder(id types.ID, sec *session.Context) (*domain.Order, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}

	o := domain.Order{}
	if err := persistence.ActiveDataSourceManager.GormDB().Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	if !sec.IsAdmin() && o.Status != domain.StatusAvailable && o.AssigneeID != sec.Identity.ID {
		return nil, bizerror.ErrForbidden
	}
	return &o, nil
}

// ClaimOrder transitions an available order to taken by the caller. The update
// is conditional on the current status, so of two concurrent claimants exactly
// one wins and the loser gets ErrOrderNotAvailable.
func ClaimOrder(id types.ID, sec *session.Context) (*domain.Order, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}

	var claimed domain.Order
	now := types.CurrentTimestamp()
	err := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		db := tx.Model(&domain.Order{}).Where("id = ? AND status = ?", id, domain.StatusAvailable).
			Updates(map[string]interface{}{
				"status": domain.StatusTaken, "assignee_id": sec.Identity.ID, "taken_time": now,
			})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			if err := tx.Where("id = ?", id).First(&domain.Order{}).Error; err != nil {
				return err
			}
			return bizerror.ErrOrderNotAvailable
		}

		if err := appendAssignment(tx, id, domain.ActionTaken, sec, now); err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&claimed).Error
	})
	if err != nil {
		return nil, err
	}
	return &claimed, nil
}

func CompleteOrder(id types.ID, c *domain.OrderCompletion, sec *session.Context) (*domain.Order, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}

	var completed domain.Order
	now := types.CurrentTimestamp()
	err := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		db := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ? AND assignee_id = ?", id, domain.StatusTaken, sec.Identity.ID).
			Updates(map[string]interface{}{
				"status": domain.StatusCompleted, "complete_time": now,
				"deliverable": c.Deliverable, "actual_amount": c.ActualAmount, "feedback": c.Feedback,
			})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return explainWorkflowConflict(tx, id, sec)
		}

		if err := appendAssignment(tx, id, domain.ActionCompleted, sec, now); err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&completed).Error
	})
	if err != nil {
		return nil, err
	}
	return &completed, nil
}

// ReleaseOrder gives a taken order back to the board, clearing the assignee
// and the taken timestamp. Allowed to the assignee and to admins.
func ReleaseOrder(id types.ID, sec *session.Context) (*domain.Order, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}

	var released domain.Order
	err := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		cond := conditionTakenBy(id, sec)
		db := tx.Model(&domain.Order{}).Where(cond[0], cond[1:]...).
			Updates(map[string]interface{}{
				"status": domain.StatusAvailable, "assignee_id": 0, "taken_time": types.Timestamp{},
			})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return explainWorkflowConflict(tx, id, sec)
		}
		return tx.Where("id = ?", id).First(&released).Error
	})
	if err != nil {
		return nil, err
	}
	return &released, nil
}

// FailOrder closes a taken order as abandoned: status becomes completed with
// the deliverable sentinel, which is how the persisted schema encodes the
// failed outcome.
func FailOrder(id types.ID, sec *session.Context) (*domain.Order, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}

	var failed domain.Order
	now := types.CurrentTimestamp()
	err := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		cond := conditionTakenBy(id, sec)
		db := tx.Model(&domain.Order{}).Where(cond[0], cond[1:]...).
			Updates(map[string]interface{}{
				"status": domain.StatusCompleted, "complete_time": now,
				"deliverable": domain.DeliverableFailed,
			})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return explainWorkflowConflict(tx, id, sec)
		}

		if err := appendAssignment(tx, id, domain.ActionCompleted, sec, now); err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&failed).Error
	})
	if err != nil {
		return nil, err
	}
	return &failed, nil
}

func conditionTakenBy(id types.ID, sec *session.Context) []interface{} {
	if sec.IsAdmin() {
		return []interface{}{"id = ? AND status = ?", id, domain.StatusTaken}
	}
	return []interface{}{"id = ? AND status = ? AND assignee_id = ?", id, domain.StatusTaken, sec.Identity.ID}
}

// explainWorkflowConflict reloads the row after a zero-row conditional update
// to tell the caller which precondition failed.
func explainWorkflowConflict(tx *gorm.DB, id types.ID, sec *session.Context) error {
	current := domain.Order{}
	if err := tx.Where("id = ?", id).First(&current).Error; err != nil {
		return err
	}
	if current.Status != domain.StatusTaken {
		return bizerror.ErrOrderNotTaken
	}
	return bizerror.ErrNotAssignee
}

func appendAssignment(tx *gorm.DB, orderId types.ID, action string, sec *session.Context, ts types.Timestamp) error {
	actorName := sec.Identity.Nickname
	if actorName == "" {
		actorName = sec.Identity.Name
	}
	assignment := domain.Assignment{
		ID:        idgen.NextID(assignmentIdWorker),
		OrderID:   orderId,
		ActorID:   sec.Identity.ID,
		ActorName: actorName,
		Action:    action,
		Timestamp: ts,
	}
	return tx.Create(&assignment).Error
}
