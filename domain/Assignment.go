package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	ActionTaken     = "taken"
	ActionCompleted = "completed"
)

// Assignment is an append-only audit entry, written whenever a claim or a
// completion succeeds. Never updated or deleted.
type Assignment struct {
	ID        types.ID        `json:"id" gorm:"primary_key"`
	OrderID   types.ID        `json:"orderId" sql:"index:idx_order"`
	ActorID   types.ID        `json:"actorId"`
	ActorName string          `json:"actorName"`
	Action    string          `json:"action" sql:"type:VARCHAR(32) NOT NULL"`
	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *Assignment) TableName() string {
	return "assignments"
}
