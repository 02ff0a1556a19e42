package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

type OrderStatus string

const (
	StatusAvailable OrderStatus = "available"
	StatusTaken     OrderStatus = "taken"
	StatusCompleted OrderStatus = "completed"
)

// DeliverableFailed marks an abandoned engagement: the row keeps status
// "completed" and only this sentinel in the deliverable field tells the two
// outcomes apart.
const DeliverableFailed = "FAILED"

// SourceSheet tags orders created from the intake sheet feed.
const SourceSheet = "sheet"

type Order struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	SheetRowID string   `json:"sheetRowId" sql:"type:VARCHAR(128);index:idx_sheet_row"`

	ClientName  string          `json:"clientName"`
	Requirement string          `json:"requirement" sql:"type:TEXT"`
	Price       int64           `json:"price"`
	DueTime     types.Timestamp `json:"dueTime" sql:"type:DATETIME(6)"`
	Source      string          `json:"source" sql:"type:VARCHAR(32) NOT NULL"`
	RawPayload  RawPayload      `json:"rawPayload" sql:"type:TEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6)"`

	Status       OrderStatus     `json:"status" sql:"type:VARCHAR(32) NOT NULL"`
	AssigneeID   types.ID        `json:"assigneeId"`
	TakenTime    types.Timestamp `json:"takenTime" sql:"type:DATETIME(6)"`
	CompleteTime types.Timestamp `json:"completeTime" sql:"type:DATETIME(6)"`
	Deliverable  string          `json:"deliverable" sql:"type:VARCHAR(512)"`
	ActualAmount int64           `json:"actualAmount"`
	Feedback     string          `json:"feedback" sql:"type:TEXT"`
}

func (o *Order) TableName() string {
	return "orders"
}

func (o *Order) Failed() bool {
	return o.Status == StatusCompleted && o.Deliverable == DeliverableFailed
}

// RawPayload is an opaque copy of the originating feed row, persisted as JSON.
type RawPayload map[string]string

func (t RawPayload) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *RawPayload) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), c)
}

type OrderQuery struct {
	Status OrderStatus `json:"status" form:"status"`
	Mine   bool        `json:"mine" form:"mine"`
}

type OrderCompletion struct {
	Deliverable  string `json:"deliverable" validate:"required"`
	ActualAmount int64  `json:"actualAmount" validate:"gte=0"`
	Feedback     string `json:"feedback"`
}
