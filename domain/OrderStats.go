package domain

import "github.com/fundwit/go-commons/types"

type StatusStat struct {
	Status     OrderStatus `json:"status"`
	Count      int         `json:"count"`
	TotalPrice int64       `json:"totalPrice"`
}

type EditorStat struct {
	AssigneeID        types.ID `json:"assigneeId"`
	AssigneeName      string   `json:"assigneeName"`
	CompletedCount    int      `json:"completedCount"`
	TotalActualAmount int64    `json:"totalActualAmount"`
}

type OrderStats struct {
	ByStatus []StatusStat `json:"byStatus"`
	ByEditor []EditorStat `json:"byEditor"`
}
