package models

import "time"

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventItemStatusChanged  = "item.status_changed"
)

// Notification is the message broadcast to kitchen displays.
type Notification struct {
	Event   string      `json:"event"`
	OrderID string      `json:"order_id"`
	ItemID  string      `json:"order_item_id,omitempty"`
	TableID string      `json:"table_id,omitempty"`
	Status  int         `json:"status"`
	Payload interface{} `json:"payload,omitempty"`
	SentAt  time.Time   `json:"sent_at"`
}
