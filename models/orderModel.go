package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is derived from the order's items; see services.DeriveStatus.
type OrderStatus int

const (
	OrderAwaitingService OrderStatus = iota
	OrderInService
	OrderAwaitingCheckout
	OrderCompleted
	OrderAppended
	OrderCancelled
)

func (s OrderStatus) String() string {
	switch s {
	case OrderAwaitingService:
		return "awaiting_service"
	case OrderInService:
		return "in_service"
	case OrderAwaitingCheckout:
		return "awaiting_checkout"
	case OrderCompleted:
		return "completed"
	case OrderAppended:
		return "appended"
	case OrderCancelled:
		return "cancelled"
	}
	return "unknown"
}

func (s OrderStatus) Valid() bool {
	return s >= OrderAwaitingService && s <= OrderCancelled
}

// Active reports whether an order in this status still holds its table.
func (s OrderStatus) Active() bool {
	return s.Valid() && s != OrderCompleted && s != OrderCancelled
}

// PayType is how a checkout was settled.
type PayType int

const (
	PayUnpaid PayType = iota
	PayWeChat
	PayAlipay
	PayCash
)

func (p PayType) Valid() bool {
	return p >= PayWeChat && p <= PayCash
}

func (p PayType) String() string {
	switch p {
	case PayUnpaid:
		return "unpaid"
	case PayWeChat:
		return "wechat"
	case PayAlipay:
		return "alipay"
	case PayCash:
		return "cash"
	}
	return "unknown"
}

type Order struct {
	Base
	OrderNo        string          `json:"order_no"`
	TableID        string          `json:"table_id"`
	TableNo        string          `json:"table_number"`
	CustomerCount  int             `json:"customer_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PayAmount      decimal.Decimal `json:"pay_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	PayType        PayType         `json:"pay_type"`
	PayTime        *time.Time      `json:"pay_time,omitempty"`
	Status         OrderStatus     `json:"status"`
	Remark         string          `json:"remark,omitempty"`
	CreatedBy      string          `json:"created_by,omitempty"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty"`
}

// Closed reports whether the order's table has been cleared since it was
// settled. A closed order accepts no further items.
func (o *Order) Closed() bool {
	return o.ClosedAt != nil
}

// OrderDetail is an order together with every item ever added to it and the
// checkouts settled against it.
type OrderDetail struct {
	Order    Order       `json:"order"`
	Items    []OrderItem `json:"items"`
	Payments []Payment   `json:"payments,omitempty"`
}
