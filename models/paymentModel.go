package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records one checkout against an order.
type Payment struct {
	Base
	OrderID   string          `json:"order_id"`
	PayType   PayType         `json:"pay_type"`
	Amount    decimal.Decimal `json:"amount"`
	ShouldPay decimal.Decimal `json:"should_pay"`
	Discount  decimal.Decimal `json:"discount"`
	ItemIDs   []string        `json:"order_item_ids"`
	PaidAt    time.Time       `json:"paid_at"`
}
