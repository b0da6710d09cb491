package models

import "github.com/shopspring/decimal"

// PrepStatus is the kitchen progress of a single line item.
type PrepStatus int

const (
	PrepPending PrepStatus = iota
	PrepCooking
	PrepDone
)

func (s PrepStatus) Valid() bool {
	return s >= PrepPending && s <= PrepDone
}

func (s PrepStatus) String() string {
	switch s {
	case PrepPending:
		return "pending"
	case PrepCooking:
		return "cooking"
	case PrepDone:
		return "done"
	}
	return "unknown"
}

// OrderItem is one dish line of an order. Name, image and price are copied
// from the dish when the item is added, so later menu edits never change a
// placed order.
type OrderItem struct {
	Base
	OrderID    string          `json:"order_id"`
	DishID     string          `json:"food_id"`
	DishName   string          `json:"food_name"`
	DishImage  string          `json:"food_image,omitempty"`
	Price      decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Remark     string          `json:"remark,omitempty"`
	PrepStatus PrepStatus      `json:"status"`
	IsPaid     bool            `json:"is_paid"`
}

// NewOrderItem snapshots dish into a pending, unpaid line of qty units.
func NewOrderItem(orderID string, dish Dish, qty int, remark string) OrderItem {
	return OrderItem{
		OrderID:    orderID,
		DishID:     dish.ID,
		DishName:   dish.Name,
		DishImage:  dish.Image,
		Price:      dish.Price,
		Quantity:   qty,
		Subtotal:   dish.Price.Mul(decimal.NewFromInt(int64(qty))),
		Remark:     remark,
		PrepStatus: PrepPending,
	}
}
