package models

import "github.com/shopspring/decimal"

// Dish is a menu entry. The order engine only reads Price, Active and Stock,
// and writes stock deltas.
type Dish struct {
	Base
	Name     string          `json:"name" validate:"required,min=2,max=100"`
	Category string          `json:"category,omitempty"`
	Image    string          `json:"food_image,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Stock    Stock           `json:"stock"`
	Active   bool            `json:"active"`
}
