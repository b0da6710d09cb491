package models

import (
	"encoding/json"
	"fmt"
)

// UnlimitedLevel is how backends persist an unlimited stock counter.
const UnlimitedLevel = -1

// Stock is the available quantity of a dish: either Limited(n) or Unlimited.
// The zero value is Limited(0).
type Stock struct {
	unlimited bool
	quantity  int
}

func LimitedStock(n int) Stock {
	if n < 0 {
		n = 0
	}
	return Stock{quantity: n}
}

func UnlimitedStock() Stock {
	return Stock{unlimited: true}
}

// StockFromLevel converts a persisted counter, where any negative value
// means unlimited, into a Stock.
func StockFromLevel(level int) Stock {
	if level < 0 {
		return UnlimitedStock()
	}
	return LimitedStock(level)
}

// Level is the persisted form of s.
func (s Stock) Level() int {
	if s.unlimited {
		return UnlimitedLevel
	}
	return s.quantity
}

func (s Stock) Unlimited() bool {
	return s.unlimited
}

// Quantity returns the available count; ok is false for unlimited stock.
func (s Stock) Quantity() (n int, ok bool) {
	if s.unlimited {
		return 0, false
	}
	return s.quantity, true
}

// Covers reports whether qty units can be reserved.
func (s Stock) Covers(qty int) bool {
	return s.unlimited || s.quantity >= qty
}

// Reserve returns the stock left after taking qty units.
func (s Stock) Reserve(qty int) (Stock, bool) {
	if s.unlimited {
		return s, true
	}
	if qty < 0 || s.quantity < qty {
		return s, false
	}
	return Stock{quantity: s.quantity - qty}, true
}

// Release returns qty units. Unlimited stock is unchanged.
func (s Stock) Release(qty int) Stock {
	if s.unlimited || qty <= 0 {
		return s
	}
	return Stock{quantity: s.quantity + qty}
}

func (s Stock) String() string {
	if s.unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", s.quantity)
}

type stockJSON struct {
	Unlimited bool `json:"unlimited"`
	Available *int `json:"available,omitempty"`
}

func (s Stock) MarshalJSON() ([]byte, error) {
	if s.unlimited {
		return json.Marshal(stockJSON{Unlimited: true})
	}
	n := s.quantity
	return json.Marshal(stockJSON{Available: &n})
}

func (s *Stock) UnmarshalJSON(data []byte) error {
	var raw stockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Unlimited:
		*s = UnlimitedStock()
	case raw.Available != nil:
		if *raw.Available < 0 {
			return fmt.Errorf("stock: available must not be negative, got %d", *raw.Available)
		}
		*s = LimitedStock(*raw.Available)
	default:
		return fmt.Errorf("stock: either unlimited or available is required")
	}
	return nil
}
