package models

// TableStatus is the occupancy of a dining table.
type TableStatus int

const (
	TableFree TableStatus = iota
	TableOccupied
	TablePendingClear
)

func (s TableStatus) String() string {
	switch s {
	case TableFree:
		return "free"
	case TableOccupied:
		return "occupied"
	case TablePendingClear:
		return "pending_clear"
	}
	return "unknown"
}

type Table struct {
	Base
	TableNo  string      `json:"table_number" validate:"required,max=20"`
	Name     string      `json:"name,omitempty"`
	Capacity int         `json:"number_of_guests" validate:"gte=1,lte=100"`
	Status   TableStatus `json:"status"`
}
