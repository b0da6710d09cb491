package services

import "go-restaurant-pos/models"

// DeriveStatus is the status implied by an order's items alone, checked in
// precedence order: all done and paid, all done, any started, none started.
// An order without items is awaiting service.
func DeriveStatus(items []models.OrderItem) models.OrderStatus {
	if len(items) == 0 {
		return models.OrderAwaitingService
	}
	allDone, allPaid, started := true, true, false
	for _, it := range items {
		if it.PrepStatus != models.PrepDone {
			allDone = false
		}
		if !it.IsPaid {
			allPaid = false
		}
		if it.PrepStatus == models.PrepCooking || it.PrepStatus == models.PrepDone {
			started = true
		}
	}
	switch {
	case allDone && allPaid:
		return models.OrderCompleted
	case allDone:
		return models.OrderAwaitingCheckout
	case started:
		return models.OrderInService
	}
	return models.OrderAwaitingService
}

// NextStatus applies the status policy to an order currently in current.
// Cancelled is final. Once an order has been completed it is either completed
// again or appended; it never drops back to an earlier working status.
func NextStatus(current models.OrderStatus, items []models.OrderItem) models.OrderStatus {
	if current == models.OrderCancelled {
		return current
	}
	derived := DeriveStatus(items)
	if current == models.OrderCompleted || current == models.OrderAppended {
		if derived == models.OrderCompleted {
			return models.OrderCompleted
		}
		return models.OrderAppended
	}
	return derived
}

// RecomputeFromScratch is the history-free policy: the status is whatever
// the items imply, except that Cancelled stays Cancelled. The engine uses
// NextStatus; this is kept so both policies stay covered by tests.
func RecomputeFromScratch(current models.OrderStatus, items []models.OrderItem) models.OrderStatus {
	if current == models.OrderCancelled {
		return current
	}
	return DeriveStatus(items)
}
