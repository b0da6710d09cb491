package services

import (
	"context"
	"errors"
	"fmt"

	"go-restaurant-pos/models"
	"go-restaurant-pos/store"
)

// StockLedger reserves and releases dish stock inside a unit of work.
// Reservations are conditional decrements in the store, so concurrent
// reservations of the same dish can never take it below zero.
type StockLedger struct {
	recorder Recorder
}

// Reserve takes qty units of the dish. Unlimited stock always succeeds.
func (l StockLedger) Reserve(ctx context.Context, tx store.Tx, dish models.Dish, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidArgument, qty)
	}
	if dish.Stock.Unlimited() {
		return nil
	}
	if _, err := tx.AdjustStock(ctx, dish.ID, -qty); err != nil {
		if errors.Is(err, store.ErrInsufficientStock) {
			if l.recorder != nil {
				l.recorder.StockRejected(dish.ID)
			}
			return fmt.Errorf("%w: %s has fewer than %d left", ErrInsufficientStock, dish.Name, qty)
		}
		return storeError(err, "dish", dish.ID)
	}
	return nil
}

// Release returns qty units of the dish. A dish that has since been removed
// or switched to unlimited stock is left alone.
func (l StockLedger) Release(ctx context.Context, tx store.Tx, dishID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	dish, err := tx.GetDish(ctx, dishID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if dish.Stock.Unlimited() {
		return nil
	}
	if _, err := tx.AdjustStock(ctx, dishID, qty); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// storeError maps a backend lookup failure to the service taxonomy.
func storeError(err error, kind, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return err
}
