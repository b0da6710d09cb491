package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"go-restaurant-pos/models"
	"go-restaurant-pos/store"
)

type TableService struct {
	*deps
}

func NewTableService(st store.Store, opts ...Option) *TableService {
	return &TableService{deps: newDeps(st, opts)}
}

// ClearTable frees a table that is waiting to be cleared. Orders still
// working on it are forced to completion and every settled order of the
// sitting is closed, so none of them accepts more items.
func (s *TableService) ClearTable(ctx context.Context, tableID string) (models.Table, error) {
	var (
		result models.Table
		evs    events
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		evs = nil
		// orders are locked before their table, as in every other operation
		open, err := tx.UnclosedOrdersForTable(ctx, tableID)
		if err != nil {
			return err
		}
		orders := make([]models.Order, 0, len(open))
		for _, o := range open {
			order, err := tx.GetOrder(ctx, o.ID)
			if err != nil {
				return storeError(err, "order", o.ID)
			}
			orders = append(orders, order)
		}
		table, err := tx.GetTable(ctx, tableID)
		if err != nil {
			return storeError(err, "table", tableID)
		}
		if table.Status != models.TablePendingClear {
			return fmt.Errorf("%w: table %s is %s, not pending clear", ErrInvalidState, table.TableNo, table.Status)
		}
		now := s.now()
		closedAt := now.UTC().Truncate(time.Millisecond)
		for _, order := range orders {
			if order.Status == models.OrderCancelled || order.Closed() {
				continue
			}
			if order.Status.Active() {
				items, err := tx.ListOrderItems(ctx, order.ID)
				if err != nil {
					return err
				}
				if err := s.finishItems(ctx, tx, items, now, &evs); err != nil {
					return err
				}
				order.Status = models.OrderCompleted
				evs.orderStatus(order)
			}
			order.ClosedAt = &closedAt
			order.Touch(now)
			if err := tx.UpdateOrder(ctx, &order); err != nil {
				return err
			}
		}
		if err := tx.UpdateTableStatus(ctx, table.ID, models.TableFree); err != nil {
			return err
		}
		table.Status = models.TableFree
		result = table
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"action": "clear_table", "table_id": tableID}).Warn("table not cleared")
		return models.Table{}, err
	}
	s.publish(evs)
	s.log.WithFields(logrus.Fields{"action": "clear_table", "table_id": tableID}).Info("table cleared")
	return result, nil
}

// MarkPendingClear flags an occupied table for clearing ahead of its order
// completing, so the floor staff can release it early. The table then reads
// PendingClear while its order is still working; ClearTable completes that
// order when the table is freed.
func (s *TableService) MarkPendingClear(ctx context.Context, tableID string) (models.Table, error) {
	var result models.Table
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		table, err := tx.GetTable(ctx, tableID)
		if err != nil {
			return storeError(err, "table", tableID)
		}
		if table.Status != models.TableOccupied {
			return fmt.Errorf("%w: table %s is %s, not occupied", ErrInvalidState, table.TableNo, table.Status)
		}
		if err := tx.UpdateTableStatus(ctx, table.ID, models.TablePendingClear); err != nil {
			return err
		}
		table.Status = models.TablePendingClear
		result = table
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"action": "mark_pending_clear", "table_id": tableID}).Warn("table not marked for clearing")
		return models.Table{}, err
	}
	s.log.WithFields(logrus.Fields{"action": "mark_pending_clear", "table_id": tableID}).Info("table marked for clearing")
	return result, nil
}
