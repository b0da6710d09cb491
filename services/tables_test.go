package services

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-restaurant-pos/models"
)

func TestDineInWithRoundedDownCheckout(t *testing.T) {
	f := newFixture(t)
	a := f.dish("Dish A", "10.00", models.LimitedStock(10))
	t1 := f.table("T1")

	detail := f.open(t1.ID, line(a.ID, 2))
	assert.True(t, money("20.00").Equal(detail.Order.TotalAmount))
	assert.Equal(t, models.TableOccupied, f.tableStatus(t1.ID))
	assert.Equal(t, models.LimitedStock(8), f.stockOf(a.ID))

	f.advance(detail.Items[0].ID, models.PrepDone)
	assert.Equal(t, models.OrderAwaitingCheckout, f.order(detail.Order.ID).Status)

	res := f.pay(detail.Order.ID, "18.00")
	assert.True(t, money("2.00").Equal(res.Order.DiscountAmount))
	assert.Equal(t, models.OrderCompleted, res.Order.Status)
	assert.Equal(t, models.TablePendingClear, f.tableStatus(t1.ID))

	cleared, err := f.tables.ClearTable(f.ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableFree, cleared.Status)
	assert.Equal(t, models.TableFree, f.tableStatus(t1.ID))

	order := f.order(detail.Order.ID)
	assert.Equal(t, models.OrderCompleted, order.Status)
	assert.True(t, order.Closed())

	// the table can be opened again
	next := f.open(t1.ID, line(a.ID, 1))
	current, err := f.orders.GetOrderByTable(f.ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, next.Order.ID, current.Order.ID)
}

func TestClearTable_RequiresPendingClear(t *testing.T) {
	f := newFixture(t)
	a := f.dish("Tea", "2.00", models.UnlimitedStock())
	free := f.table("T1")
	busy := f.table("T2")
	f.open(busy.ID, line(a.ID, 1))

	_, err := f.tables.ClearTable(f.ctx, free.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = f.tables.ClearTable(f.ctx, busy.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = f.tables.ClearTable(f.ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, models.TableOccupied, f.tableStatus(busy.ID))
}

func TestClearTable_ForcesWorkingOrdersToCompletion(t *testing.T) {
	f := newFixture(t)
	a := f.dish("Tea", "2.00", models.UnlimitedStock())
	t1 := f.table("T1")
	detail := f.open(t1.ID, line(a.ID, 1))

	marked, err := f.tables.MarkPendingClear(f.ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TablePendingClear, marked.Status)
	f.notifier.reset()

	_, err = f.tables.ClearTable(f.ctx, t1.ID)
	require.NoError(t, err)

	order := f.order(detail.Order.ID)
	assert.Equal(t, models.OrderCompleted, order.Status)
	assert.True(t, order.Closed())
	assert.Equal(t, models.PrepDone, f.items(detail.Order.ID)[0].PrepStatus)
	assert.Equal(t, models.TableFree, f.tableStatus(t1.ID))
	assert.Equal(t, []string{models.EventItemStatusChanged, models.EventOrderStatusChanged}, f.notifier.names())

	active, err := f.orders.GetActiveOrders(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestMarkPendingClear_RequiresOccupiedTable(t *testing.T) {
	log, hook := test.NewNullLogger()
	f := newFixture(t, WithLogger(log))
	t1 := f.table("T1")

	_, err := f.tables.MarkPendingClear(f.ctx, t1.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "mark_pending_clear", entry.Data["action"])
	assert.Equal(t, t1.ID, entry.Data["table_id"])
	assert.ErrorIs(t, entry.Data[logrus.ErrorKey].(error), ErrInvalidState)

	_, err = f.tables.MarkPendingClear(f.ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, models.TableFree, f.tableStatus(t1.ID))
}
