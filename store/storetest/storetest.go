// Package storetest holds the behaviour every store.Store backend must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"go-restaurant-pos/models"
	"go-restaurant-pos/services"
	"go-restaurant-pos/store"
)

// Run exercises a backend. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("RollsBackOnError", func(t *testing.T) { rollsBack(t, newStore(t)) })
	t.Run("AdjustStock", func(t *testing.T) { adjustStock(t, newStore(t)) })
	t.Run("DuplicateOrderNoKeepsTxUsable", func(t *testing.T) { duplicateOrderNo(t, newStore(t)) })
	t.Run("OrderRoundTrip", func(t *testing.T) { orderRoundTrip(t, newStore(t)) })
	t.Run("TableOrderQueries", func(t *testing.T) { tableOrderQueries(t, newStore(t)) })
	t.Run("CatalogUniqueKeys", func(t *testing.T) { catalogUniqueKeys(t, newStore(t)) })
	t.Run("ClearTableRacesCheckout", func(t *testing.T) { clearTableRacesCheckout(t, newStore(t)) })
}

var base = time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedDish(t *testing.T, s store.Store, name, price string, stock models.Stock) models.Dish {
	t.Helper()
	d := models.Dish{Name: name, Price: money(price), Stock: stock, Active: true}
	d.Touch(base)
	require.NoError(t, s.InsertDish(context.Background(), &d))
	return d
}

func seedTable(t *testing.T, s store.Store, no string) models.Table {
	t.Helper()
	tb := models.Table{TableNo: no, Capacity: 4}
	tb.Touch(base)
	require.NoError(t, s.InsertTable(context.Background(), &tb))
	return tb
}

func newOrder(tableID, orderNo string, status models.OrderStatus, at time.Time) models.Order {
	o := models.Order{
		OrderNo:        orderNo,
		TableID:        tableID,
		CustomerCount:  2,
		TotalAmount:    decimal.Zero,
		PayAmount:      decimal.Zero,
		DiscountAmount: decimal.Zero,
		Status:         status,
	}
	o.Touch(at)
	return o
}

func rollsBack(t *testing.T, s store.Store) {
	ctx := context.Background()
	dish := seedDish(t, s, "Tea", "3.00", models.LimitedStock(2))
	table := seedTable(t, s, "R1")

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.AdjustStock(ctx, dish.ID, -2)
		require.NoError(t, err)
		require.NoError(t, tx.UpdateTableStatus(ctx, table.ID, models.TableOccupied))
		o := newOrder(table.ID, "ORD-RB", models.OrderAwaitingService, base)
		require.NoError(t, tx.InsertOrder(ctx, &o))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetDish(ctx, dish.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LimitedStock(2), got.Stock)
	tb, err := s.GetTable(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableFree, tb.Status)
	orders, err := s.ListOrders(ctx, store.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func adjustStock(t *testing.T, s store.Store) {
	ctx := context.Background()
	limited := seedDish(t, s, "Crab", "88.00", models.LimitedStock(1))
	unlimited := seedDish(t, s, "Rice", "2.00", models.UnlimitedStock())

	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.AdjustStock(ctx, limited.ID, -2)
		assert.ErrorIs(t, err, store.ErrInsufficientStock)
		left, err := tx.AdjustStock(ctx, limited.ID, -1)
		require.NoError(t, err)
		assert.Equal(t, models.LimitedStock(0), left)
		back, err := tx.AdjustStock(ctx, limited.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, models.LimitedStock(3), back)

		same, err := tx.AdjustStock(ctx, unlimited.ID, -100)
		require.NoError(t, err)
		assert.True(t, same.Unlimited())

		_, err = tx.AdjustStock(ctx, uuid.NewString(), -1)
		assert.ErrorIs(t, err, store.ErrNotFound)
		return nil
	})
	require.NoError(t, err)

	got, err := s.GetDish(ctx, limited.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LimitedStock(3), got.Stock)
	got, err = s.GetDish(ctx, unlimited.ID)
	require.NoError(t, err)
	assert.True(t, got.Stock.Unlimited())
}

func duplicateOrderNo(t *testing.T, s store.Store) {
	ctx := context.Background()
	table := seedTable(t, s, "R2")

	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		first := newOrder(table.ID, "ORD-DUP", models.OrderAwaitingService, base)
		require.NoError(t, tx.InsertOrder(ctx, &first))
		again := newOrder(table.ID, "ORD-DUP", models.OrderAwaitingService, base)
		assert.ErrorIs(t, tx.InsertOrder(ctx, &again), store.ErrDuplicateKey)
		again.ID = ""
		again.OrderNo = "ORD-DUP-2"
		return tx.InsertOrder(ctx, &again)
	})
	require.NoError(t, err)

	orders, err := s.ListOrders(ctx, store.OrderFilter{TableID: table.ID, Ascending: true})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-DUP", orders[0].OrderNo)
	assert.Equal(t, "ORD-DUP-2", orders[1].OrderNo)
}

func orderRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	dish := seedDish(t, s, "Noodles", "12.50", models.UnlimitedStock())
	table := seedTable(t, s, "R3")
	paidAt := base.Add(30 * time.Minute)

	var order models.Order
	var item models.OrderItem
	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		order = newOrder(table.ID, "ORD-RT", models.OrderAwaitingService, base)
		order.TableNo = table.TableNo
		order.TotalAmount = money("25.00")
		order.PayAmount = money("25.00")
		order.Remark = "no onion"
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}
		item = models.NewOrderItem(order.ID, dish, 2, "spicy")
		item.Touch(base)
		if err := tx.InsertOrderItem(ctx, &item); err != nil {
			return err
		}
		second := models.NewOrderItem(order.ID, dish, 1, "")
		second.Touch(base)
		return tx.InsertOrderItem(ctx, &second)
	})
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)
	require.NotEmpty(t, item.ID)

	err = s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		o, err := tx.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		it, err := tx.GetOrderItem(ctx, item.ID)
		require.NoError(t, err)
		it.IsPaid = true
		it.PrepStatus = models.PrepDone
		it.Touch(paidAt)
		require.NoError(t, tx.UpdateOrderItem(ctx, &it))

		o.PayType = models.PayCash
		o.PayTime = &paidAt
		o.PayAmount = money("24.00")
		o.DiscountAmount = money("1.00")
		o.Status = models.OrderCompleted
		o.Touch(paidAt)
		require.NoError(t, tx.UpdateOrder(ctx, &o))

		p := models.Payment{
			OrderID:   o.ID,
			PayType:   models.PayCash,
			Amount:    money("24.00"),
			ShouldPay: money("25.00"),
			Discount:  money("1.00"),
			ItemIDs:   []string{it.ID},
			PaidAt:    paidAt,
		}
		p.Touch(paidAt)
		return tx.InsertPayment(ctx, &p)
	})
	require.NoError(t, err)

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-RT", got.OrderNo)
	assert.Equal(t, table.TableNo, got.TableNo)
	assert.Equal(t, "no onion", got.Remark)
	assert.Equal(t, models.OrderCompleted, got.Status)
	assert.Equal(t, models.PayCash, got.PayType)
	assert.True(t, money("25.00").Equal(got.TotalAmount), got.TotalAmount.String())
	assert.True(t, money("24.00").Equal(got.PayAmount), got.PayAmount.String())
	assert.True(t, money("1.00").Equal(got.DiscountAmount), got.DiscountAmount.String())
	require.NotNil(t, got.PayTime)
	assert.True(t, paidAt.Equal(*got.PayTime))
	assert.True(t, base.Equal(got.CreatedAt))
	assert.Nil(t, got.ClosedAt)

	items, err := s.ListOrderItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, item.ID, items[0].ID)
	assert.True(t, items[0].IsPaid)
	assert.Equal(t, models.PrepDone, items[0].PrepStatus)
	assert.Equal(t, "spicy", items[0].Remark)
	assert.True(t, money("25.00").Equal(items[0].Subtotal))
	assert.True(t, money("12.50").Equal(items[1].Price))
	assert.False(t, items[1].IsPaid)

	byOrder, err := s.ItemsForOrders(ctx, []string{order.ID})
	require.NoError(t, err)
	assert.Len(t, byOrder, 2)

	payments, err := s.ListPayments(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, []string{item.ID}, payments[0].ItemIDs)
	assert.True(t, money("24.00").Equal(payments[0].Amount))
	assert.True(t, money("25.00").Equal(payments[0].ShouldPay))

	_, err = s.GetOrder(ctx, uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func tableOrderQueries(t *testing.T, s store.Store) {
	ctx := context.Background()
	t1 := seedTable(t, s, "Q1")
	t2 := seedTable(t, s, "Q2")
	closed := base

	orders := []models.Order{
		newOrder(t1.ID, "A", models.OrderCompleted, base),
		newOrder(t1.ID, "B", models.OrderCancelled, base.Add(time.Minute)),
		newOrder(t1.ID, "C", models.OrderCompleted, base.Add(2*time.Minute)),
		newOrder(t1.ID, "D", models.OrderAppended, base.Add(3*time.Minute)),
		newOrder(t2.ID, "E", models.OrderInService, base.Add(4*time.Minute)),
	}
	orders[0].ClosedAt = &closed

	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		for i := range orders {
			require.NoError(t, tx.InsertOrder(ctx, &orders[i]))
		}
		active, err := tx.ActiveOrdersForTable(ctx, t1.ID)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "D", active[0].OrderNo)

		n, err := tx.CountActiveOrdersForTable(ctx, t2.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		open, err := tx.UnclosedOrdersForTable(ctx, t1.ID)
		require.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, "C", open[0].OrderNo)
		assert.Equal(t, "D", open[1].OrderNo)
		return nil
	})
	require.NoError(t, err)

	current, err := s.CurrentOrderForTable(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, "D", current.OrderNo)
	_, err = s.CurrentOrderForTable(ctx, uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.ListOrders(ctx, store.OrderFilter{
		Statuses:    []models.OrderStatus{models.OrderCompleted},
		CreatedFrom: base.Add(time.Minute),
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "C", list[0].OrderNo)

	bounded, err := s.ListOrders(ctx, store.OrderFilter{CreatedTo: base.Add(time.Minute)})
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, "A", bounded[0].OrderNo)

	newestFirst, err := s.ListOrders(ctx, store.OrderFilter{TableID: t1.ID})
	require.NoError(t, err)
	require.Len(t, newestFirst, 4)
	assert.Equal(t, "D", newestFirst[0].OrderNo)
	assert.Equal(t, "A", newestFirst[3].OrderNo)
}

func catalogUniqueKeys(t *testing.T, s store.Store) {
	ctx := context.Background()
	table := seedTable(t, s, "U1")
	dup := models.Table{TableNo: "U1"}
	dup.Touch(base)
	assert.ErrorIs(t, s.InsertTable(ctx, &dup), store.ErrDuplicateKey)

	table.Name = "Window"
	table.Capacity = 6
	table.Status = models.TableOccupied
	require.NoError(t, s.UpdateTable(ctx, &table))
	got, err := s.GetTable(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, "Window", got.Name)
	assert.Equal(t, 6, got.Capacity)
	assert.Equal(t, models.TableFree, got.Status, "status is only written by UpdateTableStatus")

	second := seedTable(t, s, "U2")
	second.TableNo = "U1"
	assert.ErrorIs(t, s.UpdateTable(ctx, &second), store.ErrDuplicateKey)

	missing := models.Table{Base: models.Base{ID: uuid.NewString()}, TableNo: "U9"}
	assert.ErrorIs(t, s.UpdateTable(ctx, &missing), store.ErrNotFound)

	user := models.User{Name: "Chef", Email: "chef@example.com", Role: models.RoleKitchen, PasswordHash: "x"}
	user.Touch(base)
	require.NoError(t, s.InsertUser(ctx, &user))
	other := models.User{Name: "Chef2", Email: "Chef@Example.com", Role: models.RoleKitchen, PasswordHash: "y"}
	other.Touch(base)
	assert.ErrorIs(t, s.InsertUser(ctx, &other), store.ErrDuplicateKey)

	found, err := s.FindUserByEmail(ctx, "CHEF@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "x", found.PasswordHash)
	_, err = s.FindUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	dish := seedDish(t, s, "Soup", "6.00", models.LimitedStock(4))
	dish.Price = money("6.50")
	dish.Active = false
	dish.Stock = models.LimitedStock(99)
	require.NoError(t, s.UpdateDish(ctx, &dish))
	d, err := s.GetDish(ctx, dish.ID)
	require.NoError(t, err)
	assert.True(t, money("6.50").Equal(d.Price))
	assert.False(t, d.Active)
	assert.Equal(t, models.LimitedStock(4), d.Stock, "UpdateDish must not write stock")

	require.NoError(t, s.SetDishStock(ctx, dish.ID, models.UnlimitedStock()))
	d, err = s.GetDish(ctx, dish.ID)
	require.NoError(t, err)
	assert.True(t, d.Stock.Unlimited())
	assert.ErrorIs(t, s.SetDishStock(ctx, uuid.NewString(), models.LimitedStock(1)), store.ErrNotFound)

	dishes, err := s.ListDishes(ctx)
	require.NoError(t, err)
	assert.Len(t, dishes, 1)
	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 1)
}

// clearTableRacesCheckout runs a table clear and the checkout that completes
// the table's order at the same time. Both must succeed in either order.
func clearTableRacesCheckout(t *testing.T, s store.Store) {
	ctx := context.Background()
	log := logrus.New()
	log.SetOutput(io.Discard)
	opts := []services.Option{
		services.WithLogger(log),
		services.WithDispatcher(func(fn func()) { fn() }),
	}
	orders := services.NewOrderService(s, opts...)
	tables := services.NewTableService(s, opts...)
	dish := seedDish(t, s, "Noodles", "8.00", models.UnlimitedStock())

	for i := 0; i < 10; i++ {
		table := seedTable(t, s, fmt.Sprintf("R%d", i))
		detail, err := orders.CreateOrder(ctx, services.CreateOrderCommand{
			TableID: table.ID,
			Items:   []services.CartLine{{DishID: dish.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		_, err = orders.AdvanceItemStatus(ctx, services.AdvanceItemCommand{ItemID: detail.Items[0].ID, Status: models.PrepDone})
		require.NoError(t, err)
		_, err = tables.MarkPendingClear(ctx, table.ID)
		require.NoError(t, err)

		var g errgroup.Group
		g.Go(func() error {
			_, err := tables.ClearTable(ctx, table.ID)
			return err
		})
		g.Go(func() error {
			_, err := orders.Checkout(ctx, services.CheckoutCommand{OrderID: detail.Order.ID, PayType: models.PayCash, Amount: money("8.00")})
			return err
		})
		require.NoError(t, g.Wait(), "round %d", i)

		got, err := s.GetTable(ctx, table.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TableFree, got.Status)
		order, err := s.GetOrder(ctx, detail.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderCompleted, order.Status)
		assert.True(t, order.Closed())
		unpaid, err := orders.GetUnpaidAmount(ctx, detail.Order.ID)
		require.NoError(t, err)
		assert.True(t, unpaid.IsZero())
	}
}
