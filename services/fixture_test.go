package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"go-restaurant-pos/models"
	"go-restaurant-pos/store"
	"go-restaurant-pos/store/memory"
)

var testNow = time.Date(2024, 10, 15, 12, 30, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.Notification
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Event
	}
	return out
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}

type countingRecorder struct {
	mu        sync.Mutex
	created   int
	cancelled int
	checkouts []decimal.Decimal
	rejected  []string
}

func (r *countingRecorder) OrderCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *countingRecorder) OrderCancelled() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled++
}

func (r *countingRecorder) CheckoutRecorded(amount decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkouts = append(r.checkouts, amount)
}

func (r *countingRecorder) StockRejected(dishID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, dishID)
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *memory.Store
	notifier *recordingNotifier
	recorder *countingRecorder
	orders   *OrderService
	tables   *TableService
	reports  *ReportService
}

func newFixture(t *testing.T, extra ...Option) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &fixture{
		t:        t,
		ctx:      context.Background(),
		store:    memory.New(),
		notifier: &recordingNotifier{},
		recorder: &countingRecorder{},
	}
	opts := []Option{
		WithLogger(log),
		WithNotifier(f.notifier),
		WithRecorder(f.recorder),
		WithClock(func() time.Time { return testNow }),
		WithDispatcher(func(fn func()) { fn() }),
	}
	opts = append(opts, extra...)
	f.orders = NewOrderService(f.store, opts...)
	f.tables = NewTableService(f.store, opts...)
	f.reports = NewReportService(f.store, opts...)
	return f
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) dish(name, price string, stock models.Stock) models.Dish {
	f.t.Helper()
	d := models.Dish{Name: name, Price: money(price), Stock: stock, Active: true}
	d.Touch(testNow)
	require.NoError(f.t, f.store.InsertDish(f.ctx, &d))
	return d
}

func (f *fixture) table(no string) models.Table {
	f.t.Helper()
	tb := models.Table{TableNo: no, Capacity: 4, Status: models.TableFree}
	tb.Touch(testNow)
	require.NoError(f.t, f.store.InsertTable(f.ctx, &tb))
	return tb
}

func (f *fixture) stockOf(dishID string) models.Stock {
	f.t.Helper()
	d, err := f.store.GetDish(f.ctx, dishID)
	require.NoError(f.t, err)
	return d.Stock
}

func (f *fixture) tableStatus(tableID string) models.TableStatus {
	f.t.Helper()
	tb, err := f.store.GetTable(f.ctx, tableID)
	require.NoError(f.t, err)
	return tb.Status
}

func (f *fixture) order(orderID string) models.Order {
	f.t.Helper()
	o, err := f.store.GetOrder(f.ctx, orderID)
	require.NoError(f.t, err)
	return o
}

func (f *fixture) items(orderID string) []models.OrderItem {
	f.t.Helper()
	items, err := f.store.ListOrderItems(f.ctx, orderID)
	require.NoError(f.t, err)
	return items
}

func (f *fixture) allOrders() []models.Order {
	f.t.Helper()
	orders, err := f.store.ListOrders(f.ctx, store.OrderFilter{})
	require.NoError(f.t, err)
	return orders
}

func (f *fixture) open(tableID string, lines ...CartLine) models.OrderDetail {
	f.t.Helper()
	detail, err := f.orders.CreateOrder(f.ctx, CreateOrderCommand{TableID: tableID, CustomerCount: 2, Items: lines, StaffID: "staff-1"})
	require.NoError(f.t, err)
	return detail
}

func (f *fixture) advance(itemID string, status models.PrepStatus) {
	f.t.Helper()
	_, err := f.orders.AdvanceItemStatus(f.ctx, AdvanceItemCommand{ItemID: itemID, Status: status})
	require.NoError(f.t, err)
}

func (f *fixture) pay(orderID, amount string) CheckoutResult {
	f.t.Helper()
	res, err := f.orders.Checkout(f.ctx, CheckoutCommand{OrderID: orderID, PayType: models.PayCash, Amount: money(amount)})
	require.NoError(f.t, err)
	return res
}

func line(dishID string, qty int) CartLine {
	return CartLine{DishID: dishID, Quantity: qty}
}

func sumSubtotals(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return total
}
