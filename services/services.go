// Package services is the order and table lifecycle engine. It owns status
// derivation, stock reservation and checkout reconciliation, and reaches
// persistence and the kitchen only through the store.Store and Notifier
// interfaces.
package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"go-restaurant-pos/models"
	"go-restaurant-pos/store"
)

const defaultNotifyTimeout = 5 * time.Second

// Notifier receives kitchen events after the change that produced them has
// committed. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Recorder observes business outcomes, typically for metrics.
type Recorder interface {
	OrderCreated()
	OrderCancelled()
	CheckoutRecorded(amount decimal.Decimal)
	StockRejected(dishID string)
}

type Option func(*deps)

func WithNotifier(n Notifier) Option {
	return func(d *deps) { d.notifier = n }
}

func WithRecorder(r Recorder) Option {
	return func(d *deps) { d.recorder = r }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(d *deps) { d.log = log }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

// WithOrderNumbers replaces the order number generator.
func WithOrderNumbers(gen func(time.Time) string) Option {
	return func(d *deps) { d.orderNo = gen }
}

// WithDispatcher replaces the goroutine that delivers notifications.
func WithDispatcher(dispatch func(func())) Option {
	return func(d *deps) { d.dispatch = dispatch }
}

// deps is shared by every service built from the same options.
type deps struct {
	store         store.Store
	notifier      Notifier
	recorder      Recorder
	ledger        StockLedger
	log           logrus.FieldLogger
	now           func() time.Time
	orderNo       func(time.Time) string
	dispatch      func(func())
	notifyTimeout time.Duration
}

func newDeps(st store.Store, opts []Option) *deps {
	d := &deps{
		store:         st,
		recorder:      nopRecorder{},
		log:           logrus.StandardLogger(),
		now:           time.Now,
		orderNo:       NewOrderNo,
		dispatch:      func(f func()) { go f() },
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.ledger = StockLedger{recorder: d.recorder}
	return d
}

// events collects the notifications of one unit of work.
type events []models.Notification

func (e *events) orderCreated(o models.Order) {
	*e = append(*e, models.Notification{
		Event:   models.EventOrderCreated,
		OrderID: o.ID,
		TableID: o.TableID,
		Status:  int(o.Status),
		Payload: map[string]interface{}{"order_no": o.OrderNo, "table_number": o.TableNo},
	})
}

func (e *events) orderStatus(o models.Order) {
	*e = append(*e, models.Notification{
		Event:   models.EventOrderStatusChanged,
		OrderID: o.ID,
		TableID: o.TableID,
		Status:  int(o.Status),
	})
}

func (e *events) itemStatus(it models.OrderItem) {
	*e = append(*e, models.Notification{
		Event:   models.EventItemStatusChanged,
		OrderID: it.OrderID,
		ItemID:  it.ID,
		Status:  int(it.PrepStatus),
		Payload: map[string]interface{}{"food_name": it.DishName, "quantity": it.Quantity},
	})
}

// publish hands committed events to the notifier without waiting for it.
func (d *deps) publish(evs events) {
	if d.notifier == nil || len(evs) == 0 {
		return
	}
	d.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.notifyTimeout)
		defer cancel()
		for _, ev := range evs {
			ev.SentAt = d.now().UTC()
			if err := d.notifier.Notify(ctx, ev); err != nil {
				d.log.WithError(err).WithFields(logrus.Fields{
					"action":   "notify",
					"event":    ev.Event,
					"order_id": ev.OrderID,
				}).Warn("kitchen notification failed")
			}
		}
	})
}

type nopRecorder struct{}

func (nopRecorder) OrderCreated()                    {}
func (nopRecorder) OrderCancelled()                  {}
func (nopRecorder) CheckoutRecorded(decimal.Decimal) {}
func (nopRecorder) StockRejected(string)             {}
