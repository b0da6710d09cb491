// Package store defines the persistence contract of the order engine and is
// implemented by the memory, mongostore and pgstore backends.
package store

import (
	"context"
	"errors"
	"time"

	"go-restaurant-pos/models"
)

var (
	ErrNotFound          = errors.New("store: record not found")
	ErrDuplicateKey      = errors.New("store: duplicate key")
	ErrInsufficientStock = errors.New("store: insufficient stock")
)

// ActiveOrderStatuses are the statuses in which an order holds its table.
var ActiveOrderStatuses = []models.OrderStatus{
	models.OrderAwaitingService,
	models.OrderInService,
	models.OrderAwaitingCheckout,
	models.OrderAppended,
}

// Store is a transactional backend.
type Store interface {
	Reader
	Catalog

	// WithinTx runs fn as one unit of work. Every write made through tx
	// commits together when fn returns nil and is discarded otherwise.
	// Backends may call fn more than once when a transient write conflict
	// forces a retry, so fn must not leak state between attempts.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Tx is the view of the store inside a unit of work. Get methods for orders
// and tables lock the record until the unit of work ends, which serializes
// concurrent operations on the same order or table.
type Tx interface {
	GetOrder(ctx context.Context, id string) (models.Order, error)
	GetTable(ctx context.Context, id string) (models.Table, error)
	GetDish(ctx context.Context, id string) (models.Dish, error)
	GetOrderItem(ctx context.Context, id string) (models.OrderItem, error)
	ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error)

	// ActiveOrdersForTable returns the orders whose status is in
	// ActiveOrderStatuses, oldest first.
	ActiveOrdersForTable(ctx context.Context, tableID string) ([]models.Order, error)
	CountActiveOrdersForTable(ctx context.Context, tableID string) (int, error)
	// UnclosedOrdersForTable returns every order of the table that is neither
	// cancelled nor closed, oldest first.
	UnclosedOrdersForTable(ctx context.Context, tableID string) ([]models.Order, error)

	// AdjustStock adds delta to a dish's stock counter and returns the new
	// stock. A negative delta that would take limited stock below zero fails
	// with ErrInsufficientStock and changes nothing. Unlimited stock is never
	// changed.
	AdjustStock(ctx context.Context, dishID string, delta int) (models.Stock, error)

	// InsertOrder fails with ErrDuplicateKey when the order number is taken.
	InsertOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, order *models.Order) error
	InsertOrderItem(ctx context.Context, item *models.OrderItem) error
	UpdateOrderItem(ctx context.Context, item *models.OrderItem) error
	UpdateTableStatus(ctx context.Context, tableID string, status models.TableStatus) error
	InsertPayment(ctx context.Context, payment *models.Payment) error
}

// OrderFilter narrows ListOrders. Zero fields do not filter.
type OrderFilter struct {
	Statuses    []models.OrderStatus
	TableID     string
	CreatedFrom time.Time
	CreatedTo   time.Time
	// Ascending sorts by creation time oldest first; default is newest first.
	Ascending bool
}

// Reader serves read paths outside a unit of work.
type Reader interface {
	GetOrder(ctx context.Context, id string) (models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	// ItemsForOrders returns the items of every listed order.
	ItemsForOrders(ctx context.Context, orderIDs []string) ([]models.OrderItem, error)
	ListPayments(ctx context.Context, orderID string) ([]models.Payment, error)
	// CurrentOrderForTable returns the newest order of the table that is
	// neither cancelled nor closed.
	CurrentOrderForTable(ctx context.Context, tableID string) (models.Order, error)

	GetTable(ctx context.Context, id string) (models.Table, error)
	ListTables(ctx context.Context) ([]models.Table, error)
	GetDish(ctx context.Context, id string) (models.Dish, error)
	ListDishes(ctx context.Context) ([]models.Dish, error)
}

// Catalog is the menu, floor plan and staff glue around the engine.
type Catalog interface {
	InsertDish(ctx context.Context, dish *models.Dish) error
	// UpdateDish saves everything but stock, which only moves through
	// Tx.AdjustStock or SetDishStock.
	UpdateDish(ctx context.Context, dish *models.Dish) error
	// SetDishStock overwrites a dish's stock, as when the kitchen counts a
	// delivery.
	SetDishStock(ctx context.Context, dishID string, stock models.Stock) error
	// InsertTable fails with ErrDuplicateKey when the table number is taken.
	InsertTable(ctx context.Context, table *models.Table) error
	// UpdateTable never writes the status; occupancy changes go through
	// Tx.UpdateTableStatus. A taken table number fails with ErrDuplicateKey.
	UpdateTable(ctx context.Context, table *models.Table) error
	// InsertUser fails with ErrDuplicateKey when the email is taken.
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
}

// IsActive reports whether status is one of ActiveOrderStatuses.
func IsActive(status models.OrderStatus) bool {
	for _, s := range ActiveOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
