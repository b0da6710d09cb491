// Package memory is a process-local store used for development and tests.
// A store-wide lock serializes units of work; each one runs against a copy
// of the data that replaces the live copy only when it commits.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"go-restaurant-pos/models"
	"go-restaurant-pos/store"
)

type data struct {
	dishes     map[string]models.Dish
	tables     map[string]models.Table
	orders     map[string]models.Order
	items      map[string]models.OrderItem
	orderItems map[string][]string
	payments   map[string]models.Payment
	users      map[string]models.User
}

func newData() *data {
	return &data{
		dishes:     map[string]models.Dish{},
		tables:     map[string]models.Table{},
		orders:     map[string]models.Order{},
		items:      map[string]models.OrderItem{},
		orderItems: map[string][]string{},
		payments:   map[string]models.Payment{},
		users:      map[string]models.User{},
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.dishes {
		c.dishes[k] = v
	}
	for k, v := range d.tables {
		c.tables[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.items {
		c.items[k] = v
	}
	for k, v := range d.orderItems {
		c.orderItems[k] = append([]string(nil), v...)
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	return c
}

type Store struct {
	mu   sync.RWMutex
	live *data
}

func New() *Store {
	return &Store{live: newData()}
}

var _ store.Store = (*Store)(nil)

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.mutate(func(d *data) error {
		return fn(ctx, &tx{d: d})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close(context.Context) error {
	return nil
}

func (s *Store) read() *data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

func newID() string {
	return uuid.NewString()
}

// Reader

func (s *Store) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return getOrder(s.read(), id)
}

func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter) ([]models.Order, error) {
	d := s.read()
	var out []models.Order
	for _, o := range d.orders {
		if matches(o, filter) {
			out = append(out, o)
		}
	}
	sortOrders(out, filter.Ascending)
	return out, nil
}

func (s *Store) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return listItems(s.read(), orderID), nil
}

func (s *Store) ItemsForOrders(ctx context.Context, orderIDs []string) ([]models.OrderItem, error) {
	d := s.read()
	var out []models.OrderItem
	for _, id := range orderIDs {
		out = append(out, listItems(d, id)...)
	}
	return out, nil
}

func (s *Store) ListPayments(ctx context.Context, orderID string) ([]models.Payment, error) {
	d := s.read()
	var out []models.Payment
	for _, p := range d.payments {
		if p.OrderID == orderID {
			p.ItemIDs = append([]string(nil), p.ItemIDs...)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.Before(out[j].PaidAt) })
	return out, nil
}

func (s *Store) CurrentOrderForTable(ctx context.Context, tableID string) (models.Order, error) {
	open := unclosedForTable(s.read(), tableID)
	if len(open) == 0 {
		return models.Order{}, store.ErrNotFound
	}
	return open[len(open)-1], nil
}

func (s *Store) GetTable(ctx context.Context, id string) (models.Table, error) {
	t, ok := s.read().tables[id]
	if !ok {
		return models.Table{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTables(ctx context.Context) ([]models.Table, error) {
	d := s.read()
	out := make([]models.Table, 0, len(d.tables))
	for _, t := range d.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableNo < out[j].TableNo })
	return out, nil
}

func (s *Store) GetDish(ctx context.Context, id string) (models.Dish, error) {
	dish, ok := s.read().dishes[id]
	if !ok {
		return models.Dish{}, store.ErrNotFound
	}
	return dish, nil
}

func (s *Store) ListDishes(ctx context.Context) ([]models.Dish, error) {
	d := s.read()
	out := make([]models.Dish, 0, len(d.dishes))
	for _, dish := range d.dishes {
		out = append(out, dish)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Catalog

// mutate applies fn to a copy of the data and publishes it. Published data is
// never written again, so readers can walk it without holding the lock.
func (s *Store) mutate(fn func(d *data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.live.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.live = work
	return nil
}

func (s *Store) InsertDish(ctx context.Context, dish *models.Dish) error {
	return s.mutate(func(d *data) error {
		if dish.ID == "" {
			dish.ID = newID()
		}
		d.dishes[dish.ID] = *dish
		return nil
	})
}

func (s *Store) UpdateDish(ctx context.Context, dish *models.Dish) error {
	return s.mutate(func(d *data) error {
		current, ok := d.dishes[dish.ID]
		if !ok {
			return store.ErrNotFound
		}
		next := *dish
		next.Stock = current.Stock
		d.dishes[dish.ID] = next
		return nil
	})
}

func (s *Store) SetDishStock(ctx context.Context, dishID string, stock models.Stock) error {
	return s.mutate(func(d *data) error {
		dish, ok := d.dishes[dishID]
		if !ok {
			return store.ErrNotFound
		}
		dish.Stock = stock
		d.dishes[dishID] = dish
		return nil
	})
}

func (s *Store) InsertTable(ctx context.Context, table *models.Table) error {
	return s.mutate(func(d *data) error {
		for _, t := range d.tables {
			if t.TableNo == table.TableNo {
				return store.ErrDuplicateKey
			}
		}
		if table.ID == "" {
			table.ID = newID()
		}
		d.tables[table.ID] = *table
		return nil
	})
}

func (s *Store) UpdateTable(ctx context.Context, table *models.Table) error {
	return s.mutate(func(d *data) error {
		current, ok := d.tables[table.ID]
		if !ok {
			return store.ErrNotFound
		}
		for id, t := range d.tables {
			if id != table.ID && t.TableNo == table.TableNo {
				return store.ErrDuplicateKey
			}
		}
		next := *table
		next.Status = current.Status
		d.tables[table.ID] = next
		return nil
	})
}

func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	return s.mutate(func(d *data) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, user.Email) {
				return store.ErrDuplicateKey
			}
		}
		if user.ID == "" {
			user.ID = newID()
		}
		d.users[user.ID] = *user
		return nil
	})
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	for _, u := range s.read().users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

// tx works on a private copy of the data, so it needs no locking of its own.
type tx struct {
	d *data
}

func (t *tx) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return getOrder(t.d, id)
}

func (t *tx) GetTable(ctx context.Context, id string) (models.Table, error) {
	table, ok := t.d.tables[id]
	if !ok {
		return models.Table{}, store.ErrNotFound
	}
	return table, nil
}

func (t *tx) GetDish(ctx context.Context, id string) (models.Dish, error) {
	dish, ok := t.d.dishes[id]
	if !ok {
		return models.Dish{}, store.ErrNotFound
	}
	return dish, nil
}

func (t *tx) GetOrderItem(ctx context.Context, id string) (models.OrderItem, error) {
	item, ok := t.d.items[id]
	if !ok {
		return models.OrderItem{}, store.ErrNotFound
	}
	return item, nil
}

func (t *tx) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return listItems(t.d, orderID), nil
}

func (t *tx) ActiveOrdersForTable(ctx context.Context, tableID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range t.d.orders {
		if o.TableID == tableID && store.IsActive(o.Status) {
			out = append(out, o)
		}
	}
	sortOrders(out, true)
	return out, nil
}

func (t *tx) CountActiveOrdersForTable(ctx context.Context, tableID string) (int, error) {
	active, err := t.ActiveOrdersForTable(ctx, tableID)
	return len(active), err
}

func (t *tx) UnclosedOrdersForTable(ctx context.Context, tableID string) ([]models.Order, error) {
	return unclosedForTable(t.d, tableID), nil
}

func (t *tx) AdjustStock(ctx context.Context, dishID string, delta int) (models.Stock, error) {
	dish, ok := t.d.dishes[dishID]
	if !ok {
		return models.Stock{}, store.ErrNotFound
	}
	if dish.Stock.Unlimited() {
		return dish.Stock, nil
	}
	if delta < 0 {
		next, ok := dish.Stock.Reserve(-delta)
		if !ok {
			return dish.Stock, store.ErrInsufficientStock
		}
		dish.Stock = next
	} else {
		dish.Stock = dish.Stock.Release(delta)
	}
	t.d.dishes[dishID] = dish
	return dish.Stock, nil
}

func (t *tx) InsertOrder(ctx context.Context, order *models.Order) error {
	for _, o := range t.d.orders {
		if o.OrderNo == order.OrderNo {
			return store.ErrDuplicateKey
		}
	}
	if order.ID == "" {
		order.ID = newID()
	}
	t.d.orders[order.ID] = *order
	return nil
}

func (t *tx) UpdateOrder(ctx context.Context, order *models.Order) error {
	if _, ok := t.d.orders[order.ID]; !ok {
		return store.ErrNotFound
	}
	t.d.orders[order.ID] = *order
	return nil
}

func (t *tx) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	if _, ok := t.d.orders[item.OrderID]; !ok {
		return store.ErrNotFound
	}
	if item.ID == "" {
		item.ID = newID()
	}
	t.d.items[item.ID] = *item
	t.d.orderItems[item.OrderID] = append(t.d.orderItems[item.OrderID], item.ID)
	return nil
}

func (t *tx) UpdateOrderItem(ctx context.Context, item *models.OrderItem) error {
	if _, ok := t.d.items[item.ID]; !ok {
		return store.ErrNotFound
	}
	t.d.items[item.ID] = *item
	return nil
}

func (t *tx) UpdateTableStatus(ctx context.Context, tableID string, status models.TableStatus) error {
	table, ok := t.d.tables[tableID]
	if !ok {
		return store.ErrNotFound
	}
	table.Status = status
	t.d.tables[tableID] = table
	return nil
}

func (t *tx) InsertPayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = newID()
	}
	p := *payment
	p.ItemIDs = append([]string(nil), payment.ItemIDs...)
	t.d.payments[p.ID] = p
	return nil
}

func getOrder(d *data, id string) (models.Order, error) {
	o, ok := d.orders[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	return o, nil
}

func listItems(d *data, orderID string) []models.OrderItem {
	ids := d.orderItems[orderID]
	out := make([]models.OrderItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.items[id])
	}
	return out
}

func unclosedForTable(d *data, tableID string) []models.Order {
	var out []models.Order
	for _, o := range d.orders {
		if o.TableID == tableID && o.Status != models.OrderCancelled && !o.Closed() {
			out = append(out, o)
		}
	}
	sortOrders(out, true)
	return out
}

func matches(o models.Order, f store.OrderFilter) bool {
	if f.TableID != "" && o.TableID != f.TableID {
		return false
	}
	if !f.CreatedFrom.IsZero() && o.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() && !o.CreatedAt.Before(f.CreatedTo) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if o.Status == s {
			return true
		}
	}
	return false
}

func sortOrders(orders []models.Order, ascending bool) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if ascending {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if ascending {
			return a.OrderNo < b.OrderNo
		}
		return a.OrderNo > b.OrderNo
	})
}
