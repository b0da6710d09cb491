// Package pgstore implements store.Store on PostgreSQL with pgx. Units of work
// are database transactions; orders and tables read through a Tx are locked
// with SELECT ... FOR UPDATE.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"go-restaurant-pos/models"
	"go-restaurant-pos/store"
)

const (
	uniqueViolation      = "23505"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"

	maxTxAttempts = 3
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ store.Store = (*Store)(nil)

// WithinTx runs fn in a fresh transaction again when Postgres aborts the
// previous attempt with a deadlock or a serialization failure.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	for attempt := 1; ; attempt++ {
		err := pgx.BeginFunc(ctx, s.pool, func(t pgx.Tx) error {
			return fn(ctx, &tx{q: t, tx: t})
		})
		if err == nil || !retryable(err) || attempt >= maxTxAttempts || ctx.Err() != nil {
			return err
		}
	}
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == deadlockDetected || pgErr.Code == serializationFailure
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close(context.Context) error {
	s.pool.Close()
	return nil
}

// Reader

func (s *Store) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return getOrder(ctx, s.pool, id, false)
}

func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter) ([]models.Order, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.TableID != "" {
		where = append(where, "table_id = "+arg(filter.TableID))
	}
	if len(filter.Statuses) > 0 {
		where = append(where, "status = ANY("+arg(statusCodes(filter.Statuses))+")")
	}
	if !filter.CreatedFrom.IsZero() {
		where = append(where, "created_at >= "+arg(filter.CreatedFrom))
	}
	if !filter.CreatedTo.IsZero() {
		where = append(where, "created_at < "+arg(filter.CreatedTo))
	}

	sql := "SELECT " + orderColumns + " FROM orders"
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.Ascending {
		sql += " ORDER BY created_at, order_no"
	} else {
		sql += " ORDER BY created_at DESC, order_no DESC"
	}
	return queryOrders(ctx, s.pool, sql, args...)
}

func (s *Store) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return listItems(ctx, s.pool, orderID)
}

func (s *Store) ItemsForOrders(ctx context.Context, orderIDs []string) ([]models.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	return queryItems(ctx, s.pool,
		"SELECT "+itemColumns+" FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, seq", orderIDs)
}

func (s *Store) ListPayments(ctx context.Context, orderID string) ([]models.Payment, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE order_id = $1 ORDER BY paid_at", orderID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Payment, error) {
		return scanPayment(row)
	})
}

func (s *Store) CurrentOrderForTable(ctx context.Context, tableID string) (models.Order, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+orderColumns+` FROM orders
		WHERE table_id = $1 AND status <> $2 AND closed_at IS NULL
		ORDER BY created_at DESC, order_no DESC LIMIT 1`, tableID, int(models.OrderCancelled))
	return notFound(scanOrder(row))
}

func (s *Store) GetTable(ctx context.Context, id string) (models.Table, error) {
	return getTable(ctx, s.pool, id, false)
}

func (s *Store) ListTables(ctx context.Context) ([]models.Table, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+tableColumns+" FROM restaurant_tables ORDER BY table_no")
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Table, error) {
		return scanTable(row)
	})
}

func (s *Store) GetDish(ctx context.Context, id string) (models.Dish, error) {
	return getDish(ctx, s.pool, id)
}

func (s *Store) ListDishes(ctx context.Context) ([]models.Dish, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+dishColumns+" FROM dishes ORDER BY name")
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Dish, error) {
		return scanDish(row)
	})
}

// Catalog

func (s *Store) InsertDish(ctx context.Context, dish *models.Dish) error {
	if dish.ID == "" {
		dish.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO dishes
		(id, name, category, image, price, stock, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		dish.ID, dish.Name, dish.Category, dish.Image, money(dish.Price), dish.Stock.Level(), dish.Active,
		dish.CreatedAt, dish.UpdatedAt)
	return duplicate(err)
}

func (s *Store) UpdateDish(ctx context.Context, dish *models.Dish) error {
	tag, err := s.pool.Exec(ctx, `UPDATE dishes SET
		name = $2, category = $3, image = $4, price = $5, active = $6, updated_at = $7
		WHERE id = $1`,
		dish.ID, dish.Name, dish.Category, dish.Image, money(dish.Price), dish.Active, dish.UpdatedAt)
	return affected(tag, err)
}

func (s *Store) SetDishStock(ctx context.Context, dishID string, stock models.Stock) error {
	tag, err := s.pool.Exec(ctx, "UPDATE dishes SET stock = $2, updated_at = NOW() WHERE id = $1",
		dishID, stock.Level())
	return affected(tag, err)
}

func (s *Store) InsertTable(ctx context.Context, table *models.Table) error {
	if table.ID == "" {
		table.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO restaurant_tables
		(id, table_no, name, capacity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		table.ID, table.TableNo, table.Name, table.Capacity, int(table.Status), table.CreatedAt, table.UpdatedAt)
	return duplicate(err)
}

func (s *Store) UpdateTable(ctx context.Context, table *models.Table) error {
	tag, err := s.pool.Exec(ctx, `UPDATE restaurant_tables SET
		table_no = $2, name = $3, capacity = $4, updated_at = $5
		WHERE id = $1`,
		table.ID, table.TableNo, table.Name, table.Capacity, table.UpdatedAt)
	if err = duplicate(err); err != nil {
		return err
	}
	return affected(tag, nil)
}

func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO users
		(id, name, email, phone, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Name, user.Email, user.Phone, user.Role, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return duplicate(err)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, `SELECT id, name, email, phone, role, password_hash, created_at, updated_at, deleted_at
		FROM users WHERE LOWER(email) = LOWER($1)`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	return notFound(u, err)
}

// tx runs queries on one pgx transaction.
type tx struct {
	q  querier
	tx pgx.Tx
}

func (t *tx) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return getOrder(ctx, t.q, id, true)
}

func (t *tx) GetTable(ctx context.Context, id string) (models.Table, error) {
	return getTable(ctx, t.q, id, true)
}

func (t *tx) GetDish(ctx context.Context, id string) (models.Dish, error) {
	return getDish(ctx, t.q, id)
}

func (t *tx) GetOrderItem(ctx context.Context, id string) (models.OrderItem, error) {
	row := t.q.QueryRow(ctx, "SELECT "+itemColumns+" FROM order_items WHERE id = $1", id)
	return notFound(scanItem(row))
}

func (t *tx) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return listItems(ctx, t.q, orderID)
}

func (t *tx) ActiveOrdersForTable(ctx context.Context, tableID string) ([]models.Order, error) {
	return queryOrders(ctx, t.q, "SELECT "+orderColumns+` FROM orders
		WHERE table_id = $1 AND status = ANY($2)
		ORDER BY created_at, order_no`, tableID, statusCodes(store.ActiveOrderStatuses))
}

func (t *tx) CountActiveOrdersForTable(ctx context.Context, tableID string) (int, error) {
	var n int
	err := t.q.QueryRow(ctx, "SELECT COUNT(*) FROM orders WHERE table_id = $1 AND status = ANY($2)",
		tableID, statusCodes(store.ActiveOrderStatuses)).Scan(&n)
	return n, err
}

func (t *tx) UnclosedOrdersForTable(ctx context.Context, tableID string) ([]models.Order, error) {
	return queryOrders(ctx, t.q, "SELECT "+orderColumns+` FROM orders
		WHERE table_id = $1 AND status <> $2 AND closed_at IS NULL
		ORDER BY created_at, order_no`, tableID, int(models.OrderCancelled))
}

// AdjustStock applies delta in a single conditional UPDATE, so two units of
// work can never both take the last unit.
func (t *tx) AdjustStock(ctx context.Context, dishID string, delta int) (models.Stock, error) {
	var level int
	err := t.q.QueryRow(ctx, `UPDATE dishes SET stock = stock + $2
		WHERE id = $1 AND stock >= 0 AND stock + $2 >= 0
		RETURNING stock`, dishID, delta).Scan(&level)
	if err == nil {
		return models.StockFromLevel(level), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Stock{}, err
	}
	// Nothing updated: the dish is missing, unlimited, or short.
	dish, err := getDish(ctx, t.q, dishID)
	if err != nil {
		return models.Stock{}, err
	}
	if dish.Stock.Unlimited() {
		return dish.Stock, nil
	}
	return dish.Stock, store.ErrInsufficientStock
}

// InsertOrder runs under a savepoint so a taken order number leaves the
// surrounding transaction usable for another attempt.
func (t *tx) InsertOrder(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return err
	}
	_, err = sp.Exec(ctx, `INSERT INTO orders
		(id, order_no, table_id, table_no, customer_count, total_amount, pay_amount, discount_amount,
		 pay_type, pay_time, status, remark, created_by, closed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		order.ID, order.OrderNo, order.TableID, order.TableNo, order.CustomerCount,
		money(order.TotalAmount), money(order.PayAmount), money(order.DiscountAmount),
		int(order.PayType), order.PayTime, int(order.Status), order.Remark, order.CreatedBy, order.ClosedAt,
		order.CreatedAt, order.UpdatedAt)
	if err != nil {
		sp.Rollback(ctx)
		return duplicate(err)
	}
	return sp.Commit(ctx)
}

func (t *tx) UpdateOrder(ctx context.Context, order *models.Order) error {
	tag, err := t.q.Exec(ctx, `UPDATE orders SET
		customer_count = $2, total_amount = $3, pay_amount = $4, discount_amount = $5, pay_type = $6,
		pay_time = $7, status = $8, remark = $9, closed_at = $10, updated_at = $11
		WHERE id = $1`,
		order.ID, order.CustomerCount, money(order.TotalAmount), money(order.PayAmount), money(order.DiscountAmount),
		int(order.PayType), order.PayTime, int(order.Status), order.Remark, order.ClosedAt, order.UpdatedAt)
	return affected(tag, err)
}

func (t *tx) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	_, err := t.q.Exec(ctx, `INSERT INTO order_items
		(id, order_id, dish_id, dish_name, dish_image, price, quantity, subtotal, remark, prep_status, is_paid,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		item.ID, item.OrderID, item.DishID, item.DishName, item.DishImage, money(item.Price), item.Quantity,
		money(item.Subtotal), item.Remark, int(item.PrepStatus), item.IsPaid, item.CreatedAt, item.UpdatedAt)
	return err
}

func (t *tx) UpdateOrderItem(ctx context.Context, item *models.OrderItem) error {
	tag, err := t.q.Exec(ctx, `UPDATE order_items SET
		prep_status = $2, is_paid = $3, remark = $4, updated_at = $5
		WHERE id = $1`,
		item.ID, int(item.PrepStatus), item.IsPaid, item.Remark, item.UpdatedAt)
	return affected(tag, err)
}

func (t *tx) UpdateTableStatus(ctx context.Context, tableID string, status models.TableStatus) error {
	tag, err := t.q.Exec(ctx, "UPDATE restaurant_tables SET status = $2, updated_at = NOW() WHERE id = $1",
		tableID, int(status))
	return affected(tag, err)
}

func (t *tx) InsertPayment(ctx context.Context, p *models.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	itemIDs := p.ItemIDs
	if itemIDs == nil {
		itemIDs = []string{}
	}
	_, err := t.q.Exec(ctx, `INSERT INTO payments
		(id, order_id, pay_type, amount, should_pay, discount, item_ids, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.OrderID, int(p.PayType), money(p.Amount), money(p.ShouldPay), money(p.Discount), itemIDs,
		p.PaidAt, p.CreatedAt, p.UpdatedAt)
	return err
}

// Shared queries

func getOrder(ctx context.Context, q querier, id string, lock bool) (models.Order, error) {
	sql := "SELECT " + orderColumns + " FROM orders WHERE id = $1"
	if lock {
		sql += " FOR UPDATE"
	}
	return notFound(scanOrder(q.QueryRow(ctx, sql, id)))
}

func getTable(ctx context.Context, q querier, id string, lock bool) (models.Table, error) {
	sql := "SELECT " + tableColumns + " FROM restaurant_tables WHERE id = $1"
	if lock {
		sql += " FOR UPDATE"
	}
	return notFound(scanTable(q.QueryRow(ctx, sql, id)))
}

func getDish(ctx context.Context, q querier, id string) (models.Dish, error) {
	return notFound(scanDish(q.QueryRow(ctx, "SELECT "+dishColumns+" FROM dishes WHERE id = $1", id)))
}

func listItems(ctx context.Context, q querier, orderID string) ([]models.OrderItem, error) {
	return queryItems(ctx, q, "SELECT "+itemColumns+" FROM order_items WHERE order_id = $1 ORDER BY seq", orderID)
}

func queryOrders(ctx context.Context, q querier, sql string, args ...any) ([]models.Order, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Order, error) {
		return scanOrder(row)
	})
}

func queryItems(ctx context.Context, q querier, sql string, args ...any) ([]models.OrderItem, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.OrderItem, error) {
		return scanItem(row)
	})
}

func statusCodes(statuses []models.OrderStatus) []int32 {
	out := make([]int32, len(statuses))
	for i, s := range statuses {
		out[i] = int32(s)
	}
	return out
}

// money is the text form of d, which postgres casts to NUMERIC exactly.
func money(d decimal.Decimal) string {
	return d.String()
}

func notFound[T any](v T, err error) (T, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return v, store.ErrNotFound
	}
	return v, err
}

func duplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", store.ErrDuplicateKey, pgErr.ConstraintName)
	}
	return err
}

func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
