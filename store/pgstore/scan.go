package pgstore

import (
	"github.com/shopspring/decimal"

	"go-restaurant-pos/models"
)

// NUMERIC columns are read as text and parsed into decimals.
const (
	dishColumns = `id, name, category, image, price::text, stock, active, created_at, updated_at, deleted_at`

	tableColumns = `id, table_no, name, capacity, status, created_at, updated_at, deleted_at`

	orderColumns = `id, order_no, table_id, table_no, customer_count, total_amount::text, pay_amount::text,
		discount_amount::text, pay_type, pay_time, status, remark, created_by, closed_at,
		created_at, updated_at, deleted_at`

	itemColumns = `id, order_id, dish_id, dish_name, dish_image, price::text, quantity, subtotal::text, remark,
		prep_status, is_paid, created_at, updated_at, deleted_at`

	paymentColumns = `id, order_id, pay_type, amount::text, should_pay::text, discount::text, item_ids, paid_at,
		created_at, updated_at, deleted_at`
)

type scanner interface {
	Scan(dest ...any) error
}

// parseMoney parses raw[i] into *dst[i].
func parseMoney(raw []string, dst ...*decimal.Decimal) error {
	for i, r := range raw {
		v, err := decimal.NewFromString(r)
		if err != nil {
			return err
		}
		*dst[i] = v
	}
	return nil
}

func scanDish(row scanner) (models.Dish, error) {
	var (
		d     models.Dish
		price string
		level int
	)
	err := row.Scan(&d.ID, &d.Name, &d.Category, &d.Image, &price, &level, &d.Active,
		&d.CreatedAt, &d.UpdatedAt, &d.DeletedAt)
	if err != nil {
		return d, err
	}
	d.Stock = models.StockFromLevel(level)
	d.Price, err = decimal.NewFromString(price)
	return d, err
}

func scanTable(row scanner) (models.Table, error) {
	var (
		t      models.Table
		status int16
	)
	err := row.Scan(&t.ID, &t.TableNo, &t.Name, &t.Capacity, &status, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	t.Status = models.TableStatus(status)
	return t, err
}

func scanOrder(row scanner) (models.Order, error) {
	var (
		o                    models.Order
		total, pay, discount string
		payType, status      int16
	)
	err := row.Scan(&o.ID, &o.OrderNo, &o.TableID, &o.TableNo, &o.CustomerCount, &total, &pay, &discount,
		&payType, &o.PayTime, &status, &o.Remark, &o.CreatedBy, &o.ClosedAt,
		&o.CreatedAt, &o.UpdatedAt, &o.DeletedAt)
	if err != nil {
		return o, err
	}
	o.PayType = models.PayType(payType)
	o.Status = models.OrderStatus(status)
	return o, parseMoney([]string{total, pay, discount}, &o.TotalAmount, &o.PayAmount, &o.DiscountAmount)
}

func scanItem(row scanner) (models.OrderItem, error) {
	var (
		it              models.OrderItem
		price, subtotal string
		prepStatus      int16
	)
	err := row.Scan(&it.ID, &it.OrderID, &it.DishID, &it.DishName, &it.DishImage, &price, &it.Quantity, &subtotal,
		&it.Remark, &prepStatus, &it.IsPaid, &it.CreatedAt, &it.UpdatedAt, &it.DeletedAt)
	if err != nil {
		return it, err
	}
	it.PrepStatus = models.PrepStatus(prepStatus)
	return it, parseMoney([]string{price, subtotal}, &it.Price, &it.Subtotal)
}

func scanPayment(row scanner) (models.Payment, error) {
	var (
		p                           models.Payment
		amount, shouldPay, discount string
		payType                     int16
	)
	err := row.Scan(&p.ID, &p.OrderID, &payType, &amount, &shouldPay, &discount, &p.ItemIDs, &p.PaidAt,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return p, err
	}
	p.PayType = models.PayType(payType)
	return p, parseMoney([]string{amount, shouldPay, discount}, &p.Amount, &p.ShouldPay, &p.Discount)
}
