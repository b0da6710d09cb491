package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"go-restaurant-pos/models"
	"go-restaurant-pos/store"
)

// CartLine is one dish requested for an order.
type CartLine struct {
	DishID   string `json:"food_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gte=1,lte=999"`
	Remark   string `json:"remark,omitempty" validate:"max=200"`
}

type CreateOrderCommand struct {
	TableID       string
	CustomerCount int
	Items         []CartLine
	Remark        string
	// StaffID is the authenticated user placing the order.
	StaffID string
}

type AppendItemsCommand struct {
	OrderID string
	Items   []CartLine
}

type AppendToTableCommand struct {
	TableID string
	Items   []CartLine
}

type AdvanceItemCommand struct {
	ItemID string
	Status models.PrepStatus
}

type CheckoutCommand struct {
	OrderID string
	PayType models.PayType
	Amount  decimal.Decimal
}

// CheckoutResult is the order after a checkout and the payment it recorded.
type CheckoutResult struct {
	Order   models.Order   `json:"order"`
	Payment models.Payment `json:"payment"`
}

type OrderService struct {
	*deps
}

func NewOrderService(st store.Store, opts ...Option) *OrderService {
	return &OrderService{deps: newDeps(st, opts)}
}

// CreateOrder opens a free table with a new order and its initial items.
func (s *OrderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (models.OrderDetail, error) {
	log := s.log.WithFields(logrus.Fields{"action": "create_order", "table_id": cmd.TableID})
	if len(cmd.Items) == 0 {
		return models.OrderDetail{}, fmt.Errorf("%w: an order needs at least one item", ErrInvalidArgument)
	}
	if err := validateLines(cmd.Items); err != nil {
		return models.OrderDetail{}, err
	}
	customers := cmd.CustomerCount
	if customers < 0 {
		return models.OrderDetail{}, fmt.Errorf("%w: customer count must not be negative", ErrInvalidArgument)
	}
	if customers == 0 {
		customers = 1
	}

	var (
		detail models.OrderDetail
		evs    events
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		evs = nil
		table, err := tx.GetTable(ctx, cmd.TableID)
		if err != nil {
			return storeError(err, "table", cmd.TableID)
		}
		if table.Status != models.TableFree {
			return fmt.Errorf("%w: table %s is %s", ErrInvalidState, table.TableNo, table.Status)
		}
		active, err := tx.CountActiveOrdersForTable(ctx, table.ID)
		if err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: table %s already has an active order", ErrInvalidState, table.TableNo)
		}

		now := s.now()
		items, total, err := s.prepareItems(ctx, tx, cmd.Items)
		if err != nil {
			return err
		}
		order := models.Order{
			TableID:        table.ID,
			TableNo:        table.TableNo,
			CustomerCount:  customers,
			TotalAmount:    total,
			PayAmount:      total,
			DiscountAmount: decimal.Zero,
			PayType:        models.PayUnpaid,
			Status:         models.OrderAwaitingService,
			Remark:         cmd.Remark,
			CreatedBy:      cmd.StaffID,
		}
		order.Touch(now)
		if err := s.insertOrder(ctx, tx, &order); err != nil {
			return err
		}
		if err := s.insertItems(ctx, tx, order.ID, items); err != nil {
			return err
		}
		if err := tx.UpdateTableStatus(ctx, table.ID, models.TableOccupied); err != nil {
			return err
		}
		evs.orderCreated(order)
		detail = models.OrderDetail{Order: order, Items: items}
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("order not created")
		return models.OrderDetail{}, err
	}
	s.recorder.OrderCreated()
	s.publish(evs)
	log.WithFields(logrus.Fields{"order_id": detail.Order.ID, "order_no": detail.Order.OrderNo}).Info("order created")
	return detail, nil
}

// AppendItems adds items to an order that is neither cancelled nor closed.
func (s *OrderService) AppendItems(ctx context.Context, cmd AppendItemsCommand) (models.OrderDetail, error) {
	if err := validateAppend(cmd.Items); err != nil {
		return models.OrderDetail{}, err
	}
	var (
		detail models.OrderDetail
		evs    events
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		evs = nil
		order, err := tx.GetOrder(ctx, cmd.OrderID)
		if err != nil {
			return storeError(err, "order", cmd.OrderID)
		}
		detail, err = s.appendInTx(ctx, tx, order, cmd.Items, &evs)
		return err
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"action": "append_items", "order_id": cmd.OrderID}).Warn("items not added")
		return models.OrderDetail{}, err
	}
	s.publish(evs)
	return detail, nil
}

// AppendItemsToTable adds items to the table's current order.
func (s *OrderService) AppendItemsToTable(ctx context.Context, cmd AppendToTableCommand) (models.OrderDetail, error) {
	if err := validateAppend(cmd.Items); err != nil {
		return models.OrderDetail{}, err
	}
	var (
		detail models.OrderDetail
		evs    events
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		evs = nil
		open, err := tx.UnclosedOrdersForTable(ctx, cmd.TableID)
		if err != nil {
			return err
		}
		if len(open) == 0 {
			if _, err := tx.GetTable(ctx, cmd.TableID); err != nil {
				return storeError(err, "table", cmd.TableID)
			}
			return fmt.Errorf("%w: table %s has no open order", ErrNotFound, cmd.TableID)
		}
		order, err := tx.GetOrder(ctx, open[len(open)-1].ID)
		if err != nil {
			return storeError(err, "order", open[len(open)-1].ID)
		}
		detail, err = s.appendInTx(ctx, tx, order, cmd.Items, &evs)
		return err
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"action": "append_items", "table_id": cmd.TableID}).Warn("items not added")
		return models.OrderDetail{}, err
	}
	s.publish(evs)
	return detail, nil
}

func (s *OrderService) appendInTx(ctx context.Context, tx store.Tx, order models.Order, lines []CartLine, evs *events) (models.OrderDetail, error) {
	if order.Status == models.OrderCancelled {
		return models.OrderDetail{}, fmt.Errorf("%w: order %s is cancelled", ErrInvalidState, order.OrderNo)
	}
	if order.Closed() {
		return models.OrderDetail{}, fmt.Errorf("%w: order %s is closed", ErrInvalidState, order.OrderNo)
	}
	added, total, err := s.prepareItems(ctx, tx, lines)
	if err != nil {
		return models.OrderDetail{}, err
	}
	if err := s.insertItems(ctx, tx, order.ID, added); err != nil {
		return models.OrderDetail{}, err
	}
	order.TotalAmount = order.TotalAmount.Add(total)
	order.PayAmount = order.PayAmount.Add(total)
	order.Touch(s.now())

	items, err := tx.ListOrderItems(ctx, order.ID)
	if err != nil {
		return models.OrderDetail{}, err
	}
	if err := s.applyStatus(ctx, tx, &order, items, evs); err != nil {
		return models.OrderDetail{}, err
	}
	if err := tx.UpdateOrder(ctx, &order); err != nil {
		return models.OrderDetail{}, err
	}
	return models.OrderDetail{Order: order, Items: items}, nil
}

// AdvanceItemStatus moves one item to the requested kitchen status and
// recomputes its order. Repeating the current status changes nothing. Items
// of a completed order cannot be sent back to the kitchen; only an append
// reopens a completed order.
func (s *OrderService) AdvanceItemStatus(ctx context.Context, cmd AdvanceItemCommand) (models.OrderItem, error) {
	if !cmd.Status.Valid() {
		return models.OrderItem{}, fmt.Errorf("%w: unknown item status %d", ErrInvalidArgument, cmd.Status)
	}
	var (
		result models.OrderItem
		evs    events
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		evs = nil
		item, err := tx.GetOrderItem(ctx, cmd.ItemID)
		if err != nil {
			return storeError(err, "order item", cmd.ItemID)
		}
		order, err := tx.GetOrder(ctx, item.OrderID)
		if err != nil {
			return storeError(err, "order", item.OrderID)
		}
		// re-read under the order lock
		if item, err = tx.GetOrderItem(ctx, cmd.ItemID); err != nil {
			return storeError(err, "order item", cmd.ItemID)
		}
		if order.Status == models.OrderCancelled {
			return fmt.Errorf("%w: order %s is cancelled", ErrInvalidState, order.OrderNo)
		}
		if order.Closed() {
			return fmt.Errorf("%w: order %s is closed", ErrInvalidState, order.OrderNo)
		}
		if item.PrepStatus == cmd.Status {
			result = item
			return nil
		}
		// every item of a completed order is done and paid
		if order.Status == models.OrderCompleted {
			return fmt.Errorf("%w: order %s is completed", ErrInvalidState, order.OrderNo)
		}

		now := s.now()
		item.PrepStatus = cmd.Status
		item.Touch(now)
		if err := tx.UpdateOrderItem(ctx, &item); err != nil {
			return err
		}
		evs.itemStatus(item)

		items, err := tx.ListOrderItems(ctx, order.ID)
		if err != nil {
			return err
		}
		before := order.Status
		if err := s.applyStatus(ctx, tx, &order, items, &evs); err != nil {
			return err
		}
		if order.Status != before {
			order.Touch(now)
			if err := tx.UpdateOrder(ctx, &order); err != nil {
				return err
			}
		}
		result = item
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"action": "advance_item", "order_item_id": cmd.ItemID}).Warn("item status not changed")
		return models.OrderItem{}, err
	}
	s.publish(evs)
	return result, nil
}

// Checkout settles every unpaid item of the order. A tender below the amount
// owed is accepted and the difference is booked as discount.
func (s *OrderService) Checkout(ctx context.Context, cmd CheckoutCommand) (CheckoutResult, error) {
	log := s.log.WithFields(logrus.Fields{"action": "checkout", "order_id": cmd.OrderID})
	if !cmd.PayType.Valid() {
		return CheckoutResult{}, fmt.Errorf("%w: unknown pay type %d", ErrInvalidArgument, cmd.PayType)
	}
	var (
		result CheckoutResult
		evs    events
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		evs = nil
		order, err := tx.GetOrder(ctx, cmd.OrderID)
		if err != nil {
			return storeError(err, "order", cmd.OrderID)
		}
		if order.Status == models.OrderCancelled {
			return fmt.Errorf("%w: order %s is cancelled", ErrInvalidState, order.OrderNo)
		}
		items, err := tx.ListOrderItems(ctx, order.ID)
		if err != nil {
			return err
		}
		shouldPay := decimal.Zero
		var unpaid []int
		for i, it := range items {
			if !it.IsPaid {
				unpaid = append(unpaid, i)
				shouldPay = shouldPay.Add(it.Subtotal)
			}
		}
		if len(unpaid) == 0 {
			return ErrNoUnpaidItems
		}
		if !cmd.Amount.IsPositive() || cmd.Amount.GreaterThan(shouldPay) {
			return fmt.Errorf("%w: tendered %s, amount owed is %s", ErrInvalidAmount, cmd.Amount.StringFixed(2), shouldPay.StringFixed(2))
		}

		now := s.now()
		paidIDs := make([]string, 0, len(unpaid))
		for _, i := range unpaid {
			items[i].IsPaid = true
			items[i].Touch(now)
			if err := tx.UpdateOrderItem(ctx, &items[i]); err != nil {
				return err
			}
			paidIDs = append(paidIDs, items[i].ID)
		}

		shortfall := shouldPay.Sub(cmd.Amount)
		order.DiscountAmount = order.DiscountAmount.Add(shortfall)
		order.PayAmount = order.PayAmount.Sub(shortfall)
		order.PayType = cmd.PayType
		paidAt := now.UTC().Truncate(time.Millisecond)
		order.PayTime = &paidAt
		order.Touch(now)

		payment := models.Payment{
			OrderID:   order.ID,
			PayType:   cmd.PayType,
			Amount:    cmd.Amount,
			ShouldPay: shouldPay,
			Discount:  shortfall,
			ItemIDs:   paidIDs,
			PaidAt:    paidAt,
		}
		payment.Touch(now)
		if err := tx.InsertPayment(ctx, &payment); err != nil {
			return err
		}

		if err := s.applyStatus(ctx, tx, &order, items, &evs); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, &order); err != nil {
			return err
		}
		result = CheckoutResult{Order: order, Payment: payment}
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("checkout rejected")
		return CheckoutResult{}, err
	}
	s.recorder.CheckoutRecorded(result.Payment.Amount)
	s.publish(evs)
	log.WithFields(logrus.Fields{"amount": result.Payment.Amount.StringFixed(2), "status": result.Order.Status.String()}).Info("checkout recorded")
	return result, nil
}

// CancelOrder cancels an order before any of it has been cooked or paid,
// returns its stock and frees the table when nothing else holds it.
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) (models.Order, error) {
	var (
		result models.Order
		evs    events
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		evs = nil
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return storeError(err, "order", orderID)
		}
		switch order.Status {
		case models.OrderCompleted, models.OrderAppended, models.OrderCancelled:
			return fmt.Errorf("%w: order %s is %s", ErrInvalidState, order.OrderNo, order.Status)
		}
		items, err := tx.ListOrderItems(ctx, order.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if it.PrepStatus != models.PrepPending {
				return fmt.Errorf("%w: preparation of %s has started", ErrInvalidState, it.DishName)
			}
			if it.IsPaid {
				return fmt.Errorf("%w: %s has been paid", ErrInvalidState, it.DishName)
			}
		}
		for _, it := range items {
			if err := s.ledger.Release(ctx, tx, it.DishID, it.Quantity); err != nil {
				return err
			}
		}

		order.Status = models.OrderCancelled
		order.Touch(s.now())
		if err := tx.UpdateOrder(ctx, &order); err != nil {
			return err
		}
		evs.orderStatus(order)

		table, err := tx.GetTable(ctx, order.TableID)
		if err != nil {
			return storeError(err, "table", order.TableID)
		}
		remaining, err := tx.CountActiveOrdersForTable(ctx, table.ID)
		if err != nil {
			return err
		}
		if remaining == 0 && table.Status != models.TableFree {
			if err := tx.UpdateTableStatus(ctx, table.ID, models.TableFree); err != nil {
				return err
			}
		}
		result = order
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"action": "cancel_order", "order_id": orderID}).Warn("order not cancelled")
		return models.Order{}, err
	}
	s.recorder.OrderCancelled()
	s.publish(evs)
	return result, nil
}

// CompleteOrder finishes a fully paid order, marking any item still in the
// kitchen as done.
func (s *OrderService) CompleteOrder(ctx context.Context, orderID string) (models.Order, error) {
	var (
		result models.Order
		evs    events
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		evs = nil
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return storeError(err, "order", orderID)
		}
		if order.Status == models.OrderCancelled || order.Closed() {
			return fmt.Errorf("%w: order %s can no longer be completed", ErrInvalidState, order.OrderNo)
		}
		items, err := tx.ListOrderItems(ctx, order.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if !it.IsPaid {
				return fmt.Errorf("%w: order %s has unpaid items", ErrInvalidState, order.OrderNo)
			}
		}
		now := s.now()
		if err := s.finishItems(ctx, tx, items, now, &evs); err != nil {
			return err
		}
		before := order.Status
		if err := s.applyStatus(ctx, tx, &order, items, &evs); err != nil {
			return err
		}
		if order.Status != before {
			order.Touch(now)
			if err := tx.UpdateOrder(ctx, &order); err != nil {
				return err
			}
		}
		result = order
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"action": "complete_order", "order_id": orderID}).Warn("order not completed")
		return models.Order{}, err
	}
	s.publish(evs)
	return result, nil
}

func (s *OrderService) GetOrderDetail(ctx context.Context, orderID string) (models.OrderDetail, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return models.OrderDetail{}, storeError(err, "order", orderID)
	}
	return s.detail(ctx, order)
}

// GetActiveOrders lists every order still holding a table, oldest first,
// with its items. This is the kitchen's worklist.
func (s *OrderService) GetActiveOrders(ctx context.Context) ([]models.OrderDetail, error) {
	orders, err := s.store.ListOrders(ctx, store.OrderFilter{Statuses: store.ActiveOrderStatuses, Ascending: true})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := s.store.ItemsForOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	byOrder := make(map[string][]models.OrderItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	out := make([]models.OrderDetail, len(orders))
	for i, o := range orders {
		out[i] = models.OrderDetail{Order: o, Items: byOrder[o.ID]}
	}
	return out, nil
}

// GetOrderByTable returns the table's current order: the newest one that is
// neither cancelled nor closed.
func (s *OrderService) GetOrderByTable(ctx context.Context, tableID string) (models.OrderDetail, error) {
	if _, err := s.store.GetTable(ctx, tableID); err != nil {
		return models.OrderDetail{}, storeError(err, "table", tableID)
	}
	order, err := s.store.CurrentOrderForTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.OrderDetail{}, fmt.Errorf("%w: table %s has no open order", ErrNotFound, tableID)
		}
		return models.OrderDetail{}, err
	}
	return s.detail(ctx, order)
}

// GetUnpaidAmount is the sum of the subtotals not yet covered by a checkout.
func (s *OrderService) GetUnpaidAmount(ctx context.Context, orderID string) (decimal.Decimal, error) {
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		return decimal.Zero, storeError(err, "order", orderID)
	}
	items, err := s.store.ListOrderItems(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	return UnpaidAmount(items), nil
}

// ListOrders returns orders newest first, optionally only those in status.
func (s *OrderService) ListOrders(ctx context.Context, status *models.OrderStatus) ([]models.Order, error) {
	var filter store.OrderFilter
	if status != nil {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown order status %d", ErrInvalidArgument, *status)
		}
		filter.Statuses = []models.OrderStatus{*status}
	}
	return s.store.ListOrders(ctx, filter)
}

// UnpaidAmount sums the subtotals of unpaid items.
func UnpaidAmount(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if !it.IsPaid {
			total = total.Add(it.Subtotal)
		}
	}
	return total
}

func (s *OrderService) detail(ctx context.Context, order models.Order) (models.OrderDetail, error) {
	items, err := s.store.ListOrderItems(ctx, order.ID)
	if err != nil {
		return models.OrderDetail{}, err
	}
	payments, err := s.store.ListPayments(ctx, order.ID)
	if err != nil {
		return models.OrderDetail{}, err
	}
	return models.OrderDetail{Order: order, Items: items, Payments: payments}, nil
}

// prepareItems checks and reserves every line, returning unsaved items and
// their total. Any failure leaves the unit of work to roll back.
func (d *deps) prepareItems(ctx context.Context, tx store.Tx, lines []CartLine) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		dish, err := tx.GetDish(ctx, line.DishID)
		if err != nil {
			return nil, decimal.Zero, storeError(err, "dish", line.DishID)
		}
		if !dish.Active || dish.Deleted() {
			return nil, decimal.Zero, fmt.Errorf("%w: %s is not on the menu", ErrInvalidState, dish.Name)
		}
		if err := d.ledger.Reserve(ctx, tx, dish, line.Quantity); err != nil {
			return nil, decimal.Zero, err
		}
		item := models.NewOrderItem("", dish, line.Quantity, line.Remark)
		items = append(items, item)
		total = total.Add(item.Subtotal)
	}
	return items, total, nil
}

func (d *deps) insertItems(ctx context.Context, tx store.Tx, orderID string, items []models.OrderItem) error {
	now := d.now()
	for i := range items {
		items[i].OrderID = orderID
		items[i].Touch(now)
		if err := tx.InsertOrderItem(ctx, &items[i]); err != nil {
			return fmt.Errorf("insert item %s: %w", items[i].DishName, err)
		}
	}
	return nil
}

// insertOrder assigns an order number, drawing a new one while the store
// reports a duplicate.
func (d *deps) insertOrder(ctx context.Context, tx store.Tx, order *models.Order) error {
	for attempt := 1; ; attempt++ {
		order.OrderNo = d.orderNo(d.now())
		err := tx.InsertOrder(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrDuplicateKey) || attempt >= maxOrderNoAttempts {
			return fmt.Errorf("insert order %s: %w", order.OrderNo, err)
		}
		d.log.WithFields(logrus.Fields{"action": "create_order", "order_no": order.OrderNo}).Warn("order number taken, drawing another")
	}
}

// finishItems marks every unfinished item done.
func (d *deps) finishItems(ctx context.Context, tx store.Tx, items []models.OrderItem, now time.Time, evs *events) error {
	for i := range items {
		if items[i].PrepStatus == models.PrepDone {
			continue
		}
		items[i].PrepStatus = models.PrepDone
		items[i].Touch(now)
		if err := tx.UpdateOrderItem(ctx, &items[i]); err != nil {
			return err
		}
		evs.itemStatus(items[i])
	}
	return nil
}

// applyStatus sets the order's next status and keeps its table in step. The
// caller persists the order.
func (d *deps) applyStatus(ctx context.Context, tx store.Tx, order *models.Order, items []models.OrderItem, evs *events) error {
	next := NextStatus(order.Status, items)
	if next == order.Status {
		return nil
	}
	order.Status = next
	evs.orderStatus(*order)
	return d.syncTable(ctx, tx, *order)
}

// syncTable occupies the table of a working order and marks the table of a
// completed order for clearing.
func (d *deps) syncTable(ctx context.Context, tx store.Tx, order models.Order) error {
	var want models.TableStatus
	switch {
	case order.Status.Active():
		want = models.TableOccupied
	case order.Status == models.OrderCompleted:
		want = models.TablePendingClear
	default:
		return nil
	}
	table, err := tx.GetTable(ctx, order.TableID)
	if err != nil {
		return storeError(err, "table", order.TableID)
	}
	if table.Status == want {
		return nil
	}
	return tx.UpdateTableStatus(ctx, table.ID, want)
}

func validateLines(lines []CartLine) error {
	for i, line := range lines {
		if line.DishID == "" {
			return fmt.Errorf("%w: line %d has no dish", ErrInvalidArgument, i+1)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: line %d quantity must be positive, got %d", ErrInvalidArgument, i+1, line.Quantity)
		}
	}
	return nil
}

func validateAppend(lines []CartLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: nothing to add", ErrInvalidArgument)
	}
	return validateLines(lines)
}
