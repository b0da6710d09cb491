package mongostore

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-restaurant-pos/models"
)

// Documents keep the ObjectID in _id and its hex form in a readable
// per-collection id field, which is what every lookup filters on.

type dishDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	FoodID    string               `bson:"food_id"`
	Name      string               `bson:"name"`
	Category  string               `bson:"category"`
	Image     string               `bson:"food_image"`
	Price     primitive.Decimal128 `bson:"price"`
	Stock     int                  `bson:"stock"`
	Active    bool                 `bson:"active"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
	DeletedAt *time.Time           `bson:"deleted_at,omitempty"`
}

type tableDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	TableID     string             `bson:"table_id"`
	TableNumber string             `bson:"table_number"`
	Name        string             `bson:"name"`
	Capacity    int                `bson:"number_of_guests"`
	Status      int                `bson:"status"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
	DeletedAt   *time.Time         `bson:"deleted_at,omitempty"`
}

type orderDoc struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	OrderID        string               `bson:"order_id"`
	OrderNo        string               `bson:"order_no"`
	TableID        string               `bson:"table_id"`
	TableNumber    string               `bson:"table_number"`
	CustomerCount  int                  `bson:"customer_count"`
	TotalAmount    primitive.Decimal128 `bson:"total_amount"`
	PayAmount      primitive.Decimal128 `bson:"pay_amount"`
	DiscountAmount primitive.Decimal128 `bson:"discount_amount"`
	PayType        int                  `bson:"pay_type"`
	PayTime        *time.Time           `bson:"pay_time"`
	Status         int                  `bson:"status"`
	Remark         string               `bson:"remark"`
	CreatedBy      string               `bson:"created_by"`
	ClosedAt       *time.Time           `bson:"closed_at"`
	CreatedAt      time.Time            `bson:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at"`
	DeletedAt      *time.Time           `bson:"deleted_at,omitempty"`
}

type orderItemDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	OrderItemID string               `bson:"order_item_id"`
	OrderID     string               `bson:"order_id"`
	FoodID      string               `bson:"food_id"`
	FoodName    string               `bson:"food_name"`
	FoodImage   string               `bson:"food_image"`
	UnitPrice   primitive.Decimal128 `bson:"unit_price"`
	Quantity    int                  `bson:"quantity"`
	Subtotal    primitive.Decimal128 `bson:"subtotal"`
	Remark      string               `bson:"remark"`
	Status      int                  `bson:"status"`
	IsPaid      bool                 `bson:"is_paid"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
	DeletedAt   *time.Time           `bson:"deleted_at,omitempty"`
}

type paymentDoc struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	PaymentID    string               `bson:"payment_id"`
	OrderID      string               `bson:"order_id"`
	PayType      int                  `bson:"pay_type"`
	Amount       primitive.Decimal128 `bson:"amount"`
	ShouldPay    primitive.Decimal128 `bson:"should_pay"`
	Discount     primitive.Decimal128 `bson:"discount"`
	OrderItemIDs []string             `bson:"order_item_ids"`
	PaidAt       time.Time            `bson:"paid_at"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
	DeletedAt    *time.Time           `bson:"deleted_at,omitempty"`
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"user_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	EmailKey     string             `bson:"email_key"`
	Phone        string             `bson:"phone"`
	Role         string             `bson:"user_role"`
	PasswordHash string             `bson:"password"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
	DeletedAt    *time.Time         `bson:"deleted_at,omitempty"`
}

// assignID gives a new record an ObjectID and mirrors it into the model.
func assignID(id *string) primitive.ObjectID {
	if *id != "" {
		if oid, err := primitive.ObjectIDFromHex(*id); err == nil {
			return oid
		}
		return primitive.NewObjectID()
	}
	oid := primitive.NewObjectID()
	*id = oid.Hex()
	return oid
}

// toDecimal128 converts money. Amounts never approach the 34 significant
// digits Decimal128 holds.
func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		panic(fmt.Sprintf("mongostore: %s does not fit decimal128: %v", d, err))
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(v.String())
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func fromDish(d models.Dish) dishDoc {
	return dishDoc{
		FoodID:    d.ID,
		Name:      d.Name,
		Category:  d.Category,
		Image:     d.Image,
		Price:     toDecimal128(d.Price),
		Stock:     d.Stock.Level(),
		Active:    d.Active,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		DeletedAt: d.DeletedAt,
	}
}

func (doc dishDoc) model() (models.Dish, error) {
	price, err := fromDecimal128(doc.Price)
	return models.Dish{
		Base:     base(doc.FoodID, doc.CreatedAt, doc.UpdatedAt, doc.DeletedAt),
		Name:     doc.Name,
		Category: doc.Category,
		Image:    doc.Image,
		Price:    price,
		Stock:    models.StockFromLevel(doc.Stock),
		Active:   doc.Active,
	}, err
}

func fromTable(t models.Table) tableDoc {
	return tableDoc{
		TableID:     t.ID,
		TableNumber: t.TableNo,
		Name:        t.Name,
		Capacity:    t.Capacity,
		Status:      int(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		DeletedAt:   t.DeletedAt,
	}
}

func (doc tableDoc) model() models.Table {
	return models.Table{
		Base:     base(doc.TableID, doc.CreatedAt, doc.UpdatedAt, doc.DeletedAt),
		TableNo:  doc.TableNumber,
		Name:     doc.Name,
		Capacity: doc.Capacity,
		Status:   models.TableStatus(doc.Status),
	}
}

func fromOrder(o models.Order) orderDoc {
	return orderDoc{
		OrderID:        o.ID,
		OrderNo:        o.OrderNo,
		TableID:        o.TableID,
		TableNumber:    o.TableNo,
		CustomerCount:  o.CustomerCount,
		TotalAmount:    toDecimal128(o.TotalAmount),
		PayAmount:      toDecimal128(o.PayAmount),
		DiscountAmount: toDecimal128(o.DiscountAmount),
		PayType:        int(o.PayType),
		PayTime:        o.PayTime,
		Status:         int(o.Status),
		Remark:         o.Remark,
		CreatedBy:      o.CreatedBy,
		ClosedAt:       o.ClosedAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		DeletedAt:      o.DeletedAt,
	}
}

func (doc orderDoc) model() (models.Order, error) {
	o := models.Order{
		Base:          base(doc.OrderID, doc.CreatedAt, doc.UpdatedAt, doc.DeletedAt),
		OrderNo:       doc.OrderNo,
		TableID:       doc.TableID,
		TableNo:       doc.TableNumber,
		CustomerCount: doc.CustomerCount,
		PayType:       models.PayType(doc.PayType),
		PayTime:       utcPtr(doc.PayTime),
		Status:        models.OrderStatus(doc.Status),
		Remark:        doc.Remark,
		CreatedBy:     doc.CreatedBy,
		ClosedAt:      utcPtr(doc.ClosedAt),
	}
	var err error
	if o.TotalAmount, err = fromDecimal128(doc.TotalAmount); err != nil {
		return o, err
	}
	if o.PayAmount, err = fromDecimal128(doc.PayAmount); err != nil {
		return o, err
	}
	o.DiscountAmount, err = fromDecimal128(doc.DiscountAmount)
	return o, err
}

func fromOrderItem(it models.OrderItem) orderItemDoc {
	return orderItemDoc{
		OrderItemID: it.ID,
		OrderID:     it.OrderID,
		FoodID:      it.DishID,
		FoodName:    it.DishName,
		FoodImage:   it.DishImage,
		UnitPrice:   toDecimal128(it.Price),
		Quantity:    it.Quantity,
		Subtotal:    toDecimal128(it.Subtotal),
		Remark:      it.Remark,
		Status:      int(it.PrepStatus),
		IsPaid:      it.IsPaid,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
		DeletedAt:   it.DeletedAt,
	}
}

func (doc orderItemDoc) model() (models.OrderItem, error) {
	it := models.OrderItem{
		Base:       base(doc.OrderItemID, doc.CreatedAt, doc.UpdatedAt, doc.DeletedAt),
		OrderID:    doc.OrderID,
		DishID:     doc.FoodID,
		DishName:   doc.FoodName,
		DishImage:  doc.FoodImage,
		Quantity:   doc.Quantity,
		Remark:     doc.Remark,
		PrepStatus: models.PrepStatus(doc.Status),
		IsPaid:     doc.IsPaid,
	}
	var err error
	if it.Price, err = fromDecimal128(doc.UnitPrice); err != nil {
		return it, err
	}
	it.Subtotal, err = fromDecimal128(doc.Subtotal)
	return it, err
}

func fromPayment(p models.Payment) paymentDoc {
	ids := p.ItemIDs
	if ids == nil {
		ids = []string{}
	}
	return paymentDoc{
		PaymentID:    p.ID,
		OrderID:      p.OrderID,
		PayType:      int(p.PayType),
		Amount:       toDecimal128(p.Amount),
		ShouldPay:    toDecimal128(p.ShouldPay),
		Discount:     toDecimal128(p.Discount),
		OrderItemIDs: ids,
		PaidAt:       p.PaidAt,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		DeletedAt:    p.DeletedAt,
	}
}

func (doc paymentDoc) model() (models.Payment, error) {
	p := models.Payment{
		Base:    base(doc.PaymentID, doc.CreatedAt, doc.UpdatedAt, doc.DeletedAt),
		OrderID: doc.OrderID,
		PayType: models.PayType(doc.PayType),
		ItemIDs: doc.OrderItemIDs,
		PaidAt:  doc.PaidAt.UTC(),
	}
	var err error
	if p.Amount, err = fromDecimal128(doc.Amount); err != nil {
		return p, err
	}
	if p.ShouldPay, err = fromDecimal128(doc.ShouldPay); err != nil {
		return p, err
	}
	p.Discount, err = fromDecimal128(doc.Discount)
	return p, err
}

func fromUser(u models.User) userDoc {
	return userDoc{
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		EmailKey:     emailKey(u.Email),
		Phone:        u.Phone,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		DeletedAt:    u.DeletedAt,
	}
}

func (doc userDoc) model() models.User {
	return models.User{
		Base:         base(doc.UserID, doc.CreatedAt, doc.UpdatedAt, doc.DeletedAt),
		Name:         doc.Name,
		Email:        doc.Email,
		Phone:        doc.Phone,
		Role:         doc.Role,
		PasswordHash: doc.PasswordHash,
	}
}

func base(id string, created, updated time.Time, deleted *time.Time) models.Base {
	return models.Base{ID: id, CreatedAt: created.UTC(), UpdatedAt: updated.UTC(), DeletedAt: utcPtr(deleted)}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
