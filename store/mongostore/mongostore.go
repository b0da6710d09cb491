// Package mongostore implements store.Store on MongoDB. Units of work are
// multi-document transactions, so the server must run as a replica set.
//
// Reading an order or table through a Tx bumps its lock_version. Two
// transactions touching the same record therefore conflict, and the driver
// retries the loser from the start.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"go-restaurant-pos/database"
	"go-restaurant-pos/models"
	"go-restaurant-pos/store"
)

type Store struct {
	client     *mongo.Client
	dishes     *mongo.Collection
	tables     *mongo.Collection
	orders     *mongo.Collection
	orderItems *mongo.Collection
	payments   *mongo.Collection
	users      *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// New opens the collections of dbName and makes sure their indexes exist.
func New(ctx context.Context, client *mongo.Client, dbName string) (*Store, error) {
	s := &Store{
		client:     client,
		dishes:     database.OpenCollection(client, dbName, "food"),
		tables:     database.OpenCollection(client, dbName, "table"),
		orders:     database.OpenCollection(client, dbName, "order"),
		orderItems: database.OpenCollection(client, dbName, "orderItem"),
		payments:   database.OpenCollection(client, dbName, "payment"),
		users:      database.OpenCollection(client, dbName, "user"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}
	plain := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys}
	}
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.dishes: {unique(bson.D{{Key: "food_id", Value: 1}})},
		s.tables: {
			unique(bson.D{{Key: "table_id", Value: 1}}),
			unique(bson.D{{Key: "table_number", Value: 1}}),
		},
		s.orders: {
			unique(bson.D{{Key: "order_id", Value: 1}}),
			unique(bson.D{{Key: "order_no", Value: 1}}),
			plain(bson.D{{Key: "table_id", Value: 1}, {Key: "status", Value: 1}}),
			plain(bson.D{{Key: "created_at", Value: 1}}),
		},
		s.orderItems: {
			unique(bson.D{{Key: "order_item_id", Value: 1}}),
			plain(bson.D{{Key: "order_id", Value: 1}}),
		},
		s.payments: {plain(bson.D{{Key: "order_id", Value: 1}, {Key: "paid_at", Value: 1}})},
		s.users:    {unique(bson.D{{Key: "email_key", Value: 1}})},
	}
	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &tx{s: s})
	}, opts)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var (
	oldestFirst = bson.D{{Key: "created_at", Value: 1}, {Key: "order_no", Value: 1}}
	newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "order_no", Value: -1}}
	// ObjectIDs grow with insertion, which keeps items in the order added.
	insertionOrder = bson.D{{Key: "_id", Value: 1}}
)

// Reader

func (s *Store) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var doc orderDoc
	if err := s.orders.FindOne(ctx, bson.M{"order_id": id}).Decode(&doc); err != nil {
		return models.Order{}, notFound(err)
	}
	return doc.model()
}

func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter) ([]models.Order, error) {
	q := bson.M{}
	if filter.TableID != "" {
		q["table_id"] = filter.TableID
	}
	if len(filter.Statuses) > 0 {
		q["status"] = bson.M{"$in": statusCodes(filter.Statuses)}
	}
	created := bson.M{}
	if !filter.CreatedFrom.IsZero() {
		created["$gte"] = filter.CreatedFrom
	}
	if !filter.CreatedTo.IsZero() {
		created["$lt"] = filter.CreatedTo
	}
	if len(created) > 0 {
		q["created_at"] = created
	}
	sort := newestFirst
	if filter.Ascending {
		sort = oldestFirst
	}
	return findOrders(ctx, s.orders, q, sort)
}

func (s *Store) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return findItems(ctx, s.orderItems, bson.M{"order_id": orderID}, insertionOrder)
}

func (s *Store) ItemsForOrders(ctx context.Context, orderIDs []string) ([]models.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	return findItems(ctx, s.orderItems, bson.M{"order_id": bson.M{"$in": orderIDs}},
		bson.D{{Key: "order_id", Value: 1}, {Key: "_id", Value: 1}})
}

func (s *Store) ListPayments(ctx context.Context, orderID string) ([]models.Payment, error) {
	cursor, err := s.payments.Find(ctx, bson.M{"order_id": orderID},
		options.Find().SetSort(bson.D{{Key: "paid_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []paymentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Payment, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.model()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) CurrentOrderForTable(ctx context.Context, tableID string) (models.Order, error) {
	var doc orderDoc
	err := s.orders.FindOne(ctx, unclosed(tableID), options.FindOne().SetSort(newestFirst)).Decode(&doc)
	if err != nil {
		return models.Order{}, notFound(err)
	}
	return doc.model()
}

func (s *Store) GetTable(ctx context.Context, id string) (models.Table, error) {
	var doc tableDoc
	if err := s.tables.FindOne(ctx, bson.M{"table_id": id}).Decode(&doc); err != nil {
		return models.Table{}, notFound(err)
	}
	return doc.model(), nil
}

func (s *Store) ListTables(ctx context.Context) ([]models.Table, error) {
	cursor, err := s.tables.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "table_number", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []tableDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Table, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.model())
	}
	return out, nil
}

func (s *Store) GetDish(ctx context.Context, id string) (models.Dish, error) {
	return findDish(ctx, s.dishes, id)
}

func (s *Store) ListDishes(ctx context.Context) ([]models.Dish, error) {
	cursor, err := s.dishes.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []dishDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Dish, 0, len(docs))
	for _, doc := range docs {
		d, err := doc.model()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Catalog

func (s *Store) InsertDish(ctx context.Context, dish *models.Dish) error {
	oid := assignID(&dish.ID)
	doc := fromDish(*dish)
	doc.ID = oid
	_, err := s.dishes.InsertOne(ctx, doc)
	return duplicate(err)
}

func (s *Store) UpdateDish(ctx context.Context, dish *models.Dish) error {
	res, err := s.dishes.UpdateOne(ctx, bson.M{"food_id": dish.ID}, bson.M{"$set": bson.M{
		"name":       dish.Name,
		"category":   dish.Category,
		"food_image": dish.Image,
		"price":      toDecimal128(dish.Price),
		"active":     dish.Active,
		"updated_at": dish.UpdatedAt,
	}})
	return matched(res, err)
}

func (s *Store) SetDishStock(ctx context.Context, dishID string, stock models.Stock) error {
	res, err := s.dishes.UpdateOne(ctx, bson.M{"food_id": dishID}, bson.M{"$set": bson.M{
		"stock":      stock.Level(),
		"updated_at": time.Now().UTC(),
	}})
	return matched(res, err)
}

func (s *Store) InsertTable(ctx context.Context, table *models.Table) error {
	oid := assignID(&table.ID)
	doc := fromTable(*table)
	doc.ID = oid
	_, err := s.tables.InsertOne(ctx, doc)
	return duplicate(err)
}

func (s *Store) UpdateTable(ctx context.Context, table *models.Table) error {
	res, err := s.tables.UpdateOne(ctx, bson.M{"table_id": table.ID}, bson.M{"$set": bson.M{
		"table_number":     table.TableNo,
		"name":             table.Name,
		"number_of_guests": table.Capacity,
		"updated_at":       table.UpdatedAt,
	}})
	if err = duplicate(err); err != nil {
		return err
	}
	return matched(res, nil)
}

func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	oid := assignID(&user.ID)
	doc := fromUser(*user)
	doc.ID = oid
	_, err := s.users.InsertOne(ctx, doc)
	return duplicate(err)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"email_key": emailKey(email)}).Decode(&doc); err != nil {
		return models.User{}, notFound(err)
	}
	return doc.model(), nil
}

// tx issues every call with the session context it was handed, which binds
// the operation to the running transaction.
type tx struct {
	s *Store
}

func (t *tx) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var doc orderDoc
	if err := lock(ctx, t.s.orders, bson.M{"order_id": id}).Decode(&doc); err != nil {
		return models.Order{}, notFound(err)
	}
	return doc.model()
}

func (t *tx) GetTable(ctx context.Context, id string) (models.Table, error) {
	var doc tableDoc
	if err := lock(ctx, t.s.tables, bson.M{"table_id": id}).Decode(&doc); err != nil {
		return models.Table{}, notFound(err)
	}
	return doc.model(), nil
}

func (t *tx) GetDish(ctx context.Context, id string) (models.Dish, error) {
	return findDish(ctx, t.s.dishes, id)
}

func (t *tx) GetOrderItem(ctx context.Context, id string) (models.OrderItem, error) {
	var doc orderItemDoc
	if err := t.s.orderItems.FindOne(ctx, bson.M{"order_item_id": id}).Decode(&doc); err != nil {
		return models.OrderItem{}, notFound(err)
	}
	return doc.model()
}

func (t *tx) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return t.s.ListOrderItems(ctx, orderID)
}

func (t *tx) ActiveOrdersForTable(ctx context.Context, tableID string) ([]models.Order, error) {
	return findOrders(ctx, t.s.orders, active(tableID), oldestFirst)
}

func (t *tx) CountActiveOrdersForTable(ctx context.Context, tableID string) (int, error) {
	n, err := t.s.orders.CountDocuments(ctx, active(tableID))
	return int(n), err
}

func (t *tx) UnclosedOrdersForTable(ctx context.Context, tableID string) ([]models.Order, error) {
	return findOrders(ctx, t.s.orders, unclosed(tableID), oldestFirst)
}

// AdjustStock only matches limited stock that can absorb delta, so the
// check and the write are one atomic update.
func (t *tx) AdjustStock(ctx context.Context, dishID string, delta int) (models.Stock, error) {
	floor := 0
	if delta < 0 {
		floor = -delta
	}
	var doc dishDoc
	err := t.s.dishes.FindOneAndUpdate(ctx,
		bson.M{"food_id": dishID, "stock": bson.M{"$gte": floor}},
		bson.M{"$inc": bson.M{"stock": delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return models.StockFromLevel(doc.Stock), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Stock{}, err
	}
	dish, err := findDish(ctx, t.s.dishes, dishID)
	if err != nil {
		return models.Stock{}, err
	}
	if dish.Stock.Unlimited() {
		return dish.Stock, nil
	}
	return dish.Stock, store.ErrInsufficientStock
}

// InsertOrder checks the order number first: a duplicate key error from the
// server would abort the whole transaction.
func (t *tx) InsertOrder(ctx context.Context, order *models.Order) error {
	n, err := t.s.orders.CountDocuments(ctx, bson.M{"order_no": order.OrderNo})
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: order_no %s", store.ErrDuplicateKey, order.OrderNo)
	}
	oid := assignID(&order.ID)
	doc := fromOrder(*order)
	doc.ID = oid
	_, err = t.s.orders.InsertOne(ctx, doc)
	return duplicate(err)
}

func (t *tx) UpdateOrder(ctx context.Context, order *models.Order) error {
	res, err := t.s.orders.UpdateOne(ctx, bson.M{"order_id": order.ID}, bson.M{"$set": fromOrder(*order)})
	return matched(res, err)
}

func (t *tx) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	oid := assignID(&item.ID)
	doc := fromOrderItem(*item)
	doc.ID = oid
	_, err := t.s.orderItems.InsertOne(ctx, doc)
	return err
}

func (t *tx) UpdateOrderItem(ctx context.Context, item *models.OrderItem) error {
	res, err := t.s.orderItems.UpdateOne(ctx, bson.M{"order_item_id": item.ID}, bson.M{"$set": bson.M{
		"status":     int(item.PrepStatus),
		"is_paid":    item.IsPaid,
		"remark":     item.Remark,
		"updated_at": item.UpdatedAt,
	}})
	return matched(res, err)
}

func (t *tx) UpdateTableStatus(ctx context.Context, tableID string, status models.TableStatus) error {
	res, err := t.s.tables.UpdateOne(ctx, bson.M{"table_id": tableID}, bson.M{"$set": bson.M{
		"status":     int(status),
		"updated_at": time.Now().UTC(),
	}})
	return matched(res, err)
}

func (t *tx) InsertPayment(ctx context.Context, payment *models.Payment) error {
	oid := assignID(&payment.ID)
	doc := fromPayment(*payment)
	doc.ID = oid
	_, err := t.s.payments.InsertOne(ctx, doc)
	return err
}

// Shared queries

func lock(ctx context.Context, coll *mongo.Collection, filter bson.M) *mongo.SingleResult {
	return coll.FindOneAndUpdate(ctx, filter,
		bson.M{"$inc": bson.M{"lock_version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
}

func findDish(ctx context.Context, coll *mongo.Collection, id string) (models.Dish, error) {
	var doc dishDoc
	if err := coll.FindOne(ctx, bson.M{"food_id": id}).Decode(&doc); err != nil {
		return models.Dish{}, notFound(err)
	}
	return doc.model()
}

func findOrders(ctx context.Context, coll *mongo.Collection, filter interface{}, sort bson.D) ([]models.Order, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Order, 0, len(docs))
	for _, doc := range docs {
		o, err := doc.model()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func findItems(ctx context.Context, coll *mongo.Collection, filter interface{}, sort bson.D) ([]models.OrderItem, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	var docs []orderItemDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.OrderItem, 0, len(docs))
	for _, doc := range docs {
		it, err := doc.model()
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func active(tableID string) bson.M {
	return bson.M{"table_id": tableID, "status": bson.M{"$in": statusCodes(store.ActiveOrderStatuses)}}
}

func unclosed(tableID string) bson.M {
	return bson.M{
		"table_id":  tableID,
		"status":    bson.M{"$ne": int(models.OrderCancelled)},
		"closed_at": nil,
	}
}

func statusCodes(statuses []models.OrderStatus) []int {
	out := make([]int, len(statuses))
	for i, s := range statuses {
		out[i] = int(s)
	}
	return out
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", store.ErrDuplicateKey, err)
	}
	return err
}

func matched(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
