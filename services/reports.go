package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"go-restaurant-pos/models"
	"go-restaurant-pos/store"
)

const defaultTopDishes = 10

type DailySummary struct {
	Date          string          `json:"date"`
	Revenue       decimal.Decimal `json:"total_revenue"`
	OrderCount    int             `json:"order_count"`
	AverageTicket decimal.Decimal `json:"avg_amount"`
}

type DishSales struct {
	DishID   string          `json:"food_id"`
	DishName string          `json:"food_name"`
	Quantity int             `json:"total_quantity"`
	Revenue  decimal.Decimal `json:"total_amount"`
}

type TableSales struct {
	TableID    string          `json:"table_id"`
	TableNo    string          `json:"table_number"`
	Name       string          `json:"name,omitempty"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"total_amount"`
}

// ReportService rolls up the orders completed today. It only reads.
type ReportService struct {
	*deps
}

func NewReportService(st store.Store, opts ...Option) *ReportService {
	return &ReportService{deps: newDeps(st, opts)}
}

func (s *ReportService) Today(ctx context.Context) (DailySummary, error) {
	from, _ := s.today()
	orders, err := s.completedToday(ctx)
	if err != nil {
		return DailySummary{}, err
	}
	sum := DailySummary{Date: from.Format("2006-01-02"), Revenue: decimal.Zero, AverageTicket: decimal.Zero}
	for _, o := range orders {
		sum.Revenue = sum.Revenue.Add(o.PayAmount)
	}
	sum.OrderCount = len(orders)
	if sum.OrderCount > 0 {
		sum.AverageTicket = sum.Revenue.DivRound(decimal.NewFromInt(int64(sum.OrderCount)), 2)
	}
	return sum, nil
}

// TopDishes ranks dishes by quantity sold in today's completed orders.
// A non-positive limit means the default of ten.
func (s *ReportService) TopDishes(ctx context.Context, limit int) ([]DishSales, error) {
	if limit <= 0 {
		limit = defaultTopDishes
	}
	orders, err := s.completedToday(ctx)
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
	byDish := map[string]*DishSales{}
	for _, it := range items {
		ds, ok := byDish[it.DishID]
		if !ok {
			ds = &DishSales{DishID: it.DishID, DishName: it.DishName, Revenue: decimal.Zero}
			byDish[it.DishID] = ds
		}
		ds.Quantity += it.Quantity
		ds.Revenue = ds.Revenue.Add(it.Subtotal)
	}
	out := make([]DishSales, 0, len(byDish))
	for _, ds := range byDish {
		out = append(out, *ds)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].DishName < out[j].DishName
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Tables lists every table with its completed order count and revenue today.
func (s *ReportService) Tables(ctx context.Context) ([]TableSales, error) {
	tables, err := s.store.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.completedToday(ctx)
	if err != nil {
		return nil, err
	}
	byTable := map[string]*TableSales{}
	out := make([]TableSales, 0, len(tables))
	for _, t := range tables {
		if t.Deleted() {
			continue
		}
		out = append(out, TableSales{TableID: t.ID, TableNo: t.TableNo, Name: t.Name, Revenue: decimal.Zero})
	}
	for i := range out {
		byTable[out[i].TableID] = &out[i]
	}
	for _, o := range orders {
		if ts, ok := byTable[o.TableID]; ok {
			ts.OrderCount++
			ts.Revenue = ts.Revenue.Add(o.PayAmount)
		}
	}
	return out, nil
}

func (s *ReportService) completedToday(ctx context.Context) ([]models.Order, error) {
	from, to := s.today()
	return s.store.ListOrders(ctx, store.OrderFilter{
		Statuses:    []models.OrderStatus{models.OrderCompleted},
		CreatedFrom: from,
		CreatedTo:   to,
		Ascending:   true,
	})
}

// today is the half-open range of the current calendar day in the clock's
// location.
func (s *ReportService) today() (time.Time, time.Time) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 0, 1)
}
