package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-restaurant-pos/helpers"
	"go-restaurant-pos/models"
	"go-restaurant-pos/notify"
	"go-restaurant-pos/services"
	"go-restaurant-pos/store/memory"
)

type server struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
	tokens *helpers.TokenMaker
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	now := time.Now()
	st := memory.New()
	opts := []services.Option{
		services.WithLogger(log),
		services.WithClock(func() time.Time { return now }),
		services.WithDispatcher(func(fn func()) { fn() }),
	}
	s := &server{
		t:      t,
		router: gin.New(),
		store:  st,
		tokens: helpers.NewTokenMaker("test-secret", time.Hour),
	}
	Register(s.router, Deps{
		Store:   st,
		Orders:  services.NewOrderService(st, opts...),
		Tables:  services.NewTableService(st, opts...),
		Reports: services.NewReportService(st, opts...),
		Tokens:  s.tokens,
		Hub:     notify.NewHub(log),
	})
	return s
}

func (s *server) token(role string) string {
	s.t.Helper()
	tok, err := s.tokens.GenerateToken(role+"@pos.test", role, "uid-"+role, role)
	require.NoError(s.t, err)
	return tok
}

func (s *server) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("token", token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func (s *server) createDish(name, price string, stock int) models.Dish {
	s.t.Helper()
	w := s.do(http.MethodPost, "/foods", s.token(models.RoleAdmin), gin.H{
		"name":  name,
		"price": price,
		"stock": gin.H{"available": stock},
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var dish models.Dish
	decode(s.t, w, &dish)
	return dish
}

func (s *server) createTable(no string) models.Table {
	s.t.Helper()
	w := s.do(http.MethodPost, "/tables", s.token(models.RoleAdmin), gin.H{
		"table_number":     no,
		"number_of_guests": 4,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var table models.Table
	decode(s.t, w, &table)
	return table
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/orders", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/foods", "garbage", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil).Code)
}

func TestRoleGuards(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		role   string
	}{
		{"waiter cannot add dishes", http.MethodPost, "/foods", models.RoleWaiter},
		{"kitchen cannot add tables", http.MethodPost, "/tables", models.RoleKitchen},
		{"kitchen cannot take payment", http.MethodPost, "/orders/x/pay", models.RoleKitchen},
		{"cashier cannot move kitchen status", http.MethodPatch, "/orderItems/x/status", models.RoleCashier},
		{"waiter cannot sign up staff", http.MethodPost, "/users/signup", models.RoleWaiter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.method, tt.path, s.token(tt.role), gin.H{})
			assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
		})
	}
}

func TestDineInFlow(t *testing.T) {
	s := newServer(t)
	noodles := s.createDish("Noodles", "12.50", 5)
	table := s.createTable("A1")
	waiter := s.token(models.RoleWaiter)

	w := s.do(http.MethodPost, "/orders", waiter, gin.H{
		"table_id":       table.ID,
		"customer_count": 2,
		"items":          []gin.H{{"food_id": noodles.ID, "quantity": 2, "remark": "extra spicy"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.OrderDetail
	decode(t, w, &created)
	assert.True(t, decimal.RequireFromString("25").Equal(created.Order.TotalAmount))
	assert.Equal(t, "uid-"+models.RoleWaiter, created.Order.CreatedBy)
	assert.Equal(t, models.OrderAwaitingService, created.Order.Status)

	w = s.do(http.MethodGet, "/tables/"+table.ID, waiter, nil)
	var seated models.Table
	decode(t, w, &seated)
	assert.Equal(t, models.TableOccupied, seated.Status)

	w = s.do(http.MethodPost, "/tables/"+table.ID+"/items", waiter, gin.H{
		"items": []gin.H{{"food_id": noodles.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var appended models.OrderDetail
	decode(t, w, &appended)
	require.Len(t, appended.Items, 2)
	assert.True(t, decimal.RequireFromString("37.50").Equal(appended.Order.TotalAmount))

	w = s.do(http.MethodGet, "/foods/"+noodles.ID, waiter, nil)
	var dish models.Dish
	decode(t, w, &dish)
	assert.Equal(t, models.LimitedStock(2), dish.Stock)

	kitchen := s.token(models.RoleKitchen)
	for _, it := range appended.Items {
		w = s.do(http.MethodPatch, "/orderItems/"+it.ID+"/status", kitchen, gin.H{"status": int(models.PrepDone)})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = s.do(http.MethodGet, "/orders/"+created.Order.ID+"/unpaid-amount", waiter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var unpaid struct {
		Amount decimal.Decimal `json:"unpaid_amount"`
	}
	decode(t, w, &unpaid)
	assert.True(t, decimal.RequireFromString("37.50").Equal(unpaid.Amount), unpaid.Amount.String())

	w = s.do(http.MethodPost, "/orders/"+created.Order.ID+"/pay", s.token(models.RoleCashier), gin.H{
		"pay_type": int(models.PayCash),
		"amount":   "37.00",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid services.CheckoutResult
	decode(t, w, &paid)
	assert.Equal(t, models.OrderCompleted, paid.Order.Status)
	assert.True(t, decimal.RequireFromString("0.50").Equal(paid.Payment.Discount))
	assert.Len(t, paid.Payment.ItemIDs, 2)

	w = s.do(http.MethodGet, "/reports/today", waiter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary services.DailySummary
	decode(t, w, &summary)
	assert.Equal(t, 1, summary.OrderCount)
	assert.True(t, decimal.RequireFromString("37.00").Equal(summary.Revenue), summary.Revenue.String())

	w = s.do(http.MethodPost, "/tables/"+table.ID+"/clear", waiter, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cleared models.Table
	decode(t, w, &cleared)
	assert.Equal(t, models.TableFree, cleared.Status)

	w = s.do(http.MethodGet, "/tables/"+table.ID+"/order", waiter, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrderErrors(t *testing.T) {
	s := newServer(t)
	crab := s.createDish("Crab", "88.00", 1)
	table := s.createTable("B2")
	waiter := s.token(models.RoleWaiter)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"malformed json", `{"table_id":`, http.StatusBadRequest},
		{"no items", gin.H{"table_id": table.ID, "items": []gin.H{}}, http.StatusBadRequest},
		{"zero quantity", gin.H{"table_id": table.ID, "items": []gin.H{{"food_id": crab.ID, "quantity": 0}}}, http.StatusBadRequest},
		{"unknown table", gin.H{"table_id": "nope", "items": []gin.H{{"food_id": crab.ID, "quantity": 1}}}, http.StatusNotFound},
		{"unknown dish", gin.H{"table_id": table.ID, "items": []gin.H{{"food_id": "nope", "quantity": 1}}}, http.StatusNotFound},
		{"not enough stock", gin.H{"table_id": table.ID, "items": []gin.H{{"food_id": crab.ID, "quantity": 2}}}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/orders", waiter, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}

	w := s.do(http.MethodGet, "/tables/"+table.ID, waiter, nil)
	var tb models.Table
	decode(t, w, &tb)
	assert.Equal(t, models.TableFree, tb.Status)
}

func TestPayRejections(t *testing.T) {
	s := newServer(t)
	tea := s.createDish("Tea", "3.00", 10)
	table := s.createTable("C3")
	waiter := s.token(models.RoleWaiter)

	w := s.do(http.MethodPost, "/orders", waiter, gin.H{
		"table_id": table.ID,
		"items":    []gin.H{{"food_id": tea.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var detail models.OrderDetail
	decode(t, w, &detail)
	path := "/orders/" + detail.Order.ID + "/pay"

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, path, waiter, gin.H{"amount": "6"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, path, waiter, gin.H{"pay_type": 9, "amount": "6"}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodPost, path, waiter, gin.H{"pay_type": 1, "amount": "6.01"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/orders/missing/pay", waiter, gin.H{"pay_type": 1, "amount": "6"}).Code)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, path, waiter, gin.H{"pay_type": 1, "amount": "6"}).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/orders/"+detail.Order.ID+"/cancel", waiter, nil).Code)
}

func TestListOrdersByStatus(t *testing.T) {
	s := newServer(t)
	tea := s.createDish("Tea", "3.00", 10)
	first := s.createTable("D1")
	second := s.createTable("D2")
	waiter := s.token(models.RoleWaiter)

	var ids []string
	for _, tb := range []models.Table{first, second} {
		w := s.do(http.MethodPost, "/orders", waiter, gin.H{
			"table_id": tb.ID,
			"items":    []gin.H{{"food_id": tea.ID, "quantity": 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var d models.OrderDetail
		decode(t, w, &d)
		ids = append(ids, d.Order.ID)
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/orders/"+ids[0]+"/cancel", waiter, nil).Code)

	w := s.do(http.MethodGet, "/orders?status=5", waiter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cancelled []models.Order
	decode(t, w, &cancelled)
	require.Len(t, cancelled, 1)
	assert.Equal(t, ids[0], cancelled[0].ID)

	w = s.do(http.MethodGet, "/orders/active", waiter, nil)
	var active []models.OrderDetail
	decode(t, w, &active)
	require.Len(t, active, 1)
	assert.Equal(t, ids[1], active[0].Order.ID)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/orders?status=42", waiter, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/orders?status=open", waiter, nil).Code)
}

func TestSignUpAndLogin(t *testing.T) {
	s := newServer(t)
	admin := s.token(models.RoleAdmin)
	signup := gin.H{
		"name":      "Mei",
		"email":     "Mei@pos.test",
		"phone":     "555-0101",
		"user_role": models.RoleCashier,
		"password":  "hunter22",
	}

	w := s.do(http.MethodPost, "/users/signup", admin, signup)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "hunter22")
	assert.NotContains(t, w.Body.String(), "password")

	signup["email"] = "mei@pos.test"
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/users/signup", admin, signup).Code)

	w = s.do(http.MethodPost, "/users/login", "", gin.H{"email": "mei@pos.test", "password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decode(t, w, &login)
	claims, err := s.tokens.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCashier, claims.UserRole)
	assert.Equal(t, login.User.ID, claims.Uid)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/orders", login.Token, nil).Code)

	w = s.do(http.MethodPost, "/users/login", "", gin.H{"email": "mei@pos.test", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodPost, "/users/login", "", gin.H{"email": "nobody@pos.test", "password": "hunter22"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateFood(t *testing.T) {
	s := newServer(t)
	soup := s.createDish("Soup", "6.00", 4)
	admin := s.token(models.RoleAdmin)
	path := "/foods/" + soup.ID

	w := s.do(http.MethodPatch, path, admin, gin.H{"price": "6.50", "active": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got models.Dish
	decode(t, w, &got)
	assert.Equal(t, "Soup", got.Name)
	assert.True(t, decimal.RequireFromString("6.50").Equal(got.Price))
	assert.False(t, got.Active)
	assert.Equal(t, models.LimitedStock(4), got.Stock)

	w = s.do(http.MethodPatch, path, admin, gin.H{"stock": gin.H{"unlimited": true}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &got)
	assert.True(t, got.Stock.Unlimited())

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, path, admin, gin.H{"price": "-1"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPatch, "/foods/missing", admin, gin.H{"name": "Stew"}).Code)
}

func TestTopDishesLimit(t *testing.T) {
	s := newServer(t)
	waiter := s.token(models.RoleWaiter)

	w := s.do(http.MethodGet, "/reports/top-dishes?limit=3", waiter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/reports/top-dishes?limit=0", waiter, nil).Code)
}
