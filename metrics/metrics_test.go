package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestBusinessCounters(t *testing.T) {
	m := New()
	m.OrderCreated()
	m.OrderCreated()
	m.OrderCancelled()
	m.CheckoutRecorded(decimal.RequireFromString("43.50"))
	m.CheckoutRecorded(decimal.Zero)
	m.StockRejected("dish-1")

	out := scrape(t, m)
	assert.Contains(t, out, "restaurant_pos_orders_created_total 2")
	assert.Contains(t, out, "restaurant_pos_orders_cancelled_total 1")
	assert.Contains(t, out, "restaurant_pos_checkout_payments_total 2")
	assert.Contains(t, out, "restaurant_pos_checkout_amount_total 43.5")
	assert.Contains(t, out, `restaurant_pos_stock_rejections_total{food_id="dish-1"} 1`)
}

func TestHTTPAndConnectionMetrics(t *testing.T) {
	m := New()
	displays := 3
	m.WatchConnections(func() int { return displays })
	m.IncrementInFlight()
	m.RecordHTTPRequest("POST", "/orders/:order_id/pay", "200", 20*time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, "restaurant_pos_kitchen_display_connections 3")
	assert.Contains(t, out, "restaurant_pos_http_inflight_requests 1")
	assert.Contains(t, out, `restaurant_pos_http_requests_total{method="POST",path="/orders/:order_id/pay",status="200"} 1`)

	m.DecrementInFlight()
	displays = 0
	out = scrape(t, m)
	assert.Contains(t, out, "restaurant_pos_kitchen_display_connections 0")
	assert.Contains(t, out, "restaurant_pos_http_inflight_requests 0")
}

func TestInstancesDoNotShareRegistries(t *testing.T) {
	a, b := New(), New()
	a.OrderCreated()
	assert.Contains(t, scrape(t, b), "restaurant_pos_orders_created_total 0")
}
