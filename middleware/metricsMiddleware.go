package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go-restaurant-pos/metrics"
)

// Metrics records every request against its route template, so
// /orders/42 and /orders/43 share one series.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.IncrementInFlight()
		defer m.DecrementInFlight()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
