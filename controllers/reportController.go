package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-restaurant-pos/services"
)

const maxTopDishes = 100

func GetTodaySummary(reports *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		summary, err := reports.Today(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// GetTopDishes ranks today's dishes by quantity sold. ?limit= defaults to
// the service's own limit.
func GetTopDishes(reports *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxTopDishes {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and " + strconv.Itoa(maxTopDishes)})
				return
			}
			limit = n
		}

		dishes, err := reports.TopDishes(ctx, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dishes)
	}
}

func GetTableSales(reports *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		tables, err := reports.Tables(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tables)
	}
}
