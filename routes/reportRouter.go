package routes

import (
	"github.com/gin-gonic/gin"

	controller "go-restaurant-pos/controllers"
)

func ReportRoutes(incomingRoutes gin.IRoutes, d Deps) {
	incomingRoutes.GET("/reports/today", controller.GetTodaySummary(d.Reports))
	incomingRoutes.GET("/reports/top-dishes", controller.GetTopDishes(d.Reports))
	incomingRoutes.GET("/reports/tables", controller.GetTableSales(d.Reports))
}
