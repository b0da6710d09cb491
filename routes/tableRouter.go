package routes

import (
	"github.com/gin-gonic/gin"

	controller "go-restaurant-pos/controllers"
	"go-restaurant-pos/middleware"
	"go-restaurant-pos/models"
)

func TableRoutes(incomingRoutes gin.IRoutes, d Deps) {
	admin := middleware.RequireRole(models.RoleAdmin)
	incomingRoutes.GET("/tables", controller.GetTables(d.Store))
	incomingRoutes.GET("/tables/:table_id", controller.GetTable(d.Store))
	incomingRoutes.POST("/tables", admin, controller.CreateTable(d.Store))
	incomingRoutes.PATCH("/tables/:table_id", admin, controller.UpdateTable(d.Store))
	incomingRoutes.POST("/tables/:table_id/clear", controller.ClearTable(d.Tables))
	incomingRoutes.POST("/tables/:table_id/pending-clear", controller.MarkPendingClear(d.Tables))
	incomingRoutes.GET("/tables/:table_id/order", controller.GetTableOrder(d.Orders))
	incomingRoutes.POST("/tables/:table_id/items", controller.AppendTableItems(d.Orders))
}
