package routes

import (
	"github.com/gin-gonic/gin"

	controller "go-restaurant-pos/controllers"
	"go-restaurant-pos/middleware"
	"go-restaurant-pos/models"
)

func OrderRoutes(incomingRoutes gin.IRoutes, d Deps) {
	cashier := middleware.RequireRole(models.RoleCashier, models.RoleAdmin, models.RoleWaiter)
	incomingRoutes.GET("/orders", controller.GetOrders(d.Orders))
	incomingRoutes.GET("/orders/active", controller.GetActiveOrders(d.Orders))
	incomingRoutes.POST("/orders", controller.CreateOrder(d.Orders))
	incomingRoutes.GET("/orders/:order_id", controller.GetOrder(d.Orders))
	incomingRoutes.POST("/orders/:order_id/items", controller.AppendOrderItems(d.Orders))
	incomingRoutes.POST("/orders/:order_id/pay", cashier, controller.PayOrder(d.Orders))
	incomingRoutes.GET("/orders/:order_id/unpaid-amount", controller.GetUnpaidAmount(d.Orders))
	incomingRoutes.POST("/orders/:order_id/cancel", controller.CancelOrder(d.Orders))
	incomingRoutes.POST("/orders/:order_id/complete", controller.CompleteOrder(d.Orders))
}
