package routes

import (
	"github.com/gin-gonic/gin"

	controller "go-restaurant-pos/controllers"
	"go-restaurant-pos/middleware"
	"go-restaurant-pos/models"
)

func OrderItemRoutes(incomingRoutes gin.IRoutes, d Deps) {
	incomingRoutes.PATCH("/orderItems/:order_item_id/status",
		middleware.RequireRole(models.RoleKitchen, models.RoleAdmin, models.RoleWaiter),
		controller.UpdateOrderItemStatus(d.Orders))
}
