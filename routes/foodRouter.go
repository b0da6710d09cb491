package routes

import (
	"github.com/gin-gonic/gin"

	controller "go-restaurant-pos/controllers"
	"go-restaurant-pos/middleware"
	"go-restaurant-pos/models"
)

func FoodRoutes(incomingRoutes gin.IRoutes, d Deps) {
	admin := middleware.RequireRole(models.RoleAdmin)
	incomingRoutes.GET("/foods", controller.GetFoods(d.Store))
	incomingRoutes.GET("/foods/:food_id", controller.GetFood(d.Store))
	incomingRoutes.POST("/foods", admin, controller.CreateFood(d.Store))
	incomingRoutes.PATCH("/foods/:food_id", admin, controller.UpdateFood(d.Store))
}
