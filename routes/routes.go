// Package routes wires the controllers onto a gin engine.
package routes

import (
	"github.com/gin-gonic/gin"

	"go-restaurant-pos/helpers"
	"go-restaurant-pos/middleware"
	"go-restaurant-pos/notify"
	"go-restaurant-pos/services"
	"go-restaurant-pos/store"
)

// Deps is everything a handler may need.
type Deps struct {
	Store   store.Store
	Orders  *services.OrderService
	Tables  *services.TableService
	Reports *services.ReportService
	Tokens  *helpers.TokenMaker
	Hub     *notify.Hub
}

// Register mounts the public routes, then every route that needs a token.
func Register(router *gin.Engine, d Deps) {
	UserRoutes(router, d)

	authorized := router.Group("/", middleware.Authentication(d.Tokens))
	FoodRoutes(authorized, d)
	TableRoutes(authorized, d)
	OrderRoutes(authorized, d)
	OrderItemRoutes(authorized, d)
	ReportRoutes(authorized, d)
}
