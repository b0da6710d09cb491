package routes

import (
	"github.com/gin-gonic/gin"

	controller "go-restaurant-pos/controllers"
	"go-restaurant-pos/middleware"
	"go-restaurant-pos/models"
)

// Login attempts per client IP.
const (
	loginAttemptsPerSecond = 0.5
	loginBurst             = 5
)

// UserRoutes registers the routes reachable before login. Signup carries its
// own guard so that only an admin can create staff accounts.
func UserRoutes(incomingRoutes gin.IRoutes, d Deps) {
	loginLimit := middleware.NewRateLimiter(loginAttemptsPerSecond, loginBurst)
	incomingRoutes.POST("/users/login", loginLimit.Handler(), controller.Login(d.Store, d.Tokens))
	incomingRoutes.POST("/users/signup",
		middleware.Authentication(d.Tokens),
		middleware.RequireRole(models.RoleAdmin),
		controller.SignUp(d.Store))
	incomingRoutes.GET("/ws", controller.HandleWebSocket(d.Hub))
	incomingRoutes.GET("/health", controller.HealthCheck(d.Store))
}
