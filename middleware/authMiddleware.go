package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-restaurant-pos/helpers"
)

// Context keys set by Authentication.
const (
	KeyEmail = "email"
	KeyName  = "name"
	KeyUID   = "uid"
	KeyRole  = "user_role"
)

// Authentication accepts a staff token from the "token" header or an
// "Authorization: Bearer" header.
func Authentication(tokens *helpers.TokenMaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientToken := c.Request.Header.Get("token")
		if clientToken == "" {
			auth := c.Request.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				clientToken = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}
		if clientToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no authorization token provided"})
			return
		}
		claims, err := tokens.ValidateToken(clientToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyName, claims.Name)
		c.Set(KeyUID, claims.Uid)
		c.Set(KeyRole, claims.UserRole)
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles. It must
// run after Authentication.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString(KeyRole)] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "your role may not perform this action"})
			return
		}
		c.Next()
	}
}
