// Package controllers turns HTTP requests into calls on the order engine and
// the catalog store. Every handler is built by a factory that receives its
// dependencies.
package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"go-restaurant-pos/services"
	"go-restaurant-pos/store"
)

var validate = validator.New()

const requestTimeout = 15 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError writes err as {"error": ...} with the status its kind maps to.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, store.ErrInsufficientStock), errors.Is(err, store.ErrDuplicateKey):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidAmount):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON decodes and validates the request body, answering 400 itself
// when either step fails.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
