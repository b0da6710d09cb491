package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go-restaurant-pos/helpers"
	"go-restaurant-pos/models"
	"go-restaurant-pos/store"
)

type signUpRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Role     string `json:"user_role" validate:"required,oneof=ADMIN WAITER KITCHEN CASHIER"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUp creates a staff account. Emails are unique regardless of case.
func SignUp(users store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req signUpRequest
		if !bindJSON(c, &req) {
			return
		}
		hash, err := helpers.HashPassword(req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		user := models.User{
			Name:         req.Name,
			Email:        strings.TrimSpace(req.Email),
			Phone:        req.Phone,
			Role:         req.Role,
			PasswordHash: hash,
		}
		user.Touch(time.Now())

		if err := users.InsertUser(ctx, &user); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// Login exchanges credentials for a signed token.
func Login(users store.Store, tokens *helpers.TokenMaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req loginRequest
		if !bindJSON(c, &req) {
			return
		}
		found, err := users.FindUserByEmail(ctx, strings.TrimSpace(req.Email))
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			respondError(c, err)
			return
		}
		if err != nil || !helpers.VerifyPassword(req.Password, found.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "email or password is incorrect"})
			return
		}

		token, err := tokens.GenerateToken(found.Email, found.Name, found.ID, found.Role)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user": found})
	}
}
