package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"go-restaurant-pos/models"
	"go-restaurant-pos/store"
)

type foodRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=100"`
	Category string          `json:"category" validate:"max=50"`
	Image    string          `json:"food_image" validate:"omitempty,url"`
	Price    decimal.Decimal `json:"price"`
	Stock    *models.Stock   `json:"stock"`
	Active   *bool           `json:"active"`
}

// foodPatch carries only the fields a PATCH wants to change.
type foodPatch struct {
	Name     *string          `json:"name" validate:"omitempty,min=2,max=100"`
	Category *string          `json:"category" validate:"omitempty,max=50"`
	Image    *string          `json:"food_image" validate:"omitempty,url"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *models.Stock    `json:"stock"`
	Active   *bool            `json:"active"`
}

// GetFoods lists the menu, optionally narrowed by ?category=.
func GetFoods(catalog store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		dishes, err := catalog.ListDishes(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		if category := c.Query("category"); category != "" {
			filtered := dishes[:0]
			for _, d := range dishes {
				if strings.EqualFold(d.Category, category) {
					filtered = append(filtered, d)
				}
			}
			dishes = filtered
		}
		c.JSON(http.StatusOK, dishes)
	}
}

func GetFood(catalog store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		dish, err := catalog.GetDish(ctx, c.Param("food_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dish)
	}
}

// CreateFood adds a dish. Stock defaults to unlimited and new dishes are on
// sale unless the request says otherwise.
func CreateFood(catalog store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req foodRequest
		if !bindJSON(c, &req) {
			return
		}
		if !req.Price.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be greater than zero"})
			return
		}

		dish := models.Dish{
			Name:     req.Name,
			Category: req.Category,
			Image:    req.Image,
			Price:    req.Price.Round(2),
			Stock:    models.UnlimitedStock(),
			Active:   true,
		}
		if req.Stock != nil {
			dish.Stock = *req.Stock
		}
		if req.Active != nil {
			dish.Active = *req.Active
		}
		dish.Touch(time.Now())

		if err := catalog.InsertDish(ctx, &dish); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dish)
	}
}

// UpdateFood applies a partial update. A stock value overwrites the counter
// outright.
func UpdateFood(catalog store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var patch foodPatch
		if !bindJSON(c, &patch) {
			return
		}
		if patch.Price != nil && !patch.Price.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be greater than zero"})
			return
		}

		id := c.Param("food_id")
		dish, err := catalog.GetDish(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		if patch.Name != nil {
			dish.Name = *patch.Name
		}
		if patch.Category != nil {
			dish.Category = *patch.Category
		}
		if patch.Image != nil {
			dish.Image = *patch.Image
		}
		if patch.Price != nil {
			dish.Price = patch.Price.Round(2)
		}
		if patch.Active != nil {
			dish.Active = *patch.Active
		}
		dish.Touch(time.Now())

		if err := catalog.UpdateDish(ctx, &dish); err != nil {
			respondError(c, err)
			return
		}
		if patch.Stock != nil {
			if err := catalog.SetDishStock(ctx, id, *patch.Stock); err != nil {
				respondError(c, err)
				return
			}
		}

		updated, err := catalog.GetDish(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
