package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-restaurant-pos/models"
	"go-restaurant-pos/services"
)

type itemStatusRequest struct {
	Status *models.PrepStatus `json:"status" validate:"required"`
}

// UpdateOrderItemStatus moves a line item along the kitchen workflow.
func UpdateOrderItemStatus(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req itemStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		item, err := orders.AdvanceItemStatus(ctx, services.AdvanceItemCommand{
			ItemID: c.Param("order_item_id"),
			Status: *req.Status,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}
