package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"go-restaurant-pos/middleware"
	"go-restaurant-pos/models"
	"go-restaurant-pos/services"
)

type createOrderRequest struct {
	TableID       string              `json:"table_id" validate:"required"`
	CustomerCount int                 `json:"customer_count" validate:"gte=0,lte=100"`
	Items         []services.CartLine `json:"items" validate:"required,min=1,dive"`
	Remark        string              `json:"remark" validate:"max=200"`
}

type payRequest struct {
	PayType models.PayType   `json:"pay_type" validate:"required"`
	Amount  *decimal.Decimal `json:"amount" validate:"required"`
}

// GetOrders lists orders newest first, optionally only those in ?status=.
func GetOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var status *models.OrderStatus
		if raw := c.Query("status"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || !models.OrderStatus(n).Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order status " + strconv.Quote(raw)})
				return
			}
			s := models.OrderStatus(n)
			status = &s
		}

		list, err := orders.ListOrders(ctx, status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetActiveOrders feeds the kitchen and floor views.
func GetActiveOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := orders.GetActiveOrders(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func CreateOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req createOrderRequest
		if !bindJSON(c, &req) {
			return
		}
		detail, err := orders.CreateOrder(ctx, services.CreateOrderCommand{
			TableID:       req.TableID,
			CustomerCount: req.CustomerCount,
			Items:         req.Items,
			Remark:        req.Remark,
			StaffID:       c.GetString(middleware.KeyUID),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, detail)
	}
}

func GetOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		detail, err := orders.GetOrderDetail(ctx, c.Param("order_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func AppendOrderItems(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req itemsRequest
		if !bindJSON(c, &req) {
			return
		}
		detail, err := orders.AppendItems(ctx, services.AppendItemsCommand{
			OrderID: c.Param("order_id"),
			Items:   req.Items,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// PayOrder settles every unpaid item of the order in one payment.
func PayOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req payRequest
		if !bindJSON(c, &req) {
			return
		}
		result, err := orders.Checkout(ctx, services.CheckoutCommand{
			OrderID: c.Param("order_id"),
			PayType: req.PayType,
			Amount:  *req.Amount,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetUnpaidAmount(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		orderID := c.Param("order_id")
		amount, err := orders.GetUnpaidAmount(ctx, orderID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order_id": orderID, "unpaid_amount": amount})
	}
}

func CancelOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := orders.CancelOrder(ctx, c.Param("order_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func CompleteOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := orders.CompleteOrder(ctx, c.Param("order_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
