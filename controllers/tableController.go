package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-restaurant-pos/models"
	"go-restaurant-pos/services"
	"go-restaurant-pos/store"
)

type tableRequest struct {
	TableNo  string `json:"table_number" validate:"required,max=20"`
	Name     string `json:"name" validate:"max=50"`
	Capacity int    `json:"number_of_guests" validate:"gte=1,lte=100"`
}

type tablePatch struct {
	TableNo  *string `json:"table_number" validate:"omitempty,min=1,max=20"`
	Name     *string `json:"name" validate:"omitempty,max=50"`
	Capacity *int    `json:"number_of_guests" validate:"omitempty,gte=1,lte=100"`
}

type itemsRequest struct {
	Items []services.CartLine `json:"items" validate:"required,min=1,dive"`
}

func GetTables(catalog store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		tables, err := catalog.ListTables(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tables)
	}
}

func GetTable(catalog store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		table, err := catalog.GetTable(ctx, c.Param("table_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, table)
	}
}

// CreateTable registers a free table. Table numbers are unique.
func CreateTable(catalog store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req tableRequest
		if !bindJSON(c, &req) {
			return
		}
		table := models.Table{
			TableNo:  req.TableNo,
			Name:     req.Name,
			Capacity: req.Capacity,
			Status:   models.TableFree,
		}
		table.Touch(time.Now())

		if err := catalog.InsertTable(ctx, &table); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, table)
	}
}

// UpdateTable edits the descriptive fields of a table. Occupancy is owned by
// the order lifecycle and cannot be set here.
func UpdateTable(catalog store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var patch tablePatch
		if !bindJSON(c, &patch) {
			return
		}
		table, err := catalog.GetTable(ctx, c.Param("table_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if patch.TableNo != nil {
			table.TableNo = *patch.TableNo
		}
		if patch.Name != nil {
			table.Name = *patch.Name
		}
		if patch.Capacity != nil {
			table.Capacity = *patch.Capacity
		}
		table.Touch(time.Now())

		if err := catalog.UpdateTable(ctx, &table); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, table)
	}
}

func ClearTable(tables *services.TableService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		table, err := tables.ClearTable(ctx, c.Param("table_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, table)
	}
}

func MarkPendingClear(tables *services.TableService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		table, err := tables.MarkPendingClear(ctx, c.Param("table_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, table)
	}
}

// GetTableOrder returns the order currently seated at a table.
func GetTableOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		detail, err := orders.GetOrderByTable(ctx, c.Param("table_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// AppendTableItems adds dishes to whatever order is open at the table.
func AppendTableItems(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req itemsRequest
		if !bindJSON(c, &req) {
			return
		}
		detail, err := orders.AppendItemsToTable(ctx, services.AppendToTableCommand{
			TableID: c.Param("table_id"),
			Items:   req.Items,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}
