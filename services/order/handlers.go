package order

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ss-lucnguyen/seller-inventory/shared/utils"
)

// CreateOrderRequest represents the place-order request
type CreateOrderRequest struct {
	CustomerID *uuid.UUID         `json:"customer_id"`
	Tax        decimal.Decimal    `json:"tax"`
	Discount   decimal.Decimal    `json:"discount"`
	Notes      *string            `json:"notes"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderItemRequest is one requested order line
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// UpdateStatusRequest represents the status transition request
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RegisterRoutes mounts the order endpoints on an authenticated group
func RegisterRoutes(rg *gin.RouterGroup, svc *Service) {
	orders := rg.Group("/orders")
	{
		orders.GET("", handleList(svc))
		orders.GET("/:id", handleGet(svc))
		orders.POST("", handleCreate(svc))
		orders.POST("/:id/items", handleAddItem(svc))
		orders.DELETE("/:id/items/:itemId", handleRemoveItem(svc))
		orders.PUT("/:id/status", handleUpdateStatus(svc))
	}
}

func parseParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func handleCreate(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		items := make([]ItemInput, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		ord, err := svc.Create(c.Request.Context(), CreateInput{
			CustomerID: req.CustomerID,
			Tax:        req.Tax,
			Discount:   req.Discount,
			Notes:      req.Notes,
			Items:      items,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.CreatedResponse(c, "Order created successfully", ord)
	}
}

func handleList(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.List(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Orders retrieved successfully", orders)
	}
}

func handleGet(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseParamID(c, "id")
		if !ok {
			return
		}
		detail, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Order retrieved successfully", detail)
	}
}

func handleAddItem(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseParamID(c, "id")
		if !ok {
			return
		}
		var req OrderItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		ord, err := svc.AddItem(c.Request.Context(), id, ItemInput{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Item added successfully", ord)
	}
}

func handleRemoveItem(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseParamID(c, "id")
		if !ok {
			return
		}
		itemID, ok := parseParamID(c, "itemId")
		if !ok {
			return
		}
		ord, err := svc.RemoveItem(c.Request.Context(), id, itemID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Item removed successfully", ord)
	}
}

func handleUpdateStatus(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseParamID(c, "id")
		if !ok {
			return
		}
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		ord, err := svc.UpdateStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Order status updated successfully", ord)
	}
}
