package invoice

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ss-lucnguyen/seller-inventory/shared/utils"
)

// CreateInvoiceRequest represents the issue-invoice request
type CreateInvoiceRequest struct {
	OrderID uuid.UUID  `json:"order_id" binding:"required"`
	DueDate *time.Time `json:"due_date"`
	Notes   *string    `json:"notes"`
}

// UpdatePaymentRequest represents the record-payment request
type UpdatePaymentRequest struct {
	AmountPaid decimal.Decimal `json:"amount_paid" binding:"required"`
}

// RegisterRoutes mounts the invoice endpoints on an authenticated group
func RegisterRoutes(rg *gin.RouterGroup, svc *Service) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("", handleList(svc))
		invoices.GET("/:id", handleGet(svc))
		invoices.GET("/by-order/:orderId", handleGetByOrder(svc))
		invoices.POST("", handleCreate(svc))
		invoices.PUT("/:id/payment", handleUpdatePayment(svc))
		invoices.PUT("/:id/pay", handleMarkAsPaid(svc))
		invoices.DELETE("/:id", handleDelete(svc))
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
		var req CreateInvoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		inv, err := svc.Create(c.Request.Context(), CreateInput{
			OrderID: req.OrderID,
			DueDate: req.DueDate,
			Notes:   req.Notes,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.CreatedResponse(c, "Invoice created successfully", inv)
	}
}

func handleList(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		invoices, err := svc.List(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Invoices retrieved successfully", invoices)
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
		utils.OKResponse(c, "Invoice retrieved successfully", detail)
	}
}

func handleGetByOrder(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseParamID(c, "orderId")
		if !ok {
			return
		}
		detail, err := svc.GetByOrder(c.Request.Context(), orderID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Invoice retrieved successfully", detail)
	}
}

func handleUpdatePayment(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseParamID(c, "id")
		if !ok {
			return
		}
		var req UpdatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		inv, err := svc.UpdatePayment(c.Request.Context(), id, req.AmountPaid)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Payment updated successfully", inv)
	}
}

func handleMarkAsPaid(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseParamID(c, "id")
		if !ok {
			return
		}
		inv, err := svc.MarkAsPaid(c.Request.Context(), id)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Invoice marked as paid", inv)
	}
}

func handleDelete(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseParamID(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.OKResponse(c, "Invoice deleted successfully", nil)
	}
}
