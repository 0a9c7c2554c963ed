// Package invoice manages invoices and their payment lifecycle. An
// invoice copies its totals from the order at creation and never
// follows later order edits.
package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ss-lucnguyen/seller-inventory/shared/apperr"
	"github.com/ss-lucnguyen/seller-inventory/shared/models"
	"github.com/ss-lucnguyen/seller-inventory/shared/repository"
	"github.com/ss-lucnguyen/seller-inventory/shared/tenancy"
	"github.com/ss-lucnguyen/seller-inventory/shared/utils"
)

// Service implements invoice operations against the persistence gateway
type Service struct {
	repo repository.Factory
}

// NewService creates an invoice service
func NewService(repo repository.Factory) *Service {
	return &Service{repo: repo}
}

// CreateInput carries the new-invoice request
type CreateInput struct {
	OrderID uuid.UUID
	DueDate *time.Time
	Notes   *string
}

// Detail is an invoice joined with order and customer display fields
type Detail struct {
	models.Invoice
	OrderNumber  string          `json:"order_number"`
	CustomerName string          `json:"customer_name"`
	AmountDue    decimal.Decimal `json:"amount_due"`
}

func toDetail(inv models.Invoice, orderNumber, customerName string) Detail {
	return Detail{
		Invoice:      inv,
		OrderNumber:  orderNumber,
		CustomerName: customerName,
		AmountDue:    inv.AmountDue(),
	}
}

// Create issues the invoice for a confirmed or completed order. At most
// one invoice ever exists per order, backed by a unique index.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Invoice, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	ord, err := gw.Orders().GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, apperr.Persistence(err, "get order")
	}
	if ord == nil {
		return nil, apperr.NotFound("order not found")
	}
	if !t.CanAccess(ord.StoreID) {
		return nil, apperr.Forbidden("order belongs to another store")
	}
	if ord.Status != models.OrderConfirmed && ord.Status != models.OrderCompleted {
		return nil, apperr.InvalidOperation("an invoice requires a confirmed or completed order, not %s", ord.Status)
	}

	existing, err := gw.Invoices().FindByOrder(ctx, ord.ID)
	if err != nil {
		return nil, apperr.Persistence(err, "find invoice")
	}
	if existing != nil {
		return nil, apperr.InvalidOperation("order already has invoice %s", existing.InvoiceNumber)
	}

	now := time.Now()
	inv := models.Invoice{
		InvoiceNumber: utils.NewInvoiceNumber(now),
		InvoiceDate:   now,
		DueDate:       in.DueDate,
		PaymentStatus: models.InvoiceNotPaid,
		SubTotal:      ord.SubTotal,
		Tax:           ord.Tax,
		Discount:      ord.Discount,
		Total:         ord.Total,
		AmountPaid:    decimal.Zero,
		Notes:         in.Notes,
		OrderID:       ord.ID,
		StoreID:       ord.StoreID,
	}
	if err := gw.Invoices().Add(ctx, &inv); err != nil {
		return nil, apperr.Persistence(err, "add invoice")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit invoice")
	}

	logrus.WithFields(logrus.Fields{
		"invoice_id":     inv.ID,
		"invoice_number": inv.InvoiceNumber,
		"order_id":       ord.ID,
		"total":          inv.Total,
	}).Info("invoice created")
	return &inv, nil
}

// loadForEdit fetches an invoice for mutation with tenant enforcement
func (s *Service) loadForEdit(ctx context.Context, gw repository.Gateway, t tenancy.Tenant, id uuid.UUID) (*models.Invoice, error) {
	inv, err := gw.Invoices().GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err, "get invoice")
	}
	if inv == nil {
		return nil, apperr.NotFound("invoice not found")
	}
	if !t.CanAccess(inv.StoreID) {
		return nil, apperr.Forbidden("invoice belongs to another store")
	}
	return inv, nil
}

// UpdatePayment sets the amount paid so far and re-derives the payment
// status. The amount must stay within 0..Total; setting a lower amount
// than before is allowed so a mis-entered payment can be corrected.
func (s *Service) UpdatePayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Invoice, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	inv, err := s.loadForEdit(ctx, gw, t, id)
	if err != nil {
		return nil, err
	}

	if amount.IsNegative() {
		return nil, apperr.InvalidOperation("payment amount cannot be negative")
	}
	if amount.GreaterThan(inv.Total) {
		return nil, apperr.InvalidOperation("payment amount exceeds invoice total")
	}

	inv.AmountPaid = amount
	inv.UpdatePaymentStatus()
	if err := gw.Invoices().Update(ctx, inv); err != nil {
		return nil, apperr.Persistence(err, "update invoice")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit invoice")
	}

	logrus.WithFields(logrus.Fields{
		"invoice_id":     inv.ID,
		"amount_paid":    inv.AmountPaid,
		"payment_status": inv.PaymentStatus,
	}).Info("invoice payment updated")
	return inv, nil
}

// MarkAsPaid settles the invoice in full
func (s *Service) MarkAsPaid(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	inv, err := s.loadForEdit(ctx, gw, t, id)
	if err != nil {
		return nil, err
	}

	inv.AmountPaid = inv.Total
	inv.UpdatePaymentStatus()
	if err := gw.Invoices().Update(ctx, inv); err != nil {
		return nil, apperr.Persistence(err, "update invoice")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit invoice")
	}
	return inv, nil
}

// Delete removes an invoice that has received no payment
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	inv, err := s.loadForEdit(ctx, gw, t, id)
	if err != nil {
		return err
	}
	if inv.AmountPaid.GreaterThan(decimal.Zero) {
		return apperr.InvalidOperation("an invoice with recorded payments cannot be deleted")
	}

	if err := gw.Invoices().Delete(ctx, inv); err != nil {
		return apperr.Persistence(err, "delete invoice")
	}
	if err := gw.Commit(); err != nil {
		return apperr.Persistence(err, "commit delete")
	}
	return nil
}

// decorate joins the order number and customer name onto an invoice
func (s *Service) decorate(ctx context.Context, gw repository.Gateway, inv models.Invoice) Detail {
	var orderNumber, customerName string
	if ord, err := gw.Orders().GetByID(ctx, inv.OrderID); err == nil && ord != nil {
		orderNumber = ord.OrderNumber
		if cust, err := gw.Customers().GetByID(ctx, ord.CustomerID); err == nil && cust != nil {
			customerName = cust.Name
		}
	}
	return toDetail(inv, orderNumber, customerName)
}

// Get returns one invoice, hiding cross-tenant records as NotFound
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	inv, err := gw.Invoices().GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err, "get invoice")
	}
	if inv == nil || !t.CanAccess(inv.StoreID) {
		return nil, apperr.NotFound("invoice not found")
	}

	detail := s.decorate(ctx, gw, *inv)
	return &detail, nil
}

// GetByOrder returns the invoice issued for an order, if any
func (s *Service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*Detail, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	inv, err := gw.Invoices().FindByOrder(ctx, orderID)
	if err != nil {
		return nil, apperr.Persistence(err, "find invoice")
	}
	if inv == nil || !t.CanAccess(inv.StoreID) {
		return nil, apperr.NotFound("invoice not found")
	}

	detail := s.decorate(ctx, gw, *inv)
	return &detail, nil
}

// List returns the caller's invoices; system admins see all
func (s *Service) List(ctx context.Context) ([]Detail, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	var invoices []models.Invoice
	if t.IsSystemAdmin() && t.StoreID == nil {
		invoices, err = gw.Invoices().GetAll(ctx)
	} else if t.StoreID != nil {
		invoices, err = gw.Invoices().ListByStore(ctx, *t.StoreID)
	} else {
		return nil, apperr.InvalidOperation("operation requires a store context")
	}
	if err != nil {
		return nil, apperr.Persistence(err, "list invoices")
	}

	details := make([]Detail, 0, len(invoices))
	for _, inv := range invoices {
		details = append(details, s.decorate(ctx, gw, inv))
	}
	return details, nil
}
