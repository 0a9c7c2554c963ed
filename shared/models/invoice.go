package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is issued at most once per order and copies the order totals
// at creation time; later order edits never change an issued invoice.
type Invoice struct {
	ID            uuid.UUID            `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	InvoiceNumber string               `json:"invoice_number" gorm:"uniqueIndex;not null"`
	InvoiceDate   time.Time            `json:"invoice_date" gorm:"not null"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
	PaymentStatus InvoicePaymentStatus `json:"payment_status" gorm:"type:varchar(20);not null;default:'not_paid'"`
	SubTotal      decimal.Decimal      `json:"sub_total" gorm:"type:decimal(18,2);not null;default:0"`
	Tax           decimal.Decimal      `json:"tax" gorm:"type:decimal(18,2);not null;default:0"`
	Discount      decimal.Decimal      `json:"discount" gorm:"type:decimal(18,2);not null;default:0"`
	Total         decimal.Decimal      `json:"total" gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid    decimal.Decimal      `json:"amount_paid" gorm:"type:decimal(18,2);not null;default:0"`
	Notes         *string              `json:"notes,omitempty"`
	OrderID       uuid.UUID            `json:"order_id" gorm:"type:uuid;uniqueIndex;not null"`
	StoreID       uuid.UUID            `json:"store_id" gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// InvoicePaymentStatus is derived purely from AmountPaid vs Total.
type InvoicePaymentStatus string

const (
	InvoiceNotPaid     InvoicePaymentStatus = "not_paid"
	InvoicePartialPaid InvoicePaymentStatus = "partial_paid"
	InvoicePaid        InvoicePaymentStatus = "paid"
)

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// AmountDue is Total minus AmountPaid; it is derived, never persisted.
func (i *Invoice) AmountDue() decimal.Decimal {
	return i.Total.Sub(i.AmountPaid)
}

// UpdatePaymentStatus re-derives PaymentStatus from AmountPaid vs Total
func (i *Invoice) UpdatePaymentStatus() {
	switch {
	case i.AmountPaid.GreaterThanOrEqual(i.Total):
		i.PaymentStatus = InvoicePaid
	case i.AmountPaid.GreaterThan(decimal.Zero):
		i.PaymentStatus = InvoicePartialPaid
	default:
		i.PaymentStatus = InvoiceNotPaid
	}
}
