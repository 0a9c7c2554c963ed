package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUpdatePaymentStatus(t *testing.T) {
	tests := []struct {
		name   string
		total  float64
		paid   float64
		expect InvoicePaymentStatus
	}{
		{"nothing paid", 100, 0, InvoiceNotPaid},
		{"partial", 100, 40, InvoicePartialPaid},
		{"exactly total", 100, 100, InvoicePaid},
		{"single cent", 100, 0.01, InvoicePartialPaid},
		{"one cent short", 100, 99.99, InvoicePartialPaid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv := Invoice{
				Total:      decimal.NewFromFloat(tc.total),
				AmountPaid: decimal.NewFromFloat(tc.paid),
			}
			inv.UpdatePaymentStatus()
			assert.Equal(t, tc.expect, inv.PaymentStatus)
		})
	}
}

func TestAmountDue(t *testing.T) {
	inv := Invoice{
		Total:      decimal.NewFromFloat(50.00),
		AmountPaid: decimal.NewFromFloat(12.34),
	}
	assert.True(t, inv.AmountDue().Equal(decimal.NewFromFloat(37.66)))

	inv.AmountPaid = inv.Total
	assert.True(t, inv.AmountDue().IsZero())
}
