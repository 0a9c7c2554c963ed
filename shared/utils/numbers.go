package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// referenceNumber builds a human-facing identifier such as
// ORD-20260901-1A2B3C4D. Uniqueness is enforced by the database index;
// collisions are treated as negligible and not retried.
func referenceNumber(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}

// NewOrderNumber generates a unique order reference
func NewOrderNumber(now time.Time) string {
	return referenceNumber("ORD", now)
}

// NewInvoiceNumber generates a unique invoice reference
func NewInvoiceNumber(now time.Time) string {
	return referenceNumber("INV", now)
}

// NewAccountNumber generates a unique customer account reference
func NewAccountNumber(now time.Time) string {
	return referenceNumber("CUST", now)
}
