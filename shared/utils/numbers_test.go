package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceNumberFormat(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	ref := referenceNumber("ORD", now)
	parts := strings.Split(ref, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "ORD", parts[0])
	assert.Equal(t, "20240315", parts[1])
	assert.Len(t, parts[2], 8)
	assert.Equal(t, strings.ToUpper(parts[2]), parts[2])
}

func TestReferenceNumbersAreUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := NewOrderNumber(now)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

func TestNumberPrefixes(t *testing.T) {
	now := time.Now()
	assert.True(t, strings.HasPrefix(NewOrderNumber(now), "ORD-"))
	assert.True(t, strings.HasPrefix(NewInvoiceNumber(now), "INV-"))
	assert.True(t, strings.HasPrefix(NewAccountNumber(now), "CUST-"))
}
