package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTotal(t *testing.T) {
	o := Order{
		Tax:      decimal.NewFromFloat(2.50),
		Discount: decimal.NewFromFloat(1.00),
		OrderItems: []OrderItem{
			{UnitPrice: decimal.NewFromFloat(10.00), Quantity: 3},
			{UnitPrice: decimal.NewFromFloat(4.25), Quantity: 2},
		},
	}

	o.CalculateTotal()

	assert.True(t, o.SubTotal.Equal(decimal.NewFromFloat(38.50)), "sub total %s", o.SubTotal)
	assert.True(t, o.Total.Equal(decimal.NewFromFloat(40.00)), "total %s", o.Total)
}

func TestCalculateTotalEmptyItems(t *testing.T) {
	o := Order{
		SubTotal: decimal.NewFromInt(99),
		Total:    decimal.NewFromInt(99),
	}

	o.CalculateTotal()

	assert.True(t, o.SubTotal.IsZero())
	assert.True(t, o.Total.IsZero())
}

func TestOrderItemTotalPrice(t *testing.T) {
	it := OrderItem{ID: uuid.New(), UnitPrice: decimal.NewFromFloat(3.33), Quantity: 3}
	assert.True(t, it.TotalPrice().Equal(decimal.NewFromFloat(9.99)))
}

func TestOrderStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderPending, OrderConfirmed},
		{OrderPending, OrderCancelled},
		{OrderConfirmed, OrderCompleted},
		{OrderConfirmed, OrderCancelled},
		{OrderCompleted, OrderFinished},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	rejected := []struct{ from, to OrderStatus }{
		{OrderPending, OrderCompleted},
		{OrderPending, OrderFinished},
		{OrderConfirmed, OrderPending},
		{OrderConfirmed, OrderFinished},
		{OrderCompleted, OrderCancelled},
		{OrderCompleted, OrderPending},
		{OrderCancelled, OrderPending},
		{OrderCancelled, OrderConfirmed},
		{OrderFinished, OrderCompleted},
	}
	for _, tc := range rejected {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("Confirmed")
	assert.NoError(t, err)
	assert.Equal(t, OrderConfirmed, st)

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)
}
