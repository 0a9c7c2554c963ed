package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the sales document of one store. OrderItems is the sole
// source of SubTotal; totals are always recomputed from the current
// item set, never hand-patched.
type Order struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderNumber string          `json:"order_number" gorm:"uniqueIndex;not null"`
	OrderDate   time.Time       `json:"order_date" gorm:"not null"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	SubTotal    decimal.Decimal `json:"sub_total" gorm:"type:decimal(18,2);not null;default:0"`
	Tax         decimal.Decimal `json:"tax" gorm:"type:decimal(18,2);not null;default:0"`
	Discount    decimal.Decimal `json:"discount" gorm:"type:decimal(18,2);not null;default:0"`
	Total       decimal.Decimal `json:"total" gorm:"type:decimal(18,2);not null;default:0"`
	Notes       *string         `json:"notes,omitempty"`
	UserID      uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	CustomerID  uuid.UUID       `json:"customer_id" gorm:"type:uuid;not null;index"`
	StoreID     uuid.UUID       `json:"store_id" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relationships
	OrderItems []OrderItem `json:"order_items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem snapshots the product name and sell price at order time so
// historical orders are immune to later catalog edits.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID     uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	ProductName string          `json:"product_name" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(18,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderStatus is a closed set with an enforced transition graph.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
	OrderFinished  OrderStatus = "finished"
)

// ParseOrderStatus validates a status supplied as text
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(s)) {
	case OrderPending:
		return OrderPending, nil
	case OrderConfirmed:
		return OrderConfirmed, nil
	case OrderCompleted:
		return OrderCompleted, nil
	case OrderCancelled:
		return OrderCancelled, nil
	case OrderFinished:
		return OrderFinished, nil
	default:
		return "", fmt.Errorf("invalid order status %q", s)
	}
}

// CanTransitionTo reports whether the status graph allows moving to next.
// Cancelled and Finished are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderConfirmed || next == OrderCancelled
	case OrderConfirmed:
		return next == OrderCompleted || next == OrderCancelled
	case OrderCompleted:
		return next == OrderFinished
	default:
		return false
	}
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// TotalPrice returns the line total for the item
func (oi *OrderItem) TotalPrice() decimal.Decimal {
	return oi.UnitPrice.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}

// CalculateTotal recomputes SubTotal from the attached items and derives
// Total = SubTotal + Tax - Discount.
func (o *Order) CalculateTotal() {
	sub := decimal.Zero
	for i := range o.OrderItems {
		sub = sub.Add(o.OrderItems[i].TotalPrice())
	}
	o.SubTotal = sub
	o.Total = sub.Add(o.Tax).Sub(o.Discount)
}
