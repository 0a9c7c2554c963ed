package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item. StockQuantity never goes below zero; the
// repository enforces that with a conditional decrement.
type Product struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name          string          `json:"name" gorm:"not null"`
	Description   *string         `json:"description,omitempty"`
	SKU           string          `json:"sku"`
	CostPrice     decimal.Decimal `json:"cost_price" gorm:"type:decimal(18,2);not null;default:0"`
	SellPrice     decimal.Decimal `json:"sell_price" gorm:"type:decimal(18,2);not null"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;default:0"`
	CategoryID    uuid.UUID       `json:"category_id" gorm:"type:uuid;not null;index"`
	StoreID       uuid.UUID       `json:"store_id" gorm:"type:uuid;not null;index"`
	ImageURL      *string         `json:"image_url,omitempty"`
	IsActive      bool            `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}
