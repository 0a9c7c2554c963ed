package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products within a single store. A product may only
// reference a category of its own store.
type Category struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"not null"`
	Description *string   `json:"description,omitempty"`
	StoreID     uuid.UUID `json:"store_id" gorm:"type:uuid;not null;index"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
