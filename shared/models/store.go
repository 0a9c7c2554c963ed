package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the tenant root. Every domain record hangs off exactly one
// store and is only visible inside it.
type Store struct {
	ID                    uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name                  string             `json:"name" gorm:"not null"`
	Slug                  string             `json:"slug" gorm:"uniqueIndex;not null"`
	Location              *string            `json:"location,omitempty"`
	Address               *string            `json:"address,omitempty"`
	Industry              *string            `json:"industry,omitempty"`
	Description           *string            `json:"description,omitempty"`
	ContactEmail          *string            `json:"contact_email,omitempty"`
	ContactPhone          *string            `json:"contact_phone,omitempty"`
	Currency              string             `json:"currency" gorm:"not null;default:'USD'"`
	IsActive              bool               `json:"is_active" gorm:"default:true"`
	SubscriptionStatus    SubscriptionStatus `json:"subscription_status" gorm:"type:varchar(20);not null;default:'trial'"`
	SubscriptionExpiresAt *time.Time         `json:"subscription_expires_at,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`

	// Relationships
	Users []User `json:"users,omitempty" gorm:"foreignKey:StoreID"`
}

// SubscriptionStatus tracks the store's billing state
type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionSuspended SubscriptionStatus = "suspended"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// ParseSubscriptionStatus validates a subscription status supplied as text
func ParseSubscriptionStatus(s string) (SubscriptionStatus, error) {
	switch SubscriptionStatus(strings.ToLower(s)) {
	case SubscriptionTrial:
		return SubscriptionTrial, nil
	case SubscriptionActive:
		return SubscriptionActive, nil
	case SubscriptionSuspended:
		return SubscriptionSuspended, nil
	case SubscriptionCancelled:
		return SubscriptionCancelled, nil
	case SubscriptionExpired:
		return SubscriptionExpired, nil
	default:
		return "", fmt.Errorf("invalid subscription status %q", s)
	}
}

// TableName returns the table name for the Store model
func (Store) TableName() string {
	return "stores"
}
