package models

import (
	"time"

	"github.com/google/uuid"
)

// StoreInvitation is a single-use, time-boxed invitation for a new user
// to join a store. Tokens are URL-safe and matched exactly.
type StoreInvitation struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID         uuid.UUID `json:"store_id" gorm:"type:uuid;not null;index"`
	Email           string    `json:"email" gorm:"not null"`
	Role            UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'staff'"`
	Token           string    `json:"token" gorm:"uniqueIndex;not null"`
	ExpiresAt       time.Time `json:"expires_at" gorm:"not null"`
	IsUsed          bool      `json:"is_used" gorm:"default:false"`
	InvitedByUserID uuid.UUID `json:"invited_by_user_id" gorm:"type:uuid;not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Store *Store `json:"store,omitempty" gorm:"foreignKey:StoreID"`
}

// TableName returns the table name for the StoreInvitation model
func (StoreInvitation) TableName() string {
	return "store_invitations"
}

// IsExpired reports whether the invitation is past its expiry
func (i *StoreInvitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// IsConsumable reports whether the invitation can still be accepted
func (i *StoreInvitation) IsConsumable() bool {
	return !i.IsUsed && !i.IsExpired()
}
