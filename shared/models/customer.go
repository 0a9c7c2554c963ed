package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer belongs to one store. Each store carries at most one default
// customer (the anonymous walk-in buyer), guarded by a partial unique
// index on (store_id) where is_default.
type Customer struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name          string    `json:"name" gorm:"not null"`
	Gender        Gender    `json:"gender" gorm:"type:varchar(10);not null;default:'unknown'"`
	Mobile        *string   `json:"mobile,omitempty"`
	Address       *string   `json:"address,omitempty"`
	AccountNumber string    `json:"account_number" gorm:"uniqueIndex;not null"`
	IsDefault     bool      `json:"is_default" gorm:"default:false"`
	StoreID       uuid.UUID `json:"store_id" gorm:"type:uuid;not null;index"`
	IsActive      bool      `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Gender is a closed set; free text is rejected at the boundary.
type Gender string

const (
	GenderUnknown Gender = "unknown"
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// ParseGender validates a gender supplied as text. Empty input maps to
// unknown.
func ParseGender(s string) (Gender, error) {
	if s == "" {
		return GenderUnknown, nil
	}
	switch Gender(strings.ToLower(s)) {
	case GenderUnknown:
		return GenderUnknown, nil
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("invalid gender %q", s)
	}
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
