package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a store user. StoreID is nil only for system
// administrators, who are not tied to any single store.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string     `json:"username" gorm:"uniqueIndex;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	FullName     string     `json:"full_name"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);not null;default:'staff'"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	StoreID      *uuid.UUID `json:"store_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Store *Store `json:"store,omitempty" gorm:"foreignKey:StoreID"`
}

// UserRole is a closed set; free-text roles are rejected at the boundary.
type UserRole string

const (
	RoleStaff       UserRole = "staff"
	RoleManager     UserRole = "manager"
	RoleSystemAdmin UserRole = "system_admin"
)

// ParseUserRole validates a role supplied as text
func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(strings.ToLower(s)) {
	case RoleStaff:
		return RoleStaff, nil
	case RoleManager:
		return RoleManager, nil
	case RoleSystemAdmin:
		return RoleSystemAdmin, nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

// IsSystemAdmin reports whether the role administers the whole platform
func (r UserRole) IsSystemAdmin() bool {
	return r == RoleSystemAdmin
}

// IsManager reports whether the role carries store-level management rights
func (r UserRole) IsManager() bool {
	return r == RoleManager
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsSystemAdmin reports whether the user administers the whole platform
func (u *User) IsSystemAdmin() bool {
	return u.Role.IsSystemAdmin()
}

// IsManager reports whether the user has store-level management rights
func (u *User) IsManager() bool {
	return u.Role.IsManager()
}
