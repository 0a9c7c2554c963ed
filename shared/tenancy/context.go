// Package tenancy carries the per-request tenant identity. It is a
// plain context value threaded through every service call, never a
// process-wide singleton, so the core stays safe under concurrent
// requests and testable without the web layer.
package tenancy

import (
	"context"

	"github.com/google/uuid"

	"github.com/ss-lucnguyen/seller-inventory/shared/apperr"
	"github.com/ss-lucnguyen/seller-inventory/shared/models"
)

// Tenant is the ambient identity of one authenticated request. It
// exposes facts only; services perform their own enforcement.
type Tenant struct {
	StoreID *uuid.UUID
	UserID  uuid.UUID
	Role    models.UserRole
}

// IsSystemAdmin reports whether the caller administers the platform
func (t Tenant) IsSystemAdmin() bool {
	return t.Role == models.RoleSystemAdmin
}

// HasStoreAccess reports whether the caller is bound to a store or is a
// system admin
func (t Tenant) HasStoreAccess() bool {
	return t.StoreID != nil || t.IsSystemAdmin()
}

// CanAccess reports whether the caller may touch records of storeID
func (t Tenant) CanAccess(storeID uuid.UUID) bool {
	if t.IsSystemAdmin() {
		return true
	}
	return t.StoreID != nil && *t.StoreID == storeID
}

type ctxKey struct{}

// NewContext returns ctx carrying the tenant
func NewContext(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext extracts the tenant set by the auth middleware. ok is
// false on unauthenticated requests.
func FromContext(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(ctxKey{}).(Tenant)
	return t, ok
}

// Require extracts the tenant or fails with an unauthorized error
func Require(ctx context.Context) (Tenant, error) {
	t, ok := FromContext(ctx)
	if !ok {
		return Tenant{}, apperr.Unauthorized("authentication required")
	}
	return t, nil
}
