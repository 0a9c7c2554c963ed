// Package store exposes store profile management and the store-level
// user administration managers perform.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ss-lucnguyen/seller-inventory/shared/apperr"
	"github.com/ss-lucnguyen/seller-inventory/shared/models"
	"github.com/ss-lucnguyen/seller-inventory/shared/repository"
	"github.com/ss-lucnguyen/seller-inventory/shared/tenancy"
)

// Service implements store operations against the persistence gateway
type Service struct {
	repo repository.Factory
}

// NewService creates a store service
func NewService(repo repository.Factory) *Service {
	return &Service{repo: repo}
}

// UpdateInput carries the editable store profile fields. Nil fields are
// left untouched.
type UpdateInput struct {
	Name         *string
	Location     *string
	Address      *string
	Industry     *string
	Description  *string
	ContactEmail *string
	ContactPhone *string
	Currency     *string
}

func requireManager(t tenancy.Tenant) error {
	if !t.Role.IsManager() && !t.IsSystemAdmin() {
		return apperr.Forbidden("manager role required")
	}
	return nil
}

func requireStore(t tenancy.Tenant) (uuid.UUID, error) {
	if t.StoreID == nil {
		return uuid.Nil, apperr.InvalidOperation("operation requires a store context")
	}
	return *t.StoreID, nil
}

// GetCurrent returns the caller's store
func (s *Service) GetCurrent(ctx context.Context) (*models.Store, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	storeID, err := requireStore(t)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	st, err := gw.Stores().GetByID(ctx, storeID)
	if err != nil {
		return nil, apperr.Persistence(err, "get store")
	}
	if st == nil {
		return nil, apperr.NotFound("store not found")
	}
	return st, nil
}

// ListAll returns every store on the platform, system admins only
func (s *Service) ListAll(ctx context.Context) ([]models.Store, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if !t.IsSystemAdmin() {
		return nil, apperr.Forbidden("system admin role required")
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	stores, err := gw.Stores().GetAll(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "list stores")
	}
	return stores, nil
}

// Update edits the store profile, managers only
func (s *Service) Update(ctx context.Context, in UpdateInput) (*models.Store, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireManager(t); err != nil {
		return nil, err
	}
	storeID, err := requireStore(t)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	st, err := gw.Stores().GetByID(ctx, storeID)
	if err != nil {
		return nil, apperr.Persistence(err, "get store")
	}
	if st == nil {
		return nil, apperr.NotFound("store not found")
	}

	if in.Name != nil && *in.Name != "" {
		st.Name = *in.Name
	}
	if in.Location != nil {
		st.Location = in.Location
	}
	if in.Address != nil {
		st.Address = in.Address
	}
	if in.Industry != nil {
		st.Industry = in.Industry
	}
	if in.Description != nil {
		st.Description = in.Description
	}
	if in.ContactEmail != nil {
		st.ContactEmail = in.ContactEmail
	}
	if in.ContactPhone != nil {
		st.ContactPhone = in.ContactPhone
	}
	if in.Currency != nil && *in.Currency != "" {
		st.Currency = *in.Currency
	}

	if err := gw.Stores().Update(ctx, st); err != nil {
		return nil, apperr.Persistence(err, "update store")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit store")
	}

	logrus.WithField("store_id", st.ID).Info("store updated")
	return st, nil
}

// ListUsers returns the store's users, managers only
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireManager(t); err != nil {
		return nil, err
	}
	storeID, err := requireStore(t)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	users, err := gw.Users().ListByStore(ctx, storeID)
	if err != nil {
		return nil, apperr.Persistence(err, "list users")
	}
	return users, nil
}

// loadStoreUser fetches a user for administration within the caller's store
func (s *Service) loadStoreUser(ctx context.Context, gw repository.Gateway, storeID, userID uuid.UUID) (*models.User, error) {
	user, err := gw.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err, "get user")
	}
	if user == nil || user.StoreID == nil || *user.StoreID != storeID {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// ToggleUserActive flips a store user's active flag, managers only.
// Managers cannot deactivate themselves.
func (s *Service) ToggleUserActive(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireManager(t); err != nil {
		return nil, err
	}
	storeID, err := requireStore(t)
	if err != nil {
		return nil, err
	}
	if userID == t.UserID {
		return nil, apperr.InvalidOperation("you cannot deactivate your own account")
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	user, err := s.loadStoreUser(ctx, gw, storeID, userID)
	if err != nil {
		return nil, err
	}

	user.IsActive = !user.IsActive
	if err := gw.Users().Update(ctx, user); err != nil {
		return nil, apperr.Persistence(err, "update user")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit user")
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "is_active": user.IsActive}).Info("user active flag toggled")
	return user, nil
}

// ResetPassword sets a new password for a store user, managers only
func (s *Service) ResetPassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return err
	}
	if err := requireManager(t); err != nil {
		return err
	}
	storeID, err := requireStore(t)
	if err != nil {
		return err
	}
	if len(newPassword) < 8 {
		return apperr.InvalidOperation("password must be at least 8 characters")
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	user, err := s.loadStoreUser(ctx, gw, storeID, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Persistence(err, "hash password")
	}
	user.PasswordHash = string(hash)

	if err := gw.Users().Update(ctx, user); err != nil {
		return apperr.Persistence(err, "update user")
	}
	if err := gw.Commit(); err != nil {
		return apperr.Persistence(err, "commit user")
	}

	logrus.WithField("user_id", user.ID).Info("password reset")
	return nil
}
