// Package customer manages the per-store customer base, including the
// anonymous default customer used for walk-in sales.
package customer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ss-lucnguyen/seller-inventory/shared/apperr"
	"github.com/ss-lucnguyen/seller-inventory/shared/models"
	"github.com/ss-lucnguyen/seller-inventory/shared/repository"
	"github.com/ss-lucnguyen/seller-inventory/shared/tenancy"
	"github.com/ss-lucnguyen/seller-inventory/shared/utils"
)

// DefaultCustomerName is the display name of the walk-in customer
const DefaultCustomerName = "Anonymous"

// Service implements customer operations against the persistence gateway
type Service struct {
	repo repository.Factory
}

// NewService creates a customer service
func NewService(repo repository.Factory) *Service {
	return &Service{repo: repo}
}

// Input carries the writable customer fields
type Input struct {
	Name    string
	Gender  string
	Mobile  *string
	Address *string
}

// List returns the caller's customers; system admins see all
func (s *Service) List(ctx context.Context) ([]models.Customer, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	if t.IsSystemAdmin() && t.StoreID == nil {
		all, err := gw.Customers().GetAll(ctx)
		if err != nil {
			return nil, apperr.Persistence(err, "list customers")
		}
		return all, nil
	}
	if t.StoreID == nil {
		return nil, apperr.InvalidOperation("operation requires a store context")
	}
	list, err := gw.Customers().ListByStore(ctx, *t.StoreID)
	if err != nil {
		return nil, apperr.Persistence(err, "list customers")
	}
	return list, nil
}

// Get returns one customer, hiding cross-tenant records as NotFound
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	cust, err := gw.Customers().GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err, "get customer")
	}
	if cust == nil || !t.CanAccess(cust.StoreID) {
		return nil, apperr.NotFound("customer not found")
	}
	return cust, nil
}

// Create adds a customer to the caller's store
func (s *Service) Create(ctx context.Context, in Input) (*models.Customer, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if t.StoreID == nil {
		return nil, apperr.InvalidOperation("operation requires a store context")
	}
	if in.Name == "" {
		return nil, apperr.InvalidOperation("customer name is required")
	}
	gender, err := models.ParseGender(in.Gender)
	if err != nil {
		return nil, apperr.InvalidOperation("%v", err)
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	cust := models.Customer{
		Name:          in.Name,
		Gender:        gender,
		Mobile:        in.Mobile,
		Address:       in.Address,
		AccountNumber: utils.NewAccountNumber(time.Now()),
		StoreID:       *t.StoreID,
		IsActive:      true,
	}
	if err := gw.Customers().Add(ctx, &cust); err != nil {
		return nil, apperr.Persistence(err, "add customer")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit customer")
	}

	logrus.WithFields(logrus.Fields{"customer_id": cust.ID, "store_id": cust.StoreID}).Info("customer created")
	return &cust, nil
}

// Update edits a same-store customer. The default customer is immutable.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*models.Customer, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	cust, err := gw.Customers().GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err, "get customer")
	}
	if cust == nil {
		return nil, apperr.NotFound("customer not found")
	}
	if !t.CanAccess(cust.StoreID) {
		return nil, apperr.Forbidden("customer belongs to another store")
	}
	if cust.IsDefault {
		return nil, apperr.InvalidOperation("the default customer cannot be edited")
	}

	if in.Name != "" {
		cust.Name = in.Name
	}
	if in.Gender != "" {
		gender, err := models.ParseGender(in.Gender)
		if err != nil {
			return nil, apperr.InvalidOperation("%v", err)
		}
		cust.Gender = gender
	}
	if in.Mobile != nil {
		cust.Mobile = in.Mobile
	}
	if in.Address != nil {
		cust.Address = in.Address
	}

	if err := gw.Customers().Update(ctx, cust); err != nil {
		return nil, apperr.Persistence(err, "update customer")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit customer")
	}
	return cust, nil
}

// Delete removes a same-store customer. The default customer is protected.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	cust, err := gw.Customers().GetByID(ctx, id)
	if err != nil {
		return apperr.Persistence(err, "get customer")
	}
	if cust == nil {
		return apperr.NotFound("customer not found")
	}
	if !t.CanAccess(cust.StoreID) {
		return apperr.Forbidden("customer belongs to another store")
	}
	if cust.IsDefault {
		return apperr.InvalidOperation("the default customer cannot be deleted")
	}

	if err := gw.Customers().Delete(ctx, cust); err != nil {
		return apperr.Persistence(err, "delete customer")
	}
	if err := gw.Commit(); err != nil {
		return apperr.Persistence(err, "commit delete")
	}
	return nil
}

// GetOrCreateDefault returns the store's walk-in customer, creating it
// on first use. Two concurrent first users race on the partial unique
// index; the loser re-reads and returns the winner's row, so exactly
// one default ever exists per store.
func (s *Service) GetOrCreateDefault(ctx context.Context, storeID uuid.UUID) (*models.Customer, error) {
	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	cust, err := gw.Customers().FindDefault(ctx, storeID)
	if err != nil {
		return nil, apperr.Persistence(err, "find default customer")
	}
	if cust != nil {
		return cust, nil
	}

	cust = &models.Customer{
		Name:          DefaultCustomerName,
		Gender:        models.GenderUnknown,
		AccountNumber: utils.NewAccountNumber(time.Now()),
		IsDefault:     true,
		StoreID:       storeID,
		IsActive:      true,
	}
	if err := gw.Customers().Add(ctx, cust); err == nil {
		err = gw.Commit()
	}
	if err != nil {
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperr.Persistence(err, "create default customer")
		}
		// lost the race, the winner's row is the default now
		return s.readDefault(ctx, storeID)
	}
	return cust, nil
}

func (s *Service) readDefault(ctx context.Context, storeID uuid.UUID) (*models.Customer, error) {
	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	cust, err := gw.Customers().FindDefault(ctx, storeID)
	if err != nil {
		return nil, apperr.Persistence(err, "find default customer")
	}
	if cust == nil {
		return nil, apperr.Persistence(nil, "default customer vanished after conflict")
	}
	return cust, nil
}
