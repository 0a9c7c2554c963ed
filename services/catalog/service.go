// Package catalog manages the per-store product catalog: categories,
// products, stock levels and bulk import.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ss-lucnguyen/seller-inventory/shared/apperr"
	"github.com/ss-lucnguyen/seller-inventory/shared/models"
	"github.com/ss-lucnguyen/seller-inventory/shared/repository"
	"github.com/ss-lucnguyen/seller-inventory/shared/tenancy"
)

// Service implements catalog operations against the persistence gateway
type Service struct {
	repo repository.Factory
}

// NewService creates a catalog service
func NewService(repo repository.Factory) *Service {
	return &Service{repo: repo}
}

// CategoryInput carries the writable category fields
type CategoryInput struct {
	Name        string
	Description *string
}

// ProductInput carries the writable product fields
type ProductInput struct {
	Name          string
	Description   *string
	SKU           string
	CostPrice     decimal.Decimal
	SellPrice     decimal.Decimal
	StockQuantity int
	CategoryID    uuid.UUID
	ImageURL      *string
}

// ImportRow is one line of a bulk product import
type ImportRow struct {
	Name          string
	SKU           string
	CategoryName  string
	CostPrice     decimal.Decimal
	SellPrice     decimal.Decimal
	StockQuantity int
}

// ImportRowResult reports the outcome of a single import row
type ImportRowResult struct {
	Row       int        `json:"row"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ImportResult summarizes a bulk import
type ImportResult struct {
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
	Rows     []ImportRowResult `json:"rows"`
}

// storeScope resolves which store the caller operates on. System admins
// without a store of their own cannot create records, only read.
func storeScope(t tenancy.Tenant) (uuid.UUID, error) {
	if t.StoreID == nil {
		return uuid.Nil, apperr.InvalidOperation("operation requires a store context")
	}
	return *t.StoreID, nil
}

// ListCategories returns the caller's categories; system admins see all
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
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
		cats, err := gw.Categories().GetAll(ctx)
		if err != nil {
			return nil, apperr.Persistence(err, "list categories")
		}
		return cats, nil
	}

	storeID, err := storeScope(t)
	if err != nil {
		return nil, err
	}
	cats, err := gw.Categories().ListByStore(ctx, storeID)
	if err != nil {
		return nil, apperr.Persistence(err, "list categories")
	}
	return cats, nil
}

// GetCategory returns one category. Cross-tenant lookups report NotFound
// so a foreign caller cannot probe for existence.
func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	return s.loadCategory(ctx, gw, t, id)
}

func (s *Service) loadCategory(ctx context.Context, gw repository.Gateway, t tenancy.Tenant, id uuid.UUID) (*models.Category, error) {
	cat, err := gw.Categories().GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err, "get category")
	}
	if cat == nil || !t.CanAccess(cat.StoreID) {
		return nil, apperr.NotFound("category not found")
	}
	return cat, nil
}

// CreateCategory creates a category in the caller's store
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	storeID, err := storeScope(t)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, apperr.InvalidOperation("category name is required")
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	cat := models.Category{
		Name:        in.Name,
		Description: in.Description,
		StoreID:     storeID,
		IsActive:    true,
	}
	if err := gw.Categories().Add(ctx, &cat); err != nil {
		return nil, apperr.Persistence(err, "add category")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit category")
	}

	logrus.WithFields(logrus.Fields{"category_id": cat.ID, "store_id": storeID}).Info("category created")
	return &cat, nil
}

// UpdateCategory updates name/description of a same-store category
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.Category, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	cat, err := gw.Categories().GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err, "get category")
	}
	if cat == nil {
		return nil, apperr.NotFound("category not found")
	}
	if !t.CanAccess(cat.StoreID) {
		return nil, apperr.Forbidden("category belongs to another store")
	}

	if in.Name != "" {
		cat.Name = in.Name
	}
	if in.Description != nil {
		cat.Description = in.Description
	}
	if err := gw.Categories().Update(ctx, cat); err != nil {
		return nil, apperr.Persistence(err, "update category")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit category")
	}
	return cat, nil
}

// DeleteCategory removes an empty category. Deleting a category that
// still has products is refused.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	cat, err := gw.Categories().GetByID(ctx, id)
	if err != nil {
		return apperr.Persistence(err, "get category")
	}
	if cat == nil {
		return apperr.NotFound("category not found")
	}
	if !t.CanAccess(cat.StoreID) {
		return apperr.Forbidden("category belongs to another store")
	}

	n, err := gw.Products().CountByCategory(ctx, id)
	if err != nil {
		return apperr.Persistence(err, "count products")
	}
	if n > 0 {
		return apperr.InvalidOperation("category still has %d products", n)
	}

	if err := gw.Categories().Delete(ctx, cat); err != nil {
		return apperr.Persistence(err, "delete category")
	}
	if err := gw.Commit(); err != nil {
		return apperr.Persistence(err, "commit delete")
	}
	return nil
}

// ListProducts returns the caller's products; system admins see all
func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
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
		prods, err := gw.Products().GetAll(ctx)
		if err != nil {
			return nil, apperr.Persistence(err, "list products")
		}
		return prods, nil
	}

	storeID, err := storeScope(t)
	if err != nil {
		return nil, err
	}
	prods, err := gw.Products().ListByStore(ctx, storeID)
	if err != nil {
		return nil, apperr.Persistence(err, "list products")
	}
	return prods, nil
}

// GetProduct returns one product with cross-tenant lookups hidden as NotFound
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	p, err := gw.Products().GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err, "get product")
	}
	if p == nil || !t.CanAccess(p.StoreID) {
		return nil, apperr.NotFound("product not found")
	}
	return p, nil
}

// ListProductsByCategory returns the products of one same-store category
func (s *Service) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	if _, err := s.loadCategory(ctx, gw, t, categoryID); err != nil {
		return nil, err
	}
	prods, err := gw.Products().ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, apperr.Persistence(err, "list products")
	}
	return prods, nil
}

func validateProductInput(in ProductInput) error {
	if in.Name == "" {
		return apperr.InvalidOperation("product name is required")
	}
	if !in.SellPrice.IsPositive() {
		return apperr.InvalidOperation("sell price must be positive")
	}
	if in.CostPrice.IsNegative() {
		return apperr.InvalidOperation("cost price cannot be negative")
	}
	if in.StockQuantity < 0 {
		return apperr.InvalidOperation("stock quantity cannot be negative")
	}
	return nil
}

// CreateProduct creates a product under a category of the caller's store
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	storeID, err := storeScope(t)
	if err != nil {
		return nil, err
	}
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	cat, err := gw.Categories().GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, apperr.Persistence(err, "get category")
	}
	if cat == nil {
		return nil, apperr.NotFound("category not found")
	}
	if cat.StoreID != storeID {
		return nil, apperr.Forbidden("category belongs to another store")
	}

	p := models.Product{
		Name:          in.Name,
		Description:   in.Description,
		SKU:           in.SKU,
		CostPrice:     in.CostPrice,
		SellPrice:     in.SellPrice,
		StockQuantity: in.StockQuantity,
		CategoryID:    in.CategoryID,
		StoreID:       storeID,
		ImageURL:      in.ImageURL,
		IsActive:      true,
	}
	if err := gw.Products().Add(ctx, &p); err != nil {
		return nil, apperr.Persistence(err, "add product")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit product")
	}

	logrus.WithFields(logrus.Fields{"product_id": p.ID, "store_id": storeID}).Info("product created")
	return &p, nil
}

// UpdateProduct updates a same-store product
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	p, err := gw.Products().GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err, "get product")
	}
	if p == nil {
		return nil, apperr.NotFound("product not found")
	}
	if !t.CanAccess(p.StoreID) {
		return nil, apperr.Forbidden("product belongs to another store")
	}

	if in.CategoryID != uuid.Nil && in.CategoryID != p.CategoryID {
		cat, err := gw.Categories().GetByID(ctx, in.CategoryID)
		if err != nil {
			return nil, apperr.Persistence(err, "get category")
		}
		if cat == nil {
			return nil, apperr.NotFound("category not found")
		}
		if cat.StoreID != p.StoreID {
			return nil, apperr.Forbidden("category belongs to another store")
		}
		p.CategoryID = in.CategoryID
	}

	p.Name = in.Name
	p.Description = in.Description
	p.SKU = in.SKU
	p.CostPrice = in.CostPrice
	p.SellPrice = in.SellPrice
	p.ImageURL = in.ImageURL

	if err := gw.Products().Update(ctx, p); err != nil {
		return nil, apperr.Persistence(err, "update product")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit product")
	}
	return p, nil
}

// DeleteProduct removes a same-store product
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	p, err := gw.Products().GetByID(ctx, id)
	if err != nil {
		return apperr.Persistence(err, "get product")
	}
	if p == nil {
		return apperr.NotFound("product not found")
	}
	if !t.CanAccess(p.StoreID) {
		return apperr.Forbidden("product belongs to another store")
	}

	if err := gw.Products().Delete(ctx, p); err != nil {
		return apperr.Persistence(err, "delete product")
	}
	if err := gw.Commit(); err != nil {
		return apperr.Persistence(err, "commit delete")
	}
	return nil
}

// UpdateStock sets the absolute stock level of a same-store product.
// Foreign products are reported NotFound, the same as reads.
func (s *Service) UpdateStock(ctx context.Context, id uuid.UUID, qty int) (*models.Product, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if qty < 0 {
		return nil, apperr.InvalidOperation("stock quantity cannot be negative")
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	p, err := gw.Products().GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err, "get product")
	}
	if p == nil || !t.CanAccess(p.StoreID) {
		return nil, apperr.NotFound("product not found")
	}

	p.StockQuantity = qty
	if err := gw.Products().Update(ctx, p); err != nil {
		return nil, apperr.Persistence(err, "update stock")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit stock")
	}
	return p, nil
}

// Import inserts products in bulk, best effort. Each row commits on its
// own so one bad row never rolls back its neighbours; the result lists
// the outcome per row.
func (s *Service) Import(ctx context.Context, rows []ImportRow) (*ImportResult, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	storeID, err := storeScope(t)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Rows: make([]ImportRowResult, 0, len(rows))}
	for i, row := range rows {
		id, err := s.importRow(ctx, storeID, row)
		rr := ImportRowResult{Row: i + 1}
		if err != nil {
			rr.Error = err.Error()
			result.Failed++
		} else {
			rr.ProductID = &id
			result.Imported++
		}
		result.Rows = append(result.Rows, rr)
	}

	logrus.WithFields(logrus.Fields{
		"store_id": storeID,
		"imported": result.Imported,
		"failed":   result.Failed,
	}).Info("product import finished")
	return result, nil
}

func (s *Service) importRow(ctx context.Context, storeID uuid.UUID, row ImportRow) (uuid.UUID, error) {
	if row.Name == "" {
		return uuid.Nil, errors.New("product name is required")
	}
	if row.CategoryName == "" {
		return uuid.Nil, errors.New("category name is required")
	}
	if !row.SellPrice.IsPositive() {
		return uuid.Nil, errors.New("sell price must be positive")
	}
	if row.CostPrice.IsNegative() {
		return uuid.Nil, errors.New("cost price cannot be negative")
	}
	if row.StockQuantity < 0 {
		return uuid.Nil, errors.New("stock quantity cannot be negative")
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer gw.Rollback()

	cat, err := gw.Categories().FindByName(ctx, storeID, row.CategoryName)
	if err != nil {
		return uuid.Nil, fmt.Errorf("find category: %w", err)
	}
	if cat == nil {
		cat = &models.Category{Name: row.CategoryName, StoreID: storeID, IsActive: true}
		if err := gw.Categories().Add(ctx, cat); err != nil {
			return uuid.Nil, fmt.Errorf("create category: %w", err)
		}
	}

	p := models.Product{
		Name:          row.Name,
		SKU:           row.SKU,
		CostPrice:     row.CostPrice,
		SellPrice:     row.SellPrice,
		StockQuantity: row.StockQuantity,
		CategoryID:    cat.ID,
		StoreID:       storeID,
		IsActive:      true,
	}
	if err := gw.Products().Add(ctx, &p); err != nil {
		return uuid.Nil, fmt.Errorf("add product: %w", err)
	}
	if err := gw.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return p.ID, nil
}
