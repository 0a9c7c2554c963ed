// Package repository is the persistence gateway: one unit of work per
// request, entity repositories with explicit finder methods, and a
// single atomic Commit. The gateway enforces storage constraints only
// (unique indexes, the conditional stock decrement); business rules
// live in the services that call it.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ss-lucnguyen/seller-inventory/shared/models"
)

var (
	// ErrDuplicateKey reports a unique-index violation at Add or Commit
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInsufficientStock reports a conditional stock decrement that
	// found fewer units than requested
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Factory opens one gateway per inbound request operation
type Factory interface {
	Begin(ctx context.Context) (Gateway, error)
}

// Gateway is a unit of work. Every mutation made through its
// repositories lands atomically at Commit or not at all. Rollback is
// safe to call after Commit; the usual pattern is defer uow.Rollback().
type Gateway interface {
	Stores() StoreRepository
	Invitations() InvitationRepository
	Users() UserRepository
	Categories() CategoryRepository
	Products() ProductRepository
	Customers() CustomerRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Invoices() InvoiceRepository

	Commit() error
	Rollback() error
}

// StoreRepository accesses tenant roots
type StoreRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindBySlug(ctx context.Context, slug string) (*models.Store, error)
	GetAll(ctx context.Context) ([]models.Store, error)
	Add(ctx context.Context, s *models.Store) error
	Update(ctx context.Context, s *models.Store) error
}

// InvitationRepository accesses store invitations
type InvitationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.StoreInvitation, error)
	FindByToken(ctx context.Context, token string) (*models.StoreInvitation, error)
	// FindLive returns the unused, unexpired invitation for the email
	// within the store, if any.
	FindLive(ctx context.Context, storeID uuid.UUID, email string, now time.Time) (*models.StoreInvitation, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.StoreInvitation, error)
	Add(ctx context.Context, inv *models.StoreInvitation) error
	Update(ctx context.Context, inv *models.StoreInvitation) error
}

// UserRepository accesses users
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	Add(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, u *models.User) error
}

// CategoryRepository accesses product categories
type CategoryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindByName(ctx context.Context, storeID uuid.UUID, name string) (*models.Category, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
	Add(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, c *models.Category) error
}

// ProductRepository accesses products and owns the stock mutations
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	Add(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, p *models.Product) error

	// DecrementStock subtracts qty only when the current stock covers
	// it, reporting ErrInsufficientStock otherwise. The check and the
	// subtraction are one conditional update, so two concurrent orders
	// cannot drive the quantity negative.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	// RestoreStock adds qty back after an item removal.
	RestoreStock(ctx context.Context, id uuid.UUID, qty int) error
}

// CustomerRepository accesses customers
type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	// FindDefault returns the store's default (anonymous) customer, if
	// one exists.
	FindDefault(ctx context.Context, storeID uuid.UUID) (*models.Customer, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Customer, error)
	GetAll(ctx context.Context) ([]models.Customer, error)
	Add(ctx context.Context, c *models.Customer) error
	Update(ctx context.Context, c *models.Customer) error
	Delete(ctx context.Context, c *models.Customer) error
}

// OrderRepository accesses orders
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	// ListCompletedBetween returns the store's completed orders with
	// OrderDate in [from, to).
	ListCompletedBetween(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]models.Order, error)
	Add(ctx context.Context, o *models.Order) error
	Update(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, o *models.Order) error
}

// OrderItemRepository accesses order line items
type OrderItemRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	ListByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]models.OrderItem, error)
	Add(ctx context.Context, oi *models.OrderItem) error
	Delete(ctx context.Context, oi *models.OrderItem) error
}

// InvoiceRepository accesses invoices
type InvoiceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Invoice, error)
	GetAll(ctx context.Context) ([]models.Invoice, error)
	Add(ctx context.Context, i *models.Invoice) error
	Update(ctx context.Context, i *models.Invoice) error
	Delete(ctx context.Context, i *models.Invoice) error
}
