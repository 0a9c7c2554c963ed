package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ss-lucnguyen/seller-inventory/shared/models"
)

// NewGormFactory returns a Factory that opens one database transaction
// per gateway.
func NewGormFactory(db *gorm.DB) Factory {
	return &gormFactory{db: db}
}

type gormFactory struct {
	db *gorm.DB
}

func (f *gormFactory) Begin(ctx context.Context) (Gateway, error) {
	tx := f.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return &gormGateway{tx: tx}, nil
}

type gormGateway struct {
	tx   *gorm.DB
	done bool
}

func (g *gormGateway) Stores() StoreRepository           { return &gormStores{tx: g.tx} }
func (g *gormGateway) Invitations() InvitationRepository { return &gormInvitations{tx: g.tx} }
func (g *gormGateway) Users() UserRepository             { return &gormUsers{tx: g.tx} }
func (g *gormGateway) Categories() CategoryRepository    { return &gormCategories{tx: g.tx} }
func (g *gormGateway) Products() ProductRepository       { return &gormProducts{tx: g.tx} }
func (g *gormGateway) Customers() CustomerRepository     { return &gormCustomers{tx: g.tx} }
func (g *gormGateway) Orders() OrderRepository           { return &gormOrders{tx: g.tx} }
func (g *gormGateway) OrderItems() OrderItemRepository   { return &gormOrderItems{tx: g.tx} }
func (g *gormGateway) Invoices() InvoiceRepository       { return &gormInvoices{tx: g.tx} }

func (g *gormGateway) Commit() error {
	if g.done {
		return nil
	}
	g.done = true
	if err := g.tx.Commit().Error; err != nil {
		return translateErr(err)
	}
	return nil
}

func (g *gormGateway) Rollback() error {
	if g.done {
		return nil
	}
	g.done = true
	return g.tx.Rollback().Error
}

// translateErr maps driver unique-violation errors onto ErrDuplicateKey
func translateErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

func getByID[T any](ctx context.Context, tx *gorm.DB, id uuid.UUID) (*T, error) {
	var out T
	err := tx.WithContext(ctx).First(&out, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func first[T any](ctx context.Context, tx *gorm.DB, query string, args ...interface{}) (*T, error) {
	var out T
	err := tx.WithContext(ctx).Where(query, args...).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func list[T any](ctx context.Context, tx *gorm.DB, query string, args ...interface{}) ([]T, error) {
	var out []T
	q := tx.WithContext(ctx)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func create(ctx context.Context, tx *gorm.DB, entity interface{}) error {
	if err := tx.WithContext(ctx).Create(entity).Error; err != nil {
		return translateErr(err)
	}
	return nil
}

func save(ctx context.Context, tx *gorm.DB, entity interface{}) error {
	if err := tx.WithContext(ctx).Save(entity).Error; err != nil {
		return translateErr(err)
	}
	return nil
}

func remove(ctx context.Context, tx *gorm.DB, entity interface{}) error {
	return tx.WithContext(ctx).Delete(entity).Error
}

type gormStores struct{ tx *gorm.DB }

func (r *gormStores) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	return getByID[models.Store](ctx, r.tx, id)
}

func (r *gormStores) FindBySlug(ctx context.Context, slug string) (*models.Store, error) {
	return first[models.Store](ctx, r.tx, "slug = ?", slug)
}

func (r *gormStores) GetAll(ctx context.Context) ([]models.Store, error) {
	return list[models.Store](ctx, r.tx, "")
}

func (r *gormStores) Add(ctx context.Context, s *models.Store) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return create(ctx, r.tx, s)
}

func (r *gormStores) Update(ctx context.Context, s *models.Store) error {
	return save(ctx, r.tx, s)
}

type gormInvitations struct{ tx *gorm.DB }

func (r *gormInvitations) GetByID(ctx context.Context, id uuid.UUID) (*models.StoreInvitation, error) {
	return getByID[models.StoreInvitation](ctx, r.tx, id)
}

func (r *gormInvitations) FindByToken(ctx context.Context, token string) (*models.StoreInvitation, error) {
	return first[models.StoreInvitation](ctx, r.tx, "token = ?", token)
}

func (r *gormInvitations) FindLive(ctx context.Context, storeID uuid.UUID, email string, now time.Time) (*models.StoreInvitation, error) {
	return first[models.StoreInvitation](ctx, r.tx,
		"store_id = ? AND email = ? AND is_used = false AND expires_at > ?", storeID, email, now)
}

func (r *gormInvitations) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.StoreInvitation, error) {
	return list[models.StoreInvitation](ctx, r.tx, "store_id = ?", storeID)
}

func (r *gormInvitations) Add(ctx context.Context, inv *models.StoreInvitation) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	return create(ctx, r.tx, inv)
}

func (r *gormInvitations) Update(ctx context.Context, inv *models.StoreInvitation) error {
	return save(ctx, r.tx, inv)
}

type gormUsers struct{ tx *gorm.DB }

func (r *gormUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return getByID[models.User](ctx, r.tx, id)
}

func (r *gormUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](ctx, r.tx, "username = ?", username)
}

func (r *gormUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](ctx, r.tx, "email = ?", email)
}

func (r *gormUsers) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.User, error) {
	return list[models.User](ctx, r.tx, "store_id = ?", storeID)
}

func (r *gormUsers) GetAll(ctx context.Context) ([]models.User, error) {
	return list[models.User](ctx, r.tx, "")
}

func (r *gormUsers) Add(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return create(ctx, r.tx, u)
}

func (r *gormUsers) Update(ctx context.Context, u *models.User) error {
	return save(ctx, r.tx, u)
}

func (r *gormUsers) Delete(ctx context.Context, u *models.User) error {
	return remove(ctx, r.tx, u)
}

type gormCategories struct{ tx *gorm.DB }

func (r *gormCategories) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return getByID[models.Category](ctx, r.tx, id)
}

func (r *gormCategories) FindByName(ctx context.Context, storeID uuid.UUID, name string) (*models.Category, error) {
	return first[models.Category](ctx, r.tx, "store_id = ? AND name = ?", storeID, name)
}

func (r *gormCategories) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Category, error) {
	return list[models.Category](ctx, r.tx, "store_id = ?", storeID)
}

func (r *gormCategories) GetAll(ctx context.Context) ([]models.Category, error) {
	return list[models.Category](ctx, r.tx, "")
}

func (r *gormCategories) Add(ctx context.Context, c *models.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return create(ctx, r.tx, c)
}

func (r *gormCategories) Update(ctx context.Context, c *models.Category) error {
	return save(ctx, r.tx, c)
}

func (r *gormCategories) Delete(ctx context.Context, c *models.Category) error {
	return remove(ctx, r.tx, c)
}

type gormProducts struct{ tx *gorm.DB }

func (r *gormProducts) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return getByID[models.Product](ctx, r.tx, id)
}

func (r *gormProducts) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	return list[models.Product](ctx, r.tx, "store_id = ?", storeID)
}

func (r *gormProducts) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error) {
	return list[models.Product](ctx, r.tx, "category_id = ?", categoryID)
}

func (r *gormProducts) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var n int64
	err := r.tx.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, err
}

func (r *gormProducts) GetAll(ctx context.Context) ([]models.Product, error) {
	return list[models.Product](ctx, r.tx, "")
}

func (r *gormProducts) Add(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return create(ctx, r.tx, p)
}

func (r *gormProducts) Update(ctx context.Context, p *models.Product) error {
	return save(ctx, r.tx, p)
}

func (r *gormProducts) Delete(ctx context.Context, p *models.Product) error {
	return remove(ctx, r.tx, p)
}

func (r *gormProducts) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.tx.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *gormProducts) RestoreStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.tx.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty)).Error
}

type gormCustomers struct{ tx *gorm.DB }

func (r *gormCustomers) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return getByID[models.Customer](ctx, r.tx, id)
}

func (r *gormCustomers) FindDefault(ctx context.Context, storeID uuid.UUID) (*models.Customer, error) {
	return first[models.Customer](ctx, r.tx, "store_id = ? AND is_default = true", storeID)
}

func (r *gormCustomers) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Customer, error) {
	return list[models.Customer](ctx, r.tx, "store_id = ?", storeID)
}

func (r *gormCustomers) GetAll(ctx context.Context) ([]models.Customer, error) {
	return list[models.Customer](ctx, r.tx, "")
}

func (r *gormCustomers) Add(ctx context.Context, c *models.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return create(ctx, r.tx, c)
}

func (r *gormCustomers) Update(ctx context.Context, c *models.Customer) error {
	return save(ctx, r.tx, c)
}

func (r *gormCustomers) Delete(ctx context.Context, c *models.Customer) error {
	return remove(ctx, r.tx, c)
}

type gormOrders struct{ tx *gorm.DB }

func (r *gormOrders) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return getByID[models.Order](ctx, r.tx, id)
}

func (r *gormOrders) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Order, error) {
	return list[models.Order](ctx, r.tx, "store_id = ?", storeID)
}

func (r *gormOrders) GetAll(ctx context.Context) ([]models.Order, error) {
	return list[models.Order](ctx, r.tx, "")
}

func (r *gormOrders) ListCompletedBetween(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]models.Order, error) {
	return list[models.Order](ctx, r.tx,
		"store_id = ? AND status = ? AND order_date >= ? AND order_date < ?",
		storeID, models.OrderCompleted, from, to)
}

func (r *gormOrders) Add(ctx context.Context, o *models.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return create(ctx, r.tx, o)
}

func (r *gormOrders) Update(ctx context.Context, o *models.Order) error {
	return save(ctx, r.tx, o)
}

func (r *gormOrders) Delete(ctx context.Context, o *models.Order) error {
	return remove(ctx, r.tx, o)
}

type gormOrderItems struct{ tx *gorm.DB }

func (r *gormOrderItems) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	return getByID[models.OrderItem](ctx, r.tx, id)
}

func (r *gormOrderItems) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	return list[models.OrderItem](ctx, r.tx, "order_id = ?", orderID)
}

func (r *gormOrderItems) ListByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]models.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	return list[models.OrderItem](ctx, r.tx, "order_id IN ?", orderIDs)
}

func (r *gormOrderItems) Add(ctx context.Context, oi *models.OrderItem) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return create(ctx, r.tx, oi)
}

func (r *gormOrderItems) Delete(ctx context.Context, oi *models.OrderItem) error {
	return remove(ctx, r.tx, oi)
}

type gormInvoices struct{ tx *gorm.DB }

func (r *gormInvoices) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	return getByID[models.Invoice](ctx, r.tx, id)
}

func (r *gormInvoices) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	return first[models.Invoice](ctx, r.tx, "order_id = ?", orderID)
}

func (r *gormInvoices) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Invoice, error) {
	return list[models.Invoice](ctx, r.tx, "store_id = ?", storeID)
}

func (r *gormInvoices) GetAll(ctx context.Context) ([]models.Invoice, error) {
	return list[models.Invoice](ctx, r.tx, "")
}

func (r *gormInvoices) Add(ctx context.Context, i *models.Invoice) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return create(ctx, r.tx, i)
}

func (r *gormInvoices) Update(ctx context.Context, i *models.Invoice) error {
	return save(ctx, r.tx, i)
}

func (r *gormInvoices) Delete(ctx context.Context, i *models.Invoice) error {
	return remove(ctx, r.tx, i)
}
