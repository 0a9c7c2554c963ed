package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ss-lucnguyen/seller-inventory/shared/models"
)

// MemoryFactory is an in-memory Factory with the same commit semantics
// as the database-backed one: a gateway works on a snapshot, and Commit
// replays its mutations against the live data under one lock, where the
// unique indexes and the conditional stock decrement are re-checked.
// A gateway that lost a race therefore fails atomically at Commit, the
// way a real transaction would.
type MemoryFactory struct {
	mu   sync.Mutex
	data *memData
}

// NewMemoryFactory returns an empty in-memory store
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{data: newMemData()}
}

func (f *MemoryFactory) Begin(ctx context.Context) (Gateway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &memGateway{f: f, snap: f.data.clone()}, nil
}

type memData struct {
	stores      map[uuid.UUID]models.Store
	invitations map[uuid.UUID]models.StoreInvitation
	users       map[uuid.UUID]models.User
	categories  map[uuid.UUID]models.Category
	products    map[uuid.UUID]models.Product
	customers   map[uuid.UUID]models.Customer
	orders      map[uuid.UUID]models.Order
	orderItems  map[uuid.UUID]models.OrderItem
	invoices    map[uuid.UUID]models.Invoice
}

func newMemData() *memData {
	return &memData{
		stores:      map[uuid.UUID]models.Store{},
		invitations: map[uuid.UUID]models.StoreInvitation{},
		users:       map[uuid.UUID]models.User{},
		categories:  map[uuid.UUID]models.Category{},
		products:    map[uuid.UUID]models.Product{},
		customers:   map[uuid.UUID]models.Customer{},
		orders:      map[uuid.UUID]models.Order{},
		orderItems:  map[uuid.UUID]models.OrderItem{},
		invoices:    map[uuid.UUID]models.Invoice{},
	}
}

func cloneMap[T any](src map[uuid.UUID]T) map[uuid.UUID]T {
	dst := make(map[uuid.UUID]T, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (d *memData) clone() *memData {
	return &memData{
		stores:      cloneMap(d.stores),
		invitations: cloneMap(d.invitations),
		users:       cloneMap(d.users),
		categories:  cloneMap(d.categories),
		products:    cloneMap(d.products),
		customers:   cloneMap(d.customers),
		orders:      cloneMap(d.orders),
		orderItems:  cloneMap(d.orderItems),
		invoices:    cloneMap(d.invoices),
	}
}

type memOp func(d *memData) error

type memGateway struct {
	f    *MemoryFactory
	snap *memData
	ops  []memOp
	done bool
}

// apply runs an op against the snapshot for read-your-writes visibility
// and records it for replay at Commit.
func (g *memGateway) apply(op memOp) error {
	if err := op(g.snap); err != nil {
		return err
	}
	g.ops = append(g.ops, op)
	return nil
}

func (g *memGateway) Commit() error {
	if g.done {
		return nil
	}
	g.done = true

	g.f.mu.Lock()
	defer g.f.mu.Unlock()

	staging := g.f.data.clone()
	for _, op := range g.ops {
		if err := op(staging); err != nil {
			return err
		}
	}
	g.f.data = staging
	return nil
}

func (g *memGateway) Rollback() error {
	g.done = true
	return nil
}

func (g *memGateway) Stores() StoreRepository           { return &memStores{g} }
func (g *memGateway) Invitations() InvitationRepository { return &memInvitations{g} }
func (g *memGateway) Users() UserRepository             { return &memUsers{g} }
func (g *memGateway) Categories() CategoryRepository    { return &memCategories{g} }
func (g *memGateway) Products() ProductRepository       { return &memProducts{g} }
func (g *memGateway) Customers() CustomerRepository     { return &memCustomers{g} }
func (g *memGateway) Orders() OrderRepository           { return &memOrders{g} }
func (g *memGateway) OrderItems() OrderItemRepository   { return &memOrderItems{g} }
func (g *memGateway) Invoices() InvoiceRepository       { return &memInvoices{g} }

func dup(what string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateKey, what)
}

func stamp(created *time.Time) {
	if created.IsZero() {
		*created = time.Now()
	}
}

type memStores struct{ g *memGateway }

func (r *memStores) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	if s, ok := r.g.snap.stores[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r *memStores) FindBySlug(ctx context.Context, slug string) (*models.Store, error) {
	for _, s := range r.g.snap.stores {
		if s.Slug == slug {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (r *memStores) GetAll(ctx context.Context) ([]models.Store, error) {
	out := make([]models.Store, 0, len(r.g.snap.stores))
	for _, s := range r.g.snap.stores {
		out = append(out, s)
	}
	return out, nil
}

func (r *memStores) Add(ctx context.Context, s *models.Store) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	stamp(&s.CreatedAt)
	v := *s
	return r.g.apply(func(d *memData) error {
		for _, e := range d.stores {
			if e.Slug == v.Slug && e.ID != v.ID {
				return dup("stores.slug")
			}
		}
		d.stores[v.ID] = v
		return nil
	})
}

func (r *memStores) Update(ctx context.Context, s *models.Store) error {
	v := *s
	return r.g.apply(func(d *memData) error {
		d.stores[v.ID] = v
		return nil
	})
}

type memInvitations struct{ g *memGateway }

func (r *memInvitations) GetByID(ctx context.Context, id uuid.UUID) (*models.StoreInvitation, error) {
	if inv, ok := r.g.snap.invitations[id]; ok {
		return &inv, nil
	}
	return nil, nil
}

func (r *memInvitations) FindByToken(ctx context.Context, token string) (*models.StoreInvitation, error) {
	for _, inv := range r.g.snap.invitations {
		if inv.Token == token {
			inv := inv
			return &inv, nil
		}
	}
	return nil, nil
}

func (r *memInvitations) FindLive(ctx context.Context, storeID uuid.UUID, email string, now time.Time) (*models.StoreInvitation, error) {
	for _, inv := range r.g.snap.invitations {
		if inv.StoreID == storeID && inv.Email == email && !inv.IsUsed && inv.ExpiresAt.After(now) {
			inv := inv
			return &inv, nil
		}
	}
	return nil, nil
}

func (r *memInvitations) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.StoreInvitation, error) {
	var out []models.StoreInvitation
	for _, inv := range r.g.snap.invitations {
		if inv.StoreID == storeID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvitations) Add(ctx context.Context, inv *models.StoreInvitation) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	stamp(&inv.CreatedAt)
	v := *inv
	return r.g.apply(func(d *memData) error {
		for _, e := range d.invitations {
			if e.Token == v.Token && e.ID != v.ID {
				return dup("store_invitations.token")
			}
		}
		d.invitations[v.ID] = v
		return nil
	})
}

func (r *memInvitations) Update(ctx context.Context, inv *models.StoreInvitation) error {
	v := *inv
	return r.g.apply(func(d *memData) error {
		d.invitations[v.ID] = v
		return nil
	})
}

type memUsers struct{ g *memGateway }

func (r *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := r.g.snap.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *memUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.g.snap.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.g.snap.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUsers) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.User, error) {
	var out []models.User
	for _, u := range r.g.snap.users {
		if u.StoreID != nil && *u.StoreID == storeID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUsers) GetAll(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(r.g.snap.users))
	for _, u := range r.g.snap.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memUsers) Add(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	stamp(&u.CreatedAt)
	v := *u
	return r.g.apply(func(d *memData) error {
		for _, e := range d.users {
			if e.ID == v.ID {
				continue
			}
			if e.Username == v.Username {
				return dup("users.username")
			}
			if e.Email == v.Email {
				return dup("users.email")
			}
		}
		d.users[v.ID] = v
		return nil
	})
}

func (r *memUsers) Update(ctx context.Context, u *models.User) error {
	v := *u
	return r.g.apply(func(d *memData) error {
		d.users[v.ID] = v
		return nil
	})
}

func (r *memUsers) Delete(ctx context.Context, u *models.User) error {
	id := u.ID
	return r.g.apply(func(d *memData) error {
		delete(d.users, id)
		return nil
	})
}

type memCategories struct{ g *memGateway }

func (r *memCategories) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if c, ok := r.g.snap.categories[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *memCategories) FindByName(ctx context.Context, storeID uuid.UUID, name string) (*models.Category, error) {
	for _, c := range r.g.snap.categories {
		if c.StoreID == storeID && c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memCategories) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	for _, c := range r.g.snap.categories {
		if c.StoreID == storeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCategories) GetAll(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(r.g.snap.categories))
	for _, c := range r.g.snap.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *memCategories) Add(ctx context.Context, c *models.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	stamp(&c.CreatedAt)
	v := *c
	return r.g.apply(func(d *memData) error {
		d.categories[v.ID] = v
		return nil
	})
}

func (r *memCategories) Update(ctx context.Context, c *models.Category) error {
	v := *c
	return r.g.apply(func(d *memData) error {
		d.categories[v.ID] = v
		return nil
	})
}

func (r *memCategories) Delete(ctx context.Context, c *models.Category) error {
	id := c.ID
	return r.g.apply(func(d *memData) error {
		delete(d.categories, id)
		return nil
	})
}

type memProducts struct{ g *memGateway }

func (r *memProducts) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := r.g.snap.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *memProducts) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.g.snap.products {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProducts) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.g.snap.products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProducts) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var n int64
	for _, p := range r.g.snap.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *memProducts) GetAll(ctx context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(r.g.snap.products))
	for _, p := range r.g.snap.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *memProducts) Add(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	stamp(&p.CreatedAt)
	v := *p
	return r.g.apply(func(d *memData) error {
		d.products[v.ID] = v
		return nil
	})
}

func (r *memProducts) Update(ctx context.Context, p *models.Product) error {
	v := *p
	return r.g.apply(func(d *memData) error {
		d.products[v.ID] = v
		return nil
	})
}

func (r *memProducts) Delete(ctx context.Context, p *models.Product) error {
	id := p.ID
	return r.g.apply(func(d *memData) error {
		delete(d.products, id)
		return nil
	})
}

func (r *memProducts) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.g.apply(func(d *memData) error {
		p, ok := d.products[id]
		if !ok || p.StockQuantity < qty {
			return ErrInsufficientStock
		}
		p.StockQuantity -= qty
		d.products[id] = p
		return nil
	})
}

func (r *memProducts) RestoreStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.g.apply(func(d *memData) error {
		p, ok := d.products[id]
		if !ok {
			return nil
		}
		p.StockQuantity += qty
		d.products[id] = p
		return nil
	})
}

type memCustomers struct{ g *memGateway }

func (r *memCustomers) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if c, ok := r.g.snap.customers[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *memCustomers) FindDefault(ctx context.Context, storeID uuid.UUID) (*models.Customer, error) {
	for _, c := range r.g.snap.customers {
		if c.StoreID == storeID && c.IsDefault {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memCustomers) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Customer, error) {
	var out []models.Customer
	for _, c := range r.g.snap.customers {
		if c.StoreID == storeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCustomers) GetAll(ctx context.Context) ([]models.Customer, error) {
	out := make([]models.Customer, 0, len(r.g.snap.customers))
	for _, c := range r.g.snap.customers {
		out = append(out, c)
	}
	return out, nil
}

func (r *memCustomers) Add(ctx context.Context, c *models.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	stamp(&c.CreatedAt)
	v := *c
	return r.g.apply(func(d *memData) error {
		for _, e := range d.customers {
			if e.ID == v.ID {
				continue
			}
			if e.AccountNumber == v.AccountNumber {
				return dup("customers.account_number")
			}
			if v.IsDefault && e.IsDefault && e.StoreID == v.StoreID {
				return dup("customers.default_per_store")
			}
		}
		d.customers[v.ID] = v
		return nil
	})
}

func (r *memCustomers) Update(ctx context.Context, c *models.Customer) error {
	v := *c
	return r.g.apply(func(d *memData) error {
		d.customers[v.ID] = v
		return nil
	})
}

func (r *memCustomers) Delete(ctx context.Context, c *models.Customer) error {
	id := c.ID
	return r.g.apply(func(d *memData) error {
		delete(d.customers, id)
		return nil
	})
}

type memOrders struct{ g *memGateway }

func (r *memOrders) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if o, ok := r.g.snap.orders[id]; ok {
		return &o, nil
	}
	return nil, nil
}

func (r *memOrders) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.g.snap.orders {
		if o.StoreID == storeID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrders) GetAll(ctx context.Context) ([]models.Order, error) {
	out := make([]models.Order, 0, len(r.g.snap.orders))
	for _, o := range r.g.snap.orders {
		out = append(out, o)
	}
	return out, nil
}

func (r *memOrders) ListCompletedBetween(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.g.snap.orders {
		if o.StoreID == storeID && o.Status == models.OrderCompleted &&
			!o.OrderDate.Before(from) && o.OrderDate.Before(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrders) Add(ctx context.Context, o *models.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	stamp(&o.CreatedAt)
	v := *o
	v.OrderItems = nil
	return r.g.apply(func(d *memData) error {
		for _, e := range d.orders {
			if e.OrderNumber == v.OrderNumber && e.ID != v.ID {
				return dup("orders.order_number")
			}
		}
		d.orders[v.ID] = v
		return nil
	})
}

func (r *memOrders) Update(ctx context.Context, o *models.Order) error {
	v := *o
	v.OrderItems = nil
	return r.g.apply(func(d *memData) error {
		d.orders[v.ID] = v
		return nil
	})
}

func (r *memOrders) Delete(ctx context.Context, o *models.Order) error {
	id := o.ID
	return r.g.apply(func(d *memData) error {
		delete(d.orders, id)
		// items cascade with their order
		for k, oi := range d.orderItems {
			if oi.OrderID == id {
				delete(d.orderItems, k)
			}
		}
		return nil
	})
}

type memOrderItems struct{ g *memGateway }

func (r *memOrderItems) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	if oi, ok := r.g.snap.orderItems[id]; ok {
		return &oi, nil
	}
	return nil, nil
}

func (r *memOrderItems) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var out []models.OrderItem
	for _, oi := range r.g.snap.orderItems {
		if oi.OrderID == orderID {
			out = append(out, oi)
		}
	}
	return out, nil
}

func (r *memOrderItems) ListByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]models.OrderItem, error) {
	want := make(map[uuid.UUID]bool, len(orderIDs))
	for _, id := range orderIDs {
		want[id] = true
	}
	var out []models.OrderItem
	for _, oi := range r.g.snap.orderItems {
		if want[oi.OrderID] {
			out = append(out, oi)
		}
	}
	return out, nil
}

func (r *memOrderItems) Add(ctx context.Context, oi *models.OrderItem) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	stamp(&oi.CreatedAt)
	v := *oi
	return r.g.apply(func(d *memData) error {
		d.orderItems[v.ID] = v
		return nil
	})
}

func (r *memOrderItems) Delete(ctx context.Context, oi *models.OrderItem) error {
	id := oi.ID
	return r.g.apply(func(d *memData) error {
		delete(d.orderItems, id)
		return nil
	})
}

type memInvoices struct{ g *memGateway }

func (r *memInvoices) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	if i, ok := r.g.snap.invoices[id]; ok {
		return &i, nil
	}
	return nil, nil
}

func (r *memInvoices) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	for _, i := range r.g.snap.invoices {
		if i.OrderID == orderID {
			i := i
			return &i, nil
		}
	}
	return nil, nil
}

func (r *memInvoices) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, i := range r.g.snap.invoices {
		if i.StoreID == storeID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *memInvoices) GetAll(ctx context.Context) ([]models.Invoice, error) {
	out := make([]models.Invoice, 0, len(r.g.snap.invoices))
	for _, i := range r.g.snap.invoices {
		out = append(out, i)
	}
	return out, nil
}

func (r *memInvoices) Add(ctx context.Context, i *models.Invoice) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	stamp(&i.CreatedAt)
	v := *i
	return r.g.apply(func(d *memData) error {
		for _, e := range d.invoices {
			if e.ID == v.ID {
				continue
			}
			if e.InvoiceNumber == v.InvoiceNumber {
				return dup("invoices.invoice_number")
			}
			if e.OrderID == v.OrderID {
				return dup("invoices.order_id")
			}
		}
		d.invoices[v.ID] = v
		return nil
	})
}

func (r *memInvoices) Update(ctx context.Context, i *models.Invoice) error {
	v := *i
	return r.g.apply(func(d *memData) error {
		d.invoices[v.ID] = v
		return nil
	})
}

func (r *memInvoices) Delete(ctx context.Context, i *models.Invoice) error {
	id := i.ID
	return r.g.apply(func(d *memData) error {
		delete(d.invoices, id)
		return nil
	})
}
