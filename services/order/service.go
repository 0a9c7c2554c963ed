// Package order implements order capture: atomic stock reservation,
// item snapshots and the order status lifecycle.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ss-lucnguyen/seller-inventory/services/customer"
	"github.com/ss-lucnguyen/seller-inventory/shared/apperr"
	"github.com/ss-lucnguyen/seller-inventory/shared/models"
	"github.com/ss-lucnguyen/seller-inventory/shared/repository"
	"github.com/ss-lucnguyen/seller-inventory/shared/tenancy"
	"github.com/ss-lucnguyen/seller-inventory/shared/utils"
)

// Service implements order operations against the persistence gateway
type Service struct {
	repo      repository.Factory
	customers *customer.Service
}

// NewService creates an order service
func NewService(repo repository.Factory, customers *customer.Service) *Service {
	return &Service{repo: repo, customers: customers}
}

// ItemInput is one requested order line
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateInput carries a new order request. A nil CustomerID means the
// store's default walk-in customer.
type CreateInput struct {
	CustomerID *uuid.UUID
	Tax        decimal.Decimal
	Discount   decimal.Decimal
	Notes      *string
	Items      []ItemInput
}

// Detail is an order joined with the names a sales screen shows
type Detail struct {
	models.Order
	CustomerName string `json:"customer_name"`
	CashierName  string `json:"cashier_name"`
}

// Create places an order. Stock for every line is reserved with a
// conditional decrement and the order, its items and the stock
// mutations land in one commit; any failure leaves stock untouched.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Order, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if t.StoreID == nil {
		return nil, apperr.InvalidOperation("orders require a store context")
	}
	storeID := *t.StoreID

	if len(in.Items) == 0 {
		return nil, apperr.InvalidOperation("an order needs at least one item")
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, apperr.InvalidOperation("item quantity must be positive")
		}
	}
	if in.Tax.IsNegative() || in.Discount.IsNegative() {
		return nil, apperr.InvalidOperation("tax and discount cannot be negative")
	}

	// The walk-in customer is provisioned in its own transaction so it
	// survives even when the order itself fails.
	customerID := uuid.Nil
	if in.CustomerID == nil {
		def, err := s.customers.GetOrCreateDefault(ctx, storeID)
		if err != nil {
			return nil, err
		}
		customerID = def.ID
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	user, err := gw.Users().GetByID(ctx, t.UserID)
	if err != nil {
		return nil, apperr.Persistence(err, "get user")
	}
	if user == nil || user.StoreID == nil || *user.StoreID != storeID {
		return nil, apperr.InvalidOperation("acting user does not belong to the store")
	}

	if in.CustomerID != nil {
		cust, err := gw.Customers().GetByID(ctx, *in.CustomerID)
		if err != nil {
			return nil, apperr.Persistence(err, "get customer")
		}
		if cust == nil || cust.StoreID != storeID {
			return nil, apperr.NotFound("customer not found")
		}
		customerID = cust.ID
	}

	now := time.Now()
	ord := models.Order{
		OrderNumber: utils.NewOrderNumber(now),
		OrderDate:   now,
		Status:      models.OrderPending,
		Tax:         in.Tax,
		Discount:    in.Discount,
		Notes:       in.Notes,
		UserID:      t.UserID,
		CustomerID:  customerID,
		StoreID:     storeID,
	}
	if err := gw.Orders().Add(ctx, &ord); err != nil {
		return nil, apperr.Persistence(err, "add order")
	}

	for _, it := range in.Items {
		item, err := s.reserveItem(ctx, gw, storeID, ord.ID, it)
		if err != nil {
			return nil, err
		}
		ord.OrderItems = append(ord.OrderItems, *item)
	}

	ord.CalculateTotal()
	if err := gw.Orders().Update(ctx, &ord); err != nil {
		return nil, apperr.Persistence(err, "update order totals")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit order")
	}

	logrus.WithFields(logrus.Fields{
		"order_id":     ord.ID,
		"order_number": ord.OrderNumber,
		"store_id":     storeID,
		"items":        len(ord.OrderItems),
		"total":        ord.Total,
	}).Info("order created")
	return &ord, nil
}

// reserveItem loads the product, decrements its stock conditionally and
// snapshots name and price into a new order line.
func (s *Service) reserveItem(ctx context.Context, gw repository.Gateway, storeID, orderID uuid.UUID, it ItemInput) (*models.OrderItem, error) {
	p, err := gw.Products().GetByID(ctx, it.ProductID)
	if err != nil {
		return nil, apperr.Persistence(err, "get product")
	}
	if p == nil || p.StoreID != storeID {
		return nil, apperr.NotFound("product not found")
	}

	if err := gw.Products().DecrementStock(ctx, p.ID, it.Quantity); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, apperr.InvalidOperation("insufficient stock for product %q", p.Name)
		}
		return nil, apperr.Persistence(err, "decrement stock")
	}

	item := models.OrderItem{
		OrderID:     orderID,
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.SellPrice,
		Quantity:    it.Quantity,
	}
	if err := gw.OrderItems().Add(ctx, &item); err != nil {
		return nil, apperr.Persistence(err, "add order item")
	}
	return &item, nil
}

// loadForEdit fetches an order for mutation. Items may only change
// while the order is still pending.
func (s *Service) loadForEdit(ctx context.Context, gw repository.Gateway, t tenancy.Tenant, orderID uuid.UUID) (*models.Order, error) {
	ord, err := gw.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Persistence(err, "get order")
	}
	if ord == nil {
		return nil, apperr.NotFound("order not found")
	}
	if !t.CanAccess(ord.StoreID) {
		return nil, apperr.Forbidden("order belongs to another store")
	}
	if ord.Status != models.OrderPending {
		return nil, apperr.InvalidOperation("items can only change while the order is pending")
	}
	return ord, nil
}

// recalcTotals reloads the item set and reapplies the totals identity
// before the order is written back.
func (s *Service) recalcTotals(ctx context.Context, gw repository.Gateway, ord *models.Order) error {
	items, err := gw.OrderItems().ListByOrder(ctx, ord.ID)
	if err != nil {
		return apperr.Persistence(err, "list order items")
	}
	ord.OrderItems = items
	ord.CalculateTotal()
	if err := gw.Orders().Update(ctx, ord); err != nil {
		return apperr.Persistence(err, "update order totals")
	}
	return nil
}

// AddItem appends a line to a pending order, reserving stock for it
func (s *Service) AddItem(ctx context.Context, orderID uuid.UUID, in ItemInput) (*models.Order, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, apperr.InvalidOperation("item quantity must be positive")
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	ord, err := s.loadForEdit(ctx, gw, t, orderID)
	if err != nil {
		return nil, err
	}

	if _, err := s.reserveItem(ctx, gw, ord.StoreID, ord.ID, in); err != nil {
		return nil, err
	}
	if err := s.recalcTotals(ctx, gw, ord); err != nil {
		return nil, err
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit order")
	}
	return ord, nil
}

// RemoveItem deletes a line from a pending order and restores its stock
func (s *Service) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (*models.Order, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	ord, err := s.loadForEdit(ctx, gw, t, orderID)
	if err != nil {
		return nil, err
	}

	item, err := gw.OrderItems().GetByID(ctx, itemID)
	if err != nil {
		return nil, apperr.Persistence(err, "get order item")
	}
	if item == nil || item.OrderID != ord.ID {
		return nil, apperr.NotFound("order item not found")
	}

	if err := gw.Products().RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
		return nil, apperr.Persistence(err, "restore stock")
	}
	if err := gw.OrderItems().Delete(ctx, item); err != nil {
		return nil, apperr.Persistence(err, "delete order item")
	}
	if err := s.recalcTotals(ctx, gw, ord); err != nil {
		return nil, err
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit order")
	}
	return ord, nil
}

// UpdateStatus moves an order along the status graph. Cancelling does
// not restock; only explicit item removal returns stock.
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, apperr.InvalidOperation("%v", err)
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	ord, err := gw.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Persistence(err, "get order")
	}
	if ord == nil {
		return nil, apperr.NotFound("order not found")
	}
	if !t.CanAccess(ord.StoreID) {
		return nil, apperr.Forbidden("order belongs to another store")
	}
	if !ord.Status.CanTransitionTo(next) {
		return nil, apperr.InvalidOperation("cannot change order status from %s to %s", ord.Status, next)
	}

	ord.Status = next
	if err := gw.Orders().Update(ctx, ord); err != nil {
		return nil, apperr.Persistence(err, "update order")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit order")
	}

	logrus.WithFields(logrus.Fields{"order_id": ord.ID, "status": next}).Info("order status changed")
	return ord, nil
}

// Get returns one order with items and display names attached
func (s *Service) Get(ctx context.Context, orderID uuid.UUID) (*Detail, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	ord, err := gw.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Persistence(err, "get order")
	}
	if ord == nil || !t.CanAccess(ord.StoreID) {
		return nil, apperr.NotFound("order not found")
	}

	items, err := gw.OrderItems().ListByOrder(ctx, ord.ID)
	if err != nil {
		return nil, apperr.Persistence(err, "list order items")
	}
	ord.OrderItems = items

	detail := Detail{Order: *ord}
	if cust, err := gw.Customers().GetByID(ctx, ord.CustomerID); err == nil && cust != nil {
		detail.CustomerName = cust.Name
	}
	if user, err := gw.Users().GetByID(ctx, ord.UserID); err == nil && user != nil {
		detail.CashierName = user.FullName
	}
	return &detail, nil
}

// List returns the caller's orders with items and names expanded;
// system admins without a store see every store's orders.
func (s *Service) List(ctx context.Context) ([]Detail, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	var orders []models.Order
	if t.IsSystemAdmin() && t.StoreID == nil {
		orders, err = gw.Orders().GetAll(ctx)
	} else if t.StoreID != nil {
		orders, err = gw.Orders().ListByStore(ctx, *t.StoreID)
	} else {
		return nil, apperr.InvalidOperation("operation requires a store context")
	}
	if err != nil {
		return nil, apperr.Persistence(err, "list orders")
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	items, err := gw.OrderItems().ListByOrders(ctx, ids)
	if err != nil {
		return nil, apperr.Persistence(err, "list order items")
	}
	byOrder := map[uuid.UUID][]models.OrderItem{}
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	details := make([]Detail, 0, len(orders))
	custNames := map[uuid.UUID]string{}
	userNames := map[uuid.UUID]string{}
	for _, o := range orders {
		o.OrderItems = byOrder[o.ID]
		d := Detail{Order: o}

		if name, ok := custNames[o.CustomerID]; ok {
			d.CustomerName = name
		} else if cust, err := gw.Customers().GetByID(ctx, o.CustomerID); err == nil && cust != nil {
			custNames[o.CustomerID] = cust.Name
			d.CustomerName = cust.Name
		}

		if name, ok := userNames[o.UserID]; ok {
			d.CashierName = name
		} else if user, err := gw.Users().GetByID(ctx, o.UserID); err == nil && user != nil {
			userNames[o.UserID] = user.FullName
			d.CashierName = user.FullName
		}

		details = append(details, d)
	}
	return details, nil
}
