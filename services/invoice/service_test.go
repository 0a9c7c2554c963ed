package invoice

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ss-lucnguyen/seller-inventory/services/customer"
	"github.com/ss-lucnguyen/seller-inventory/services/order"
	"github.com/ss-lucnguyen/seller-inventory/shared/apperr"
	"github.com/ss-lucnguyen/seller-inventory/shared/models"
	"github.com/ss-lucnguyen/seller-inventory/shared/repository"
	"github.com/ss-lucnguyen/seller-inventory/shared/tenancy"
)

type fixture struct {
	factory *repository.MemoryFactory
	svc     *Service
	orders  *order.Service
	store   models.Store
	user    models.User
	product models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := repository.NewMemoryFactory()

	gw, err := f.Begin(ctx)
	require.NoError(t, err)
	st := models.Store{Name: "Alpha", Slug: "alpha", Currency: "USD", IsActive: true, SubscriptionStatus: models.SubscriptionTrial}
	require.NoError(t, gw.Stores().Add(ctx, &st))
	u := models.User{
		Username: "alpha-staff", Email: "staff@alpha.test", PasswordHash: "x",
		FullName: "Sam Staff", Role: models.RoleStaff, IsActive: true, StoreID: &st.ID,
	}
	require.NoError(t, gw.Users().Add(ctx, &u))
	cat := models.Category{Name: "Drinks", StoreID: st.ID, IsActive: true}
	require.NoError(t, gw.Categories().Add(ctx, &cat))
	p := models.Product{
		Name: "Cold Brew", SellPrice: decimal.NewFromFloat(5.00),
		StockQuantity: 100, CategoryID: cat.ID, StoreID: st.ID, IsActive: true,
	}
	require.NoError(t, gw.Products().Add(ctx, &p))
	require.NoError(t, gw.Commit())

	return &fixture{
		factory: f,
		svc:     NewService(f),
		orders:  order.NewService(f, customer.NewService(f)),
		store:   st,
		user:    u,
		product: p,
	}
}

func (fx *fixture) ctx() context.Context {
	return tenancy.NewContext(context.Background(), tenancy.Tenant{
		StoreID: fx.user.StoreID,
		UserID:  fx.user.ID,
		Role:    fx.user.Role,
	})
}

// placeOrder creates an order of qty units and moves it to the given status
func (fx *fixture) placeOrder(t *testing.T, qty int, status models.OrderStatus) *models.Order {
	t.Helper()
	ord, err := fx.orders.Create(fx.ctx(), order.CreateInput{
		Tax:   decimal.NewFromFloat(1.00),
		Items: []order.ItemInput{{ProductID: fx.product.ID, Quantity: qty}},
	})
	require.NoError(t, err)

	switch status {
	case models.OrderConfirmed:
		_, err = fx.orders.UpdateStatus(fx.ctx(), ord.ID, "confirmed")
		require.NoError(t, err)
	case models.OrderCompleted:
		_, err = fx.orders.UpdateStatus(fx.ctx(), ord.ID, "confirmed")
		require.NoError(t, err)
		_, err = fx.orders.UpdateStatus(fx.ctx(), ord.ID, "completed")
		require.NoError(t, err)
	}
	return ord
}

func TestCreateInvoiceCopiesOrderTotals(t *testing.T) {
	fx := newFixture(t)
	ord := fx.placeOrder(t, 3, models.OrderConfirmed)

	inv, err := fx.svc.Create(fx.ctx(), CreateInput{OrderID: ord.ID})
	require.NoError(t, err)

	assert.Contains(t, inv.InvoiceNumber, "INV-")
	assert.Equal(t, models.InvoiceNotPaid, inv.PaymentStatus)
	assert.True(t, inv.SubTotal.Equal(decimal.NewFromFloat(15.00)), "sub total %s", inv.SubTotal)
	assert.True(t, inv.Total.Equal(decimal.NewFromFloat(16.00)), "total %s", inv.Total)
	assert.True(t, inv.AmountPaid.IsZero())
}

func TestCreateInvoiceRequiresConfirmedOrCompleted(t *testing.T) {
	fx := newFixture(t)

	pending := fx.placeOrder(t, 1, models.OrderPending)
	_, err := fx.svc.Create(fx.ctx(), CreateInput{OrderID: pending.ID})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))

	completed := fx.placeOrder(t, 1, models.OrderCompleted)
	_, err = fx.svc.Create(fx.ctx(), CreateInput{OrderID: completed.ID})
	require.NoError(t, err)
}

func TestOneInvoicePerOrder(t *testing.T) {
	fx := newFixture(t)
	ord := fx.placeOrder(t, 1, models.OrderConfirmed)

	_, err := fx.svc.Create(fx.ctx(), CreateInput{OrderID: ord.ID})
	require.NoError(t, err)

	_, err = fx.svc.Create(fx.ctx(), CreateInput{OrderID: ord.ID})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))
}

func TestUpdatePaymentDerivesStatus(t *testing.T) {
	fx := newFixture(t)
	ord := fx.placeOrder(t, 3, models.OrderConfirmed)
	inv, err := fx.svc.Create(fx.ctx(), CreateInput{OrderID: ord.ID})
	require.NoError(t, err)

	partial, err := fx.svc.UpdatePayment(fx.ctx(), inv.ID, decimal.NewFromFloat(6.00))
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePartialPaid, partial.PaymentStatus)
	assert.True(t, partial.AmountDue().Equal(decimal.NewFromFloat(10.00)))

	full, err := fx.svc.UpdatePayment(fx.ctx(), inv.ID, decimal.NewFromFloat(16.00))
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, full.PaymentStatus)
	assert.True(t, full.AmountDue().IsZero())
}

func TestUpdatePaymentBounds(t *testing.T) {
	fx := newFixture(t)
	ord := fx.placeOrder(t, 1, models.OrderConfirmed)
	inv, err := fx.svc.Create(fx.ctx(), CreateInput{OrderID: ord.ID})
	require.NoError(t, err)

	_, err = fx.svc.UpdatePayment(fx.ctx(), inv.ID, decimal.NewFromFloat(-1))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))

	_, err = fx.svc.UpdatePayment(fx.ctx(), inv.ID, inv.Total.Add(decimal.NewFromFloat(0.01)))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))
}

func TestUpdatePaymentAllowsCorrection(t *testing.T) {
	fx := newFixture(t)
	ord := fx.placeOrder(t, 1, models.OrderConfirmed)
	inv, err := fx.svc.Create(fx.ctx(), CreateInput{OrderID: ord.ID})
	require.NoError(t, err)

	_, err = fx.svc.UpdatePayment(fx.ctx(), inv.ID, inv.Total)
	require.NoError(t, err)

	// a mis-entered payment can be dialed back, and the status follows
	corrected, err := fx.svc.UpdatePayment(fx.ctx(), inv.ID, decimal.NewFromFloat(2.00))
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePartialPaid, corrected.PaymentStatus)
	assert.True(t, corrected.AmountPaid.Equal(decimal.NewFromFloat(2.00)))

	cleared, err := fx.svc.UpdatePayment(fx.ctx(), inv.ID, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceNotPaid, cleared.PaymentStatus)

	// once cleared the invoice is deletable again
	require.NoError(t, fx.svc.Delete(fx.ctx(), inv.ID))
}

func TestMarkAsPaid(t *testing.T) {
	fx := newFixture(t)
	ord := fx.placeOrder(t, 2, models.OrderConfirmed)
	inv, err := fx.svc.Create(fx.ctx(), CreateInput{OrderID: ord.ID})
	require.NoError(t, err)

	paid, err := fx.svc.MarkAsPaid(fx.ctx(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, paid.PaymentStatus)
	assert.True(t, paid.AmountPaid.Equal(paid.Total))
	assert.True(t, paid.AmountDue().IsZero())
}

func TestDeleteProtectsPaidInvoices(t *testing.T) {
	fx := newFixture(t)
	ord := fx.placeOrder(t, 1, models.OrderConfirmed)
	inv, err := fx.svc.Create(fx.ctx(), CreateInput{OrderID: ord.ID})
	require.NoError(t, err)

	_, err = fx.svc.UpdatePayment(fx.ctx(), inv.ID, decimal.NewFromFloat(1.00))
	require.NoError(t, err)

	err = fx.svc.Delete(fx.ctx(), inv.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))
}

func TestDeleteUnpaidInvoice(t *testing.T) {
	fx := newFixture(t)
	ord := fx.placeOrder(t, 1, models.OrderConfirmed)
	inv, err := fx.svc.Create(fx.ctx(), CreateInput{OrderID: ord.ID})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(fx.ctx(), inv.ID))

	_, err = fx.svc.Get(fx.ctx(), inv.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// the order can be invoiced again afterwards
	_, err = fx.svc.Create(fx.ctx(), CreateInput{OrderID: ord.ID})
	require.NoError(t, err)
}

func TestGetByOrderAndDetailJoin(t *testing.T) {
	fx := newFixture(t)
	ord := fx.placeOrder(t, 1, models.OrderConfirmed)
	inv, err := fx.svc.Create(fx.ctx(), CreateInput{OrderID: ord.ID})
	require.NoError(t, err)

	detail, err := fx.svc.GetByOrder(fx.ctx(), ord.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, detail.ID)
	assert.Equal(t, ord.OrderNumber, detail.OrderNumber)
	assert.Equal(t, customer.DefaultCustomerName, detail.CustomerName)
}

func TestInvoiceCrossTenantVisibility(t *testing.T) {
	fx := newFixture(t)
	ord := fx.placeOrder(t, 1, models.OrderConfirmed)
	inv, err := fx.svc.Create(fx.ctx(), CreateInput{OrderID: ord.ID})
	require.NoError(t, err)

	otherStore := uuid.New()
	foreigner := tenancy.NewContext(context.Background(), tenancy.Tenant{
		StoreID: &otherStore, UserID: uuid.New(), Role: models.RoleManager,
	})

	_, err = fx.svc.Get(foreigner, inv.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = fx.svc.UpdatePayment(foreigner, inv.ID, decimal.NewFromFloat(1.00))
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	admin := tenancy.NewContext(context.Background(), tenancy.Tenant{
		UserID: uuid.New(), Role: models.RoleSystemAdmin,
	})
	got, err := fx.svc.Get(admin, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
}
