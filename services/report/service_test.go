package report

import (
	"context"
	"testing"
	"time"

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
	user    models.User
	coffee  models.Product
	muffin  models.Product
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
		Role: models.RoleStaff, IsActive: true, StoreID: &st.ID,
	}
	require.NoError(t, gw.Users().Add(ctx, &u))
	cat := models.Category{Name: "Menu", StoreID: st.ID, IsActive: true}
	require.NoError(t, gw.Categories().Add(ctx, &cat))
	coffee := models.Product{
		Name: "Coffee", SellPrice: decimal.NewFromFloat(3.00),
		StockQuantity: 100, CategoryID: cat.ID, StoreID: st.ID, IsActive: true,
	}
	muffin := models.Product{
		Name: "Muffin", SellPrice: decimal.NewFromFloat(2.00),
		StockQuantity: 100, CategoryID: cat.ID, StoreID: st.ID, IsActive: true,
	}
	require.NoError(t, gw.Products().Add(ctx, &coffee))
	require.NoError(t, gw.Products().Add(ctx, &muffin))
	require.NoError(t, gw.Commit())

	return &fixture{
		factory: f,
		svc:     NewService(f),
		orders:  order.NewService(f, customer.NewService(f)),
		user:    u,
		coffee:  coffee,
		muffin:  muffin,
	}
}

func (fx *fixture) ctx() context.Context {
	return tenancy.NewContext(context.Background(), tenancy.Tenant{
		StoreID: fx.user.StoreID,
		UserID:  fx.user.ID,
		Role:    fx.user.Role,
	})
}

// completeOrder places an order and drives it to completed
func (fx *fixture) completeOrder(t *testing.T, items []order.ItemInput) {
	t.Helper()
	ord, err := fx.orders.Create(fx.ctx(), order.CreateInput{Items: items})
	require.NoError(t, err)
	_, err = fx.orders.UpdateStatus(fx.ctx(), ord.ID, "confirmed")
	require.NoError(t, err)
	_, err = fx.orders.UpdateStatus(fx.ctx(), ord.ID, "completed")
	require.NoError(t, err)
}

func TestDailySalesAggregatesCompletedOrders(t *testing.T) {
	fx := newFixture(t)

	fx.completeOrder(t, []order.ItemInput{
		{ProductID: fx.coffee.ID, Quantity: 2},
		{ProductID: fx.muffin.ID, Quantity: 1},
	})
	fx.completeOrder(t, []order.ItemInput{
		{ProductID: fx.coffee.ID, Quantity: 1},
	})

	// a pending order is excluded from the report
	_, err := fx.orders.Create(fx.ctx(), order.CreateInput{
		Items: []order.ItemInput{{ProductID: fx.muffin.ID, Quantity: 5}},
	})
	require.NoError(t, err)

	report, err := fx.svc.DailySales(fx.ctx(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 2, report.OrderCount)
	assert.Equal(t, 4, report.ItemsSold)
	// 2*3.00 + 1*2.00 + 1*3.00 = 11.00
	assert.True(t, report.Revenue.Equal(decimal.NewFromFloat(11.00)), "revenue %s", report.Revenue)
	assert.True(t, report.AverageOrder.Equal(decimal.NewFromFloat(5.50)), "average %s", report.AverageOrder)

	require.Len(t, report.TopProducts, 2)
	assert.Equal(t, "Coffee", report.TopProducts[0].ProductName)
	assert.Equal(t, 3, report.TopProducts[0].QuantitySold)
	assert.True(t, report.TopProducts[0].Revenue.Equal(decimal.NewFromFloat(9.00)))
}

func TestDailySalesEmptyDay(t *testing.T) {
	fx := newFixture(t)

	report, err := fx.svc.DailySales(fx.ctx(), time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, 0, report.OrderCount)
	assert.True(t, report.Revenue.IsZero())
	assert.True(t, report.AverageOrder.IsZero())
	assert.Empty(t, report.TopProducts)
}

func TestSalesSummary(t *testing.T) {
	fx := newFixture(t)

	fx.completeOrder(t, []order.ItemInput{{ProductID: fx.coffee.ID, Quantity: 2}})
	fx.completeOrder(t, []order.ItemInput{{ProductID: fx.muffin.ID, Quantity: 3}})

	now := time.Now()
	summary, err := fx.svc.Summary(fx.ctx(), now.AddDate(0, 0, -1), now)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.OrderCount)
	assert.Equal(t, 5, summary.ItemsSold)
	assert.True(t, summary.Revenue.Equal(decimal.NewFromFloat(12.00)), "revenue %s", summary.Revenue)

	_, err = fx.svc.Summary(fx.ctx(), now, now.AddDate(0, 0, -1))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))
}

func TestReportsRequireStoreContext(t *testing.T) {
	fx := newFixture(t)

	admin := tenancy.NewContext(context.Background(), tenancy.Tenant{
		UserID: fx.user.ID, Role: models.RoleSystemAdmin,
	})
	_, err := fx.svc.DailySales(admin, time.Now())
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))
}
