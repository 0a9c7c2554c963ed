package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ss-lucnguyen/seller-inventory/shared/apperr"
	"github.com/ss-lucnguyen/seller-inventory/shared/models"
	"github.com/ss-lucnguyen/seller-inventory/shared/repository"
	"github.com/ss-lucnguyen/seller-inventory/shared/tenancy"
)

func seedStore(t *testing.T, f repository.Factory, slug string) (models.Store, models.User) {
	t.Helper()
	ctx := context.Background()
	gw, err := f.Begin(ctx)
	require.NoError(t, err)

	st := models.Store{Name: slug, Slug: slug, Currency: "USD", IsActive: true, SubscriptionStatus: models.SubscriptionTrial}
	require.NoError(t, gw.Stores().Add(ctx, &st))
	u := models.User{
		Username:     slug + "-manager",
		Email:        slug + "-manager@example.test",
		PasswordHash: "x",
		Role:         models.RoleManager,
		IsActive:     true,
		StoreID:      &st.ID,
	}
	require.NoError(t, gw.Users().Add(ctx, &u))
	require.NoError(t, gw.Commit())
	return st, u
}

func userCtx(u models.User) context.Context {
	return tenancy.NewContext(context.Background(), tenancy.Tenant{
		StoreID: u.StoreID,
		UserID:  u.ID,
		Role:    u.Role,
	})
}

func TestCategoryLifecycle(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	_, user := seedStore(t, f, "alpha")
	ctx := userCtx(user)

	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: "Drinks"})
	require.NoError(t, err)
	assert.True(t, cat.IsActive)

	desc := "cold and hot"
	updated, err := svc.UpdateCategory(ctx, cat.ID, CategoryInput{Name: "Beverages", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Beverages", updated.Name)

	list, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	_, err = svc.GetCategory(ctx, cat.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteCategoryWithProductsRefused(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	_, user := seedStore(t, f, "alpha")
	ctx := userCtx(user)

	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: "Drinks"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, ProductInput{
		Name:       "Cold Brew",
		SellPrice:  decimal.NewFromFloat(4.50),
		CategoryID: cat.ID,
	})
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, cat.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))
}

func TestProductLifecycle(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	_, user := seedStore(t, f, "alpha")
	ctx := userCtx(user)

	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: "Drinks"})
	require.NoError(t, err)

	p, err := svc.CreateProduct(ctx, ProductInput{
		Name:          "Cold Brew",
		SKU:           "CB-01",
		CostPrice:     decimal.NewFromFloat(1.50),
		SellPrice:     decimal.NewFromFloat(4.50),
		StockQuantity: 12,
		CategoryID:    cat.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, p.StockQuantity)

	updated, err := svc.UpdateProduct(ctx, p.ID, ProductInput{
		Name:       "Cold Brew 16oz",
		SKU:        "CB-02",
		CostPrice:  decimal.NewFromFloat(1.75),
		SellPrice:  decimal.NewFromFloat(5.00),
		CategoryID: cat.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Cold Brew 16oz", updated.Name)
	// stock is not touched by a product update
	assert.Equal(t, 12, updated.StockQuantity)

	byCat, err := svc.ListProductsByCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Len(t, byCat, 1)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateProductValidation(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	_, user := seedStore(t, f, "alpha")
	ctx := userCtx(user)

	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: "Drinks"})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, ProductInput{
		Name:       "Bad",
		SellPrice:  decimal.NewFromFloat(-1),
		CategoryID: cat.ID,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))

	// a free product is as invalid as a negative one
	_, err = svc.CreateProduct(ctx, ProductInput{
		Name:       "Free",
		SellPrice:  decimal.Zero,
		CategoryID: cat.ID,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))

	// a category that does not exist at all
	_, err = svc.CreateProduct(ctx, ProductInput{
		Name:       "Orphan",
		SellPrice:  decimal.NewFromFloat(1),
		CategoryID: uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateStock(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	_, user := seedStore(t, f, "alpha")
	ctx := userCtx(user)

	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: "Drinks"})
	require.NoError(t, err)
	p, err := svc.CreateProduct(ctx, ProductInput{
		Name: "Cold Brew", SellPrice: decimal.NewFromFloat(4.50), CategoryID: cat.ID,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStock(ctx, p.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, updated.StockQuantity)

	_, err = svc.UpdateStock(ctx, p.ID, -1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))
}

func TestCatalogCrossTenantVisibility(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	_, alice := seedStore(t, f, "alpha")
	_, bob := seedStore(t, f, "beta")

	cat, err := svc.CreateCategory(userCtx(alice), CategoryInput{Name: "Drinks"})
	require.NoError(t, err)
	p, err := svc.CreateProduct(userCtx(alice), ProductInput{
		Name: "Cold Brew", SellPrice: decimal.NewFromFloat(4.50), CategoryID: cat.ID,
	})
	require.NoError(t, err)

	_, err = svc.GetProduct(userCtx(bob), p.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// stock writes hide foreign products the same way reads do
	_, err = svc.UpdateStock(userCtx(bob), p.ID, 5)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// a category that exists but belongs to another store is refused,
	// not hidden
	_, err = svc.CreateProduct(userCtx(bob), ProductInput{
		Name: "Squatter", SellPrice: decimal.NewFromFloat(1), CategoryID: cat.ID,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// each store only lists its own catalog
	mine, err := svc.ListProducts(userCtx(bob))
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestImportPartialSuccess(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	_, user := seedStore(t, f, "alpha")
	ctx := userCtx(user)

	result, err := svc.Import(ctx, []ImportRow{
		{Name: "Cold Brew", CategoryName: "Drinks", SellPrice: decimal.NewFromFloat(4.50), StockQuantity: 10},
		{Name: "", CategoryName: "Drinks", SellPrice: decimal.NewFromFloat(1.00)},
		{Name: "Muffin", CategoryName: "Bakery", SellPrice: decimal.NewFromFloat(3.00), StockQuantity: 6},
		{Name: "Broken", CategoryName: "Bakery", SellPrice: decimal.NewFromFloat(-3.00)},
		{Name: "Free", CategoryName: "Bakery", SellPrice: decimal.Zero},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 3, result.Failed)
	require.Len(t, result.Rows, 5)
	assert.Empty(t, result.Rows[0].Error)
	assert.NotEmpty(t, result.Rows[1].Error)
	assert.Empty(t, result.Rows[2].Error)
	assert.NotEmpty(t, result.Rows[3].Error)
	assert.NotEmpty(t, result.Rows[4].Error)

	// the two good rows are persisted, the bad rows are not
	prods, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, prods, 2)

	// categories were resolved or created per row
	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 2)
}

func TestImportReusesExistingCategory(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	_, user := seedStore(t, f, "alpha")
	ctx := userCtx(user)

	existing, err := svc.CreateCategory(ctx, CategoryInput{Name: "Drinks"})
	require.NoError(t, err)

	result, err := svc.Import(ctx, []ImportRow{
		{Name: "Cold Brew", CategoryName: "Drinks", SellPrice: decimal.NewFromFloat(4.50)},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)

	prods, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, prods, 1)
	assert.Equal(t, existing.ID, prods[0].CategoryID)
}
