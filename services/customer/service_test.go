package customer

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
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
		FullName:     "Manager",
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

func TestCreateAndGetCustomer(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	_, user := seedStore(t, f, "alpha")
	ctx := userCtx(user)

	created, err := svc.Create(ctx, Input{Name: "Jordan Vo", Gender: "female"})
	require.NoError(t, err)
	assert.Equal(t, models.GenderFemale, created.Gender)
	assert.Contains(t, created.AccountNumber, "CUST-")
	assert.False(t, created.IsDefault)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestCreateCustomerRejectsBadGender(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	_, user := seedStore(t, f, "alpha")

	_, err := svc.Create(userCtx(user), Input{Name: "X", Gender: "robot"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))
}

func TestCustomerCrossTenantVisibility(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	_, alice := seedStore(t, f, "alpha")
	_, bob := seedStore(t, f, "beta")

	created, err := svc.Create(userCtx(alice), Input{Name: "Jordan Vo"})
	require.NoError(t, err)

	// a foreigner reading sees NotFound, never Forbidden
	_, err = svc.Get(userCtx(bob), created.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// a foreigner mutating is told Forbidden
	_, err = svc.Update(userCtx(bob), created.ID, Input{Name: "Stolen"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = svc.Delete(userCtx(bob), created.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// a system admin sees everything
	admin := models.User{ID: uuid.New(), Role: models.RoleSystemAdmin}
	got, err := svc.Get(userCtx(admin), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestDefaultCustomerIsProtected(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	st, user := seedStore(t, f, "alpha")

	def, err := svc.GetOrCreateDefault(context.Background(), st.ID)
	require.NoError(t, err)
	assert.True(t, def.IsDefault)
	assert.Equal(t, DefaultCustomerName, def.Name)

	_, err = svc.Update(userCtx(user), def.ID, Input{Name: "Renamed"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))

	err = svc.Delete(userCtx(user), def.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))
}

func TestGetOrCreateDefaultIsIdempotent(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	st, _ := seedStore(t, f, "alpha")

	first, err := svc.GetOrCreateDefault(context.Background(), st.ID)
	require.NoError(t, err)
	second, err := svc.GetOrCreateDefault(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetOrCreateDefaultConcurrentFirstUse(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	st, user := seedStore(t, f, "alpha")

	const callers = 8
	results := make([]*models.Customer, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.GetOrCreateDefault(context.Background(), st.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, results[0].ID, results[i].ID, "all callers must see the same default")
	}

	// exactly one default row exists
	list, err := svc.List(userCtx(user))
	require.NoError(t, err)
	defaults := 0
	for _, c := range list {
		if c.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestUpdateCustomer(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	_, user := seedStore(t, f, "alpha")
	ctx := userCtx(user)

	created, err := svc.Create(ctx, Input{Name: "Jordan Vo"})
	require.NoError(t, err)

	mobile := "555-0134"
	updated, err := svc.Update(ctx, created.ID, Input{Name: "Jordan V.", Mobile: &mobile})
	require.NoError(t, err)
	assert.Equal(t, "Jordan V.", updated.Name)
	require.NotNil(t, updated.Mobile)
	assert.Equal(t, mobile, *updated.Mobile)
}

func TestDeleteCustomer(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	_, user := seedStore(t, f, "alpha")
	ctx := userCtx(user)

	created, err := svc.Create(ctx, Input{Name: "Jordan Vo"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
