package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ss-lucnguyen/seller-inventory/shared/apperr"
	"github.com/ss-lucnguyen/seller-inventory/shared/models"
	"github.com/ss-lucnguyen/seller-inventory/shared/repository"
	"github.com/ss-lucnguyen/seller-inventory/shared/tenancy"
)

func registerAlpha(t *testing.T, svc *Service) *LoginResult {
	t.Helper()
	result, err := svc.RegisterStore(context.Background(), RegisterStoreInput{
		StoreName: "Alpha Coffee",
		Slug:      "alpha-coffee",
		Username:  "alice",
		Email:     "alice@alpha.test",
		Password:  "correct-horse",
		FullName:  "Alice Tran",
	})
	require.NoError(t, err)
	return result
}

func ctxFor(u *models.User) context.Context {
	return tenancy.NewContext(context.Background(), tenancy.Tenant{
		StoreID: u.StoreID,
		UserID:  u.ID,
		Role:    u.Role,
	})
}

func TestRegisterStoreBootstrapsTenant(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)

	result := registerAlpha(t, svc)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, models.RoleManager, result.User.Role)
	require.NotNil(t, result.User.StoreID)

	gw, err := f.Begin(context.Background())
	require.NoError(t, err)
	defer gw.Rollback()
	st, err := gw.Stores().FindBySlug(context.Background(), "alpha-coffee")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, models.SubscriptionTrial, st.SubscriptionStatus)
	require.NotNil(t, st.SubscriptionExpiresAt)
	assert.True(t, st.SubscriptionExpiresAt.After(time.Now()))
}

func TestRegisterStoreRejectsTakenSlugAndIdentity(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	registerAlpha(t, svc)

	_, err := svc.RegisterStore(context.Background(), RegisterStoreInput{
		StoreName: "Copycat", Slug: "alpha-coffee",
		Username: "bob", Email: "bob@beta.test", Password: "password1",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))

	_, err = svc.RegisterStore(context.Background(), RegisterStoreInput{
		StoreName: "Beta", Slug: "beta",
		Username: "alice", Email: "bob@beta.test", Password: "password1",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))

	_, err = svc.RegisterStore(context.Background(), RegisterStoreInput{
		StoreName: "Beta", Slug: "beta",
		Username: "bob", Email: "alice@alpha.test", Password: "password1",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))
}

func TestLogin(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	registerAlpha(t, svc)

	result, err := svc.Login(context.Background(), "alice", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "alice", result.User.Username)

	_, err = svc.Login(context.Background(), "alice", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.Login(context.Background(), "nobody", "correct-horse")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	owner := registerAlpha(t, svc)

	ctx := context.Background()
	gw, err := f.Begin(ctx)
	require.NoError(t, err)
	user, err := gw.Users().GetByID(ctx, owner.User.ID)
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, gw.Users().Update(ctx, user))
	require.NoError(t, gw.Commit())

	_, err = svc.Login(ctx, "alice", "correct-horse")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestInvitationLifecycle(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	owner := registerAlpha(t, svc)
	ctx := ctxFor(owner.User)

	inv, err := svc.InviteUser(ctx, "new.staff@alpha.test", "staff")
	require.NoError(t, err)
	assert.NotEmpty(t, inv.Token)
	assert.Equal(t, models.RoleStaff, inv.Role)
	assert.False(t, inv.IsUsed)

	// a second live invitation for the same email is refused
	_, err = svc.InviteUser(ctx, "new.staff@alpha.test", "staff")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))

	accepted, err := svc.AcceptInvitation(context.Background(), AcceptInvitationInput{
		Token:    inv.Token,
		Username: "newstaff",
		Password: "password1",
		FullName: "New Staff",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, accepted.User.Role)
	assert.Equal(t, "new.staff@alpha.test", accepted.User.Email)
	require.NotNil(t, accepted.User.StoreID)
	assert.Equal(t, *owner.User.StoreID, *accepted.User.StoreID)

	// single use
	_, err = svc.AcceptInvitation(context.Background(), AcceptInvitationInput{
		Token:    inv.Token,
		Username: "again",
		Password: "password1",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))

	// the new user can log in
	_, err = svc.Login(context.Background(), "newstaff", "password1")
	require.NoError(t, err)
}

func TestAcceptExpiredInvitation(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	owner := registerAlpha(t, svc)

	inv, err := svc.InviteUser(ctxFor(owner.User), "late@alpha.test", "staff")
	require.NoError(t, err)

	ctx := context.Background()
	gw, err := f.Begin(ctx)
	require.NoError(t, err)
	stored, err := gw.Invitations().GetByID(ctx, inv.ID)
	require.NoError(t, err)
	stored.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, gw.Invitations().Update(ctx, stored))
	require.NoError(t, gw.Commit())

	_, err = svc.AcceptInvitation(ctx, AcceptInvitationInput{
		Token:    inv.Token,
		Username: "late",
		Password: "password1",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))
}

func TestInviteRequiresManager(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	owner := registerAlpha(t, svc)

	staffID := uuid.New()
	staffCtx := tenancy.NewContext(context.Background(), tenancy.Tenant{
		StoreID: owner.User.StoreID,
		UserID:  staffID,
		Role:    models.RoleStaff,
	})

	_, err := svc.InviteUser(staffCtx, "x@alpha.test", "staff")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestInviteRejectsSystemAdminRole(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	owner := registerAlpha(t, svc)

	_, err := svc.InviteUser(ctxFor(owner.User), "x@alpha.test", "system_admin")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))
}

func TestCurrentUser(t *testing.T) {
	f := repository.NewMemoryFactory()
	svc := NewService(f)
	owner := registerAlpha(t, svc)

	user, err := svc.CurrentUser(ctxFor(owner.User))
	require.NoError(t, err)
	assert.Equal(t, owner.User.ID, user.ID)

	_, err = svc.CurrentUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
