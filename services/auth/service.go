// Package auth covers login, store registration bootstrap and the
// invitation flow that brings new users into a store.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ss-lucnguyen/seller-inventory/shared/apperr"
	"github.com/ss-lucnguyen/seller-inventory/shared/middleware"
	"github.com/ss-lucnguyen/seller-inventory/shared/models"
	"github.com/ss-lucnguyen/seller-inventory/shared/repository"
	"github.com/ss-lucnguyen/seller-inventory/shared/tenancy"
)

const invitationTTL = 7 * 24 * time.Hour

// trialPeriod is the subscription runway granted to a new store
const trialPeriod = 30 * 24 * time.Hour

// Service implements authentication and onboarding operations
type Service struct {
	repo repository.Factory
}

// NewService creates an auth service
func NewService(repo repository.Factory) *Service {
	return &Service{repo: repo}
}

// LoginResult carries the issued token and the authenticated user
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterStoreInput carries the new-store bootstrap request
type RegisterStoreInput struct {
	StoreName string
	Slug      string
	Industry  *string
	Username  string
	Email     string
	Password  string
	FullName  string
}

// AcceptInvitationInput carries the invitation acceptance request
type AcceptInvitationInput struct {
	Token    string
	Username string
	Password string
	FullName string
}

// Login verifies credentials and issues a signed token. Failures are
// reported uniformly so the response never reveals which part was wrong.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	user, err := gw.Users().FindByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Persistence(err, "find user")
	}
	if user == nil || !user.IsActive {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	token, err := middleware.IssueToken(user)
	if err != nil {
		return nil, apperr.Persistence(err, "issue token")
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user logged in")
	return &LoginResult{Token: token, User: user}, nil
}

// RegisterStore bootstraps a new tenant: the store on a trial
// subscription plus its first manager, in one commit.
func (s *Service) RegisterStore(ctx context.Context, in RegisterStoreInput) (*LoginResult, error) {
	if in.StoreName == "" || in.Slug == "" || in.Username == "" || in.Email == "" {
		return nil, apperr.InvalidOperation("store name, slug, username and email are required")
	}
	if len(in.Password) < 8 {
		return nil, apperr.InvalidOperation("password must be at least 8 characters")
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	if existing, err := gw.Stores().FindBySlug(ctx, in.Slug); err != nil {
		return nil, apperr.Persistence(err, "find store")
	} else if existing != nil {
		return nil, apperr.InvalidOperation("store slug %q is taken", in.Slug)
	}
	if existing, err := gw.Users().FindByUsername(ctx, in.Username); err != nil {
		return nil, apperr.Persistence(err, "find user")
	} else if existing != nil {
		return nil, apperr.InvalidOperation("username %q is taken", in.Username)
	}
	if existing, err := gw.Users().FindByEmail(ctx, in.Email); err != nil {
		return nil, apperr.Persistence(err, "find user")
	} else if existing != nil {
		return nil, apperr.InvalidOperation("email %q is already registered", in.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Persistence(err, "hash password")
	}

	expires := time.Now().Add(trialPeriod)
	store := models.Store{
		Name:                  in.StoreName,
		Slug:                  in.Slug,
		Industry:              in.Industry,
		Currency:              "USD",
		IsActive:              true,
		SubscriptionStatus:    models.SubscriptionTrial,
		SubscriptionExpiresAt: &expires,
	}
	if err := gw.Stores().Add(ctx, &store); err != nil {
		return nil, apperr.Persistence(err, "add store")
	}

	owner := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Role:         models.RoleManager,
		IsActive:     true,
		StoreID:      &store.ID,
	}
	if err := gw.Users().Add(ctx, &owner); err != nil {
		return nil, apperr.Persistence(err, "add user")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit registration")
	}

	token, err := middleware.IssueToken(&owner)
	if err != nil {
		return nil, apperr.Persistence(err, "issue token")
	}

	logrus.WithFields(logrus.Fields{
		"store_id": store.ID,
		"slug":     store.Slug,
		"owner_id": owner.ID,
	}).Info("store registered")
	return &LoginResult{Token: token, User: &owner}, nil
}

// InviteUser creates a single-use invitation for an email to join the
// caller's store. At most one live invitation per email per store.
func (s *Service) InviteUser(ctx context.Context, email, role string) (*models.StoreInvitation, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if !t.Role.IsManager() && !t.IsSystemAdmin() {
		return nil, apperr.Forbidden("only managers can invite users")
	}
	if t.StoreID == nil {
		return nil, apperr.InvalidOperation("invitations require a store context")
	}
	if email == "" {
		return nil, apperr.InvalidOperation("email is required")
	}

	parsedRole, err := models.ParseUserRole(role)
	if err != nil {
		return nil, apperr.InvalidOperation("%v", err)
	}
	if parsedRole == models.RoleSystemAdmin {
		return nil, apperr.InvalidOperation("system admins cannot be invited to a store")
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	if existing, err := gw.Users().FindByEmail(ctx, email); err != nil {
		return nil, apperr.Persistence(err, "find user")
	} else if existing != nil {
		return nil, apperr.InvalidOperation("email %q is already registered", email)
	}
	if live, err := gw.Invitations().FindLive(ctx, *t.StoreID, email, time.Now()); err != nil {
		return nil, apperr.Persistence(err, "find invitation")
	} else if live != nil {
		return nil, apperr.InvalidOperation("a live invitation for %q already exists", email)
	}

	token, err := newInvitationToken()
	if err != nil {
		return nil, apperr.Persistence(err, "generate token")
	}

	inv := models.StoreInvitation{
		StoreID:         *t.StoreID,
		Email:           email,
		Role:            parsedRole,
		Token:           token,
		ExpiresAt:       time.Now().Add(invitationTTL),
		InvitedByUserID: t.UserID,
	}
	if err := gw.Invitations().Add(ctx, &inv); err != nil {
		return nil, apperr.Persistence(err, "add invitation")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit invitation")
	}

	logrus.WithFields(logrus.Fields{"store_id": inv.StoreID, "email": email, "role": parsedRole}).Info("user invited")
	return &inv, nil
}

// ListInvitations returns the invitations of the caller's store
func (s *Service) ListInvitations(ctx context.Context) ([]models.StoreInvitation, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}
	if !t.Role.IsManager() && !t.IsSystemAdmin() {
		return nil, apperr.Forbidden("only managers can list invitations")
	}
	if t.StoreID == nil {
		return nil, apperr.InvalidOperation("invitations require a store context")
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	list, err := gw.Invitations().ListByStore(ctx, *t.StoreID)
	if err != nil {
		return nil, apperr.Persistence(err, "list invitations")
	}
	return list, nil
}

// AcceptInvitation consumes a token and creates the invited user with
// the role and store fixed at invitation time. The token is single use.
func (s *Service) AcceptInvitation(ctx context.Context, in AcceptInvitationInput) (*LoginResult, error) {
	if in.Token == "" || in.Username == "" {
		return nil, apperr.InvalidOperation("token and username are required")
	}
	if len(in.Password) < 8 {
		return nil, apperr.InvalidOperation("password must be at least 8 characters")
	}

	gw, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "begin transaction")
	}
	defer gw.Rollback()

	inv, err := gw.Invitations().FindByToken(ctx, in.Token)
	if err != nil {
		return nil, apperr.Persistence(err, "find invitation")
	}
	if inv == nil {
		return nil, apperr.NotFound("invitation not found")
	}
	if inv.IsUsed {
		return nil, apperr.InvalidOperation("invitation has already been used")
	}
	if inv.IsExpired() {
		return nil, apperr.InvalidOperation("invitation has expired")
	}

	if existing, err := gw.Users().FindByUsername(ctx, in.Username); err != nil {
		return nil, apperr.Persistence(err, "find user")
	} else if existing != nil {
		return nil, apperr.InvalidOperation("username %q is taken", in.Username)
	}
	if existing, err := gw.Users().FindByEmail(ctx, inv.Email); err != nil {
		return nil, apperr.Persistence(err, "find user")
	} else if existing != nil {
		return nil, apperr.InvalidOperation("email %q is already registered", inv.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Persistence(err, "hash password")
	}

	user := models.User{
		Username:     in.Username,
		Email:        inv.Email,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Role:         inv.Role,
		IsActive:     true,
		StoreID:      &inv.StoreID,
	}
	if err := gw.Users().Add(ctx, &user); err != nil {
		return nil, apperr.Persistence(err, "add user")
	}

	inv.IsUsed = true
	if err := gw.Invitations().Update(ctx, inv); err != nil {
		return nil, apperr.Persistence(err, "update invitation")
	}
	if err := gw.Commit(); err != nil {
		return nil, apperr.Persistence(err, "commit acceptance")
	}

	token, err := middleware.IssueToken(&user)
	if err != nil {
		return nil, apperr.Persistence(err, "issue token")
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "store_id": inv.StoreID}).Info("invitation accepted")
	return &LoginResult{Token: token, User: &user}, nil
}

// CurrentUser returns the authenticated user's profile
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
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
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

func newInvitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
