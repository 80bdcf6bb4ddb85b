package service

import (
	"context"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"library-api/internal/domains/user"
	"library-api/internal/domains/user/repository"
	"library-api/internal/testutil"
	"library-api/pkg/jwt"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

type fixture struct {
	svc    user.Service
	users  *testutil.MemoryUsers
	tokens user.TokenStore
	jwt    *jwt.Manager
}

func newFixture() *fixture {
	users := testutil.NewMemoryUsers()
	tokens := repository.NewTokenStore(testutil.NewMemoryCache())
	manager := jwt.NewManager("test-secret", time.Hour)
	return &fixture{
		svc:    NewUserService(users, tokens, manager),
		users:  users,
		tokens: tokens,
		jwt:    manager,
	}
}

func (f *fixture) register(t *testing.T, email string) *user.TokenResponse {
	t.Helper()
	res, err := f.svc.Register(context.Background(), user.RegisterRequest{
		Name:                 "Reader",
		Email:                email,
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	})
	require.NoError(t, err)
	return res
}

func TestRegisterIssuesToken(t *testing.T) {
	f := newFixture()

	res := f.register(t, "Reader@Example.com")

	assert.Equal(t, "bearer", res.TokenType)
	require.NotNil(t, res.User)
	assert.Equal(t, "reader@example.com", res.User.Email)

	claims, err := f.jwt.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.String(), claims.UserID)

	stored, err := f.users.FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture()
	f.register(t, "dup@example.com")

	_, err := f.svc.Register(context.Background(), user.RegisterRequest{
		Name: "Other", Email: "DUP@example.com", Password: "secret123", PasswordConfirmation: "secret123",
	})
	assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
}

func TestRegisterPasswordConfirmationMismatch(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Register(context.Background(), user.RegisterRequest{
		Name: "R", Email: "r@example.com", Password: "secret123", PasswordConfirmation: "different",
	})
	require.Error(t, err)
	errs, ok := err.(validation.Errors)
	require.True(t, ok)
	assert.Contains(t, errs, "password_confirmation")
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.register(t, "login@example.com")

	res, err := f.svc.Login(ctx, user.LoginRequest{Email: "login@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = f.svc.Login(ctx, user.LoginRequest{Email: "login@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, user.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	res := f.register(t, "out@example.com")

	claims, err := f.jwt.ValidateToken(res.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, claims))

	revoked, err := f.tokens.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRefreshRotatesToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	res := f.register(t, "refresh@example.com")

	oldClaims, err := f.jwt.ValidateToken(res.Token)
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, oldClaims)
	require.NoError(t, err)
	assert.Nil(t, refreshed.User)

	newClaims, err := f.jwt.ValidateToken(refreshed.Token)
	require.NoError(t, err)
	assert.NotEqual(t, oldClaims.ID, newClaims.ID)

	revoked, err := f.tokens.IsRevoked(ctx, oldClaims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = f.tokens.IsRevoked(ctx, newClaims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.register(t, "a@example.com")
	f.register(t, "b@example.com")

	name := "Renamed"
	updated, err := f.svc.Update(ctx, a.User.ID, user.UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	taken := "b@example.com"
	_, err = f.svc.Update(ctx, a.User.ID, user.UpdateUserRequest{Email: &taken})
	assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)

	_, err = f.svc.Update(ctx, a.User.ID, user.UpdateUserRequest{})
	assert.ErrorIs(t, err, user.ErrNoFieldsToUpdate)

	password := "newsecret"
	_, err = f.svc.Update(ctx, a.User.ID, user.UpdateUserRequest{Password: &password})
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, user.LoginRequest{Email: "a@example.com", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestCreateListDeleteUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.svc.Create(ctx, user.CreateUserRequest{Name: "Admin", Email: "admin@example.com", Password: "secret123"})
	require.NoError(t, err)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	_, err = f.svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, created.ID), user.ErrUserNotFound)
}
