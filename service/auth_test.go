package service

import (
	"context"
	"testing"

	"gamecatalog/db/dbtest"
	"gamecatalog/models"
	"gamecatalog/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T) (AuthService, repository.UserRepository, TokenService) {
	t.Helper()
	users := repository.NewUserRepository(dbtest.New(t))
	tokens := newTestTokens(t)
	svc := NewAuthService(users, tokens, nil, quietLogger())
	svc.(*authService).bcryptCost = bcrypt.MinCost
	return svc, users, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth, users, tokens := newTestAuth(t)

	user, err := auth.Register(ctx, " alice ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.UserStatusActive, user.Status)
	assert.NotEqual(t, "secret", user.PasswordHash)

	_, err = auth.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrConflict)

	token, err := auth.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	p, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.ID)
	assert.Equal(t, models.RoleUser, p.Role)

	_, err = auth.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, users.UpdateStatus(ctx, user.ID, models.UserStatusBlocked))
	_, err = auth.Login(ctx, "alice", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCredentialsRequired(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuth(t)

	_, err := auth.Register(ctx, "", "secret")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = auth.Register(ctx, "bob", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = auth.Login(ctx, "  ", "secret")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	auth, users, _ := newTestAuth(t)

	created, err := auth.EnsureAdmin(ctx, "root", "rootpass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, created.Role)

	existing, err := auth.Register(ctx, "carol", "pw")
	require.NoError(t, err)
	promoted, err := auth.EnsureAdmin(ctx, "carol", "ignored")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, promoted.ID)

	stored, err := users.FindByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	_, err = auth.Login(ctx, "carol", "pw")
	assert.NoError(t, err)
}
