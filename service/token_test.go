package service

import (
	"testing"
	"time"

	"gamecatalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := newTestTokens(t)

	token, err := tokens.Issue(&models.User{ID: 7, Role: models.RoleAdmin})
	require.NoError(t, err)

	p, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), p.ID)
	assert.True(t, p.IsAdmin())
}

func TestTokenRejections(t *testing.T) {
	tokens := newTestTokens(t)

	_, err := tokens.Verify("")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = tokens.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewTokenService("another-secret-of-enough-size", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue(&models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)
	_, err = tokens.Verify(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := &tokenService{secret: []byte(testSecret), expiry: time.Hour, now: func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}}
	old, err := expired.Issue(&models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)
	_, err = tokens.Verify(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	assert.Error(t, err)
}
