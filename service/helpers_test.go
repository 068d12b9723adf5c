package service

import (
	"io"
	"testing"
	"time"

	"gamecatalog/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-bytes"

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestTokens(t *testing.T) TokenService {
	t.Helper()
	tokens, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	return tokens
}

func userPrincipal(u *models.User) *models.Principal {
	return &models.Principal{ID: u.ID, Role: u.Role}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
