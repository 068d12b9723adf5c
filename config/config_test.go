package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg := Load("testdata/does-not-exist.env")

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_EXPIRY", "15m")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("LOGIN_RATE_LIMIT", "not-a-number")

	cfg := Load("testdata/does-not-exist.env")

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiry)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 20, cfg.LoginRateLimit)
}
