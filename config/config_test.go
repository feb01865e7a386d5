package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "dev", c.Env)
	assert.Equal(t, ":8000", c.Addr)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "file:plantcatalog.db?_foreign_keys=on", c.DatabaseDSN)
	assert.Equal(t, "postmessage", c.OAuthRedirectURL)
	assert.Equal(t, 18*time.Hour, c.SessionTTL)
}

func TestLoadOverlaysEnvironment(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/catalog")
	t.Setenv("GOOGLE_CLIENT_ID", "client-123")
	t.Setenv("SESSION_TTL", "2h")

	c := Load()
	require.NotNil(t, c)

	assert.Equal(t, "prod", c.Env)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, "postgres://u:p@localhost:5432/catalog", c.DatabaseDSN)
	assert.Equal(t, "client-123", c.GoogleClientID)
	assert.Equal(t, 2*time.Hour, c.SessionTTL)

	// Untouched settings keep their defaults.
	assert.Equal(t, ":8000", c.Addr)
}

func TestLoadIgnoresInvalidDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")

	c := Load()
	assert.Equal(t, 18*time.Hour, c.SessionTTL)
}
