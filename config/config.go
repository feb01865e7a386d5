// Package config loads runtime settings from defaults, an optional .env file,
// and environment variables, in that order.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting for the plant catalog server.
type Config struct {
	Env  string
	Addr string

	// DBDriver selects the gorm driver: "sqlite" or "postgres".
	DBDriver    string
	DatabaseDSN string

	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	SessionTTL time.Duration
}

// LoadDefaults populates Config with development defaults. The Google client
// credentials have no usable default and must come from the environment.
func (c *Config) LoadDefaults() {
	c.Env = "dev"
	c.Addr = ":8000"
	c.DBDriver = "sqlite"
	c.DatabaseDSN = "file:plantcatalog.db?_foreign_keys=on"
	c.OAuthRedirectURL = "postmessage"
	c.SessionTTL = 18 * time.Hour
}

// Load builds a Config by applying defaults, then overlaying a .env file if
// one exists, then environment variables.
func Load() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()

	// A missing .env file is not an error: production sets real env vars.
	_ = godotenv.Load()

	overlayString(&cfg.Env, "ENV")
	overlayString(&cfg.Addr, "ADDR")
	overlayString(&cfg.DBDriver, "DB_DRIVER")
	overlayString(&cfg.DatabaseDSN, "DATABASE_DSN")
	overlayString(&cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	overlayString(&cfg.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	overlayString(&cfg.OAuthRedirectURL, "OAUTH_REDIRECT_URL")
	overlayDuration(&cfg.SessionTTL, "SESSION_TTL")

	return cfg
}

func overlayString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
