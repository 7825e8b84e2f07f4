package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultDatabasePath = "daypool.db"
	DefaultLogLevel     = "info"
	// DefaultRetrySpec schedules the rotation-init retry sweeper. Standard
	// cron syntax (robfig/cron); every minute is frequent enough because a
	// pending claim is tiny and idempotent.
	DefaultRetrySpec = "* * * * *"
)

// AppConfig holds all configuration for the daypool CLI and any process
// embedding the engine.
type AppConfig struct {
	DatabasePath    string // DAYPOOL_DB: SQLite database path
	PoolsDir        string // DAYPOOL_POOLS: content catalog directory
	DefaultTimezone string // DAYPOOL_TZ: fallback zone for new profiles, optional
	LogLevel        string // DAYPOOL_LOG_LEVEL: debug|info|warn|error
	RetrySpec       string // DAYPOOL_RETRY_SPEC: cron spec for the init retry sweeper
}

// Load reads configuration from environment variables and a .env file (if
// present). godotenv.Load will not override variables already set in the
// environment. Only DAYPOOL_POOLS is required; everything else has a
// default.
func Load() (*AppConfig, error) {
	// Errors are ignored if the .env file doesn't exist.
	_ = godotenv.Load()

	cfg := &AppConfig{
		DatabasePath:    getenvDefault("DAYPOOL_DB", DefaultDatabasePath),
		PoolsDir:        os.Getenv("DAYPOOL_POOLS"),
		DefaultTimezone: os.Getenv("DAYPOOL_TZ"),
		LogLevel:        strings.ToLower(getenvDefault("DAYPOOL_LOG_LEVEL", DefaultLogLevel)),
		RetrySpec:       getenvDefault("DAYPOOL_RETRY_SPEC", DefaultRetrySpec),
	}

	if cfg.PoolsDir == "" {
		return nil, fmt.Errorf("DAYPOOL_POOLS is not set")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid DAYPOOL_LOG_LEVEL %q (want debug|info|warn|error)", cfg.LogLevel)
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
