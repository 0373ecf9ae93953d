// Package config loads server configuration from the environment.
// A .env file in the working directory is honored when present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP server
	Port        string
	CORSOrigins []string

	// Database
	DBPath string

	// Sessions
	TokenTTL time.Duration
}

// Load reads configuration from the environment, after loading an
// optional .env file. Missing keys fall back to dev defaults.
func Load() *Config {
	// Best effort; a missing .env is not an error.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080")),
		DBPath:      getEnv("DB_PATH", "worklog.db"),
		TokenTTL:    getDurationEnv("TOKEN_TTL", 30*24*time.Hour),
	}
}

// Validate checks the configuration and returns an error if invalid.
// It is side-effect free; see EnsureDataDir for filesystem setup.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	}

	if len(c.CORSOrigins) == 0 {
		errs = append(errs, "at least one CORS origin is required")
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, "invalid TOKEN_TTL: must be a positive duration (e.g. 720h)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// EnsureDataDir creates the database file's directory when missing.
// Kept out of Validate so validation never mutates the filesystem.
func (c *Config) EnsureDataDir() error {
	if c.DBPath == "" || c.DBPath == ":memory:" {
		return nil
	}
	dir := filepath.Dir(c.DBPath)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create database directory '%s': %w", dir, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv parses a duration key. An unparseable value maps to
// zero so Validate reports it instead of silently using the default.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
