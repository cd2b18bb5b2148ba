// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// defaultMaxRequestBodySize caps stream-request bodies (4MB: an initial
// document snapshot can be large, chat messages are not).
const defaultMaxRequestBodySize = 4 << 20

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	// DBPath is the SQLite file for session and mutation-log records.
	// Empty disables persistence and the server runs on an in-memory store.
	DBPath string
	// SearchBackendURL is the base URL of the search/image backend.
	// Empty disables the web_search and image_search tools.
	SearchBackendURL string
	SessionTimeout   time.Duration
	// ToolTimeout bounds one backend call inside the search adapters,
	// independently of the session timeout.
	ToolTimeout        time.Duration
	KeepaliveInterval  time.Duration
	MaxRequestBodySize int64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		FrontendURL:        getEnv("FRONTEND_URL", ""),
		DBPath:             getEnv("DB_PATH", "./data/draftwire.db"),
		SearchBackendURL:   getEnv("SEARCH_BACKEND_URL", ""),
		SessionTimeout:     getEnvDuration("SESSION_TIMEOUT", 5*time.Minute),
		ToolTimeout:        getEnvDuration("TOOL_TIMEOUT", 15*time.Second),
		KeepaliveInterval:  getEnvDuration("KEEPALIVE_INTERVAL", 10*time.Second),
		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", defaultMaxRequestBodySize)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are usable.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be > 0")
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("TOOL_TIMEOUT must be > 0")
	}
	if c.KeepaliveInterval <= 0 {
		return fmt.Errorf("KEEPALIVE_INTERVAL must be > 0")
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running against a local frontend.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
