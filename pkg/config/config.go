// Package config provides environment-based configuration for the grid explorer.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the explorer server and CLI.
type Config struct {
	// Registry configuration
	Registry RegistryConfig

	// Server configuration
	APIHost string
	APIPort int

	// PollInterval is how often the registry is pulled.
	PollInterval time.Duration

	// RefreshTimeout bounds one full registry pull across all pages.
	RefreshTimeout time.Duration

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration

	// Logging
	LogLevel string
	LogJSON  bool

	// RangesFile optionally points at a YAML file overriding the
	// per-resource selector ranges.
	RangesFile string

	// Ranges are the resource selector defaults handed to consumers.
	Ranges Ranges
}

// RegistryConfig holds the remote node registry settings.
type RegistryConfig struct {
	URL      string
	Timeout  time.Duration
	PageSize int
}

// Load reads configuration from environment variables and the optional
// ranges file, then validates it.
func Load() (*Config, error) {
	cfg := LoadWithDefaults()

	if cfg.RangesFile != "" {
		ranges, err := LoadRanges(cfg.RangesFile)
		if err != nil {
			return nil, err
		}
		cfg.Ranges = ranges
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Registry.URL == "" {
		return fmt.Errorf("REGISTRY_URL is required")
	}
	if c.Registry.PageSize <= 0 {
		return fmt.Errorf("REGISTRY_PAGE_SIZE must be positive, got %d", c.Registry.PageSize)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if err := c.Ranges.Validate(); err != nil {
		return fmt.Errorf("invalid resource ranges: %w", err)
	}
	return nil
}

// LoadWithDefaults loads configuration with defaults for development.
// It does not validate required fields and ignores RANGES_FILE, useful for testing.
func LoadWithDefaults() *Config {
	return &Config{
		Registry: RegistryConfig{
			URL:      getEnv("REGISTRY_URL", "https://explorer.grid.tf/explorer"),
			Timeout:  getDurationEnv("REGISTRY_TIMEOUT", 30*time.Second),
			PageSize: getIntEnv("REGISTRY_PAGE_SIZE", 100),
		},
		APIHost:         getEnv("API_HOST", "0.0.0.0"),
		APIPort:         getIntEnv("API_PORT", 8080),
		PollInterval:    getDurationEnv("POLL_INTERVAL", time.Minute),
		RefreshTimeout:  getDurationEnv("REFRESH_TIMEOUT", 5*time.Minute),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogJSON:         getBoolEnv("LOG_JSON", true),
		RangesFile:      getEnv("RANGES_FILE", ""),
		Ranges:          DefaultRanges(),
	}
}

// ErrMissingRange is returned when a resource has no selector defaults.
var ErrMissingRange = errors.New("missing resource range")

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
