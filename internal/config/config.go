// Package config loads the server's YAML configuration file and applies
// environment-variable overrides, following the same Load/Save/
// applyEnvOverrides shape used throughout this codebase's ambient stack.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server's runtime configuration.
type Config struct {
	// DebugMode gates all category file logging in internal/logging.
	DebugMode bool `yaml:"debug_mode"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`

	// LogJSON selects structured JSON log lines over the plain text format.
	LogJSON bool `yaml:"log_json"`

	// LogCategories enables or disables individual logging categories;
	// a category absent from the map defaults to enabled.
	LogCategories map[string]bool `yaml:"log_categories"`

	Cache  CacheConfig  `yaml:"cache"`
	Worker WorkerConfig `yaml:"worker"`
}

// CacheConfig holds settings for the in-memory generated-doc cache (C7).
// They are loaded and validated here only: docstate.New does not read them
// and always sizes its LRU with its own fixed capacity of 50.
type CacheConfig struct {
	// Capacity is the configured maximum number of generated documents.
	Capacity int `yaml:"capacity"`
}

// WorkerConfig holds settings for the background pre-generation worker
// (C7). The worker does not read them: it uses its own fixed 5-second
// detection tick, and SpawnBackgroundWorker restarts Run without any delay.
type WorkerConfig struct {
	// TickInterval is the configured workspace scan interval.
	TickInterval string `yaml:"tick_interval"`
	// RespawnBackoff is the configured delay before a worker restart.
	RespawnBackoff string `yaml:"respawn_backoff"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		DebugMode: false,
		LogLevel:  "info",
		LogJSON:   false,
		LogCategories: map[string]bool{
			"boot":      true,
			"workspace": true,
			"cache":     true,
			"search":    true,
			"worker":    true,
			"tools":     true,
			"mcp":       true,
		},
		Cache: CacheConfig{
			Capacity: 50,
		},
		Worker: WorkerConfig{
			TickInterval:   "5s",
			RespawnBackoff: "5s",
		},
	}
}

// Load reads configuration from a YAML file at path, falling back to
// DefaultConfig when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration to a YAML file at path, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides on top of
// whatever was loaded from the file or the defaults.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("RDMCP_DEBUG"); v != "" {
		c.DebugMode = v == "1" || v == "true"
	}
	if v := os.Getenv("RDMCP_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("RDMCP_CACHE_CAPACITY"); v != "" {
		var capacity int
		if _, err := fmt.Sscanf(v, "%d", &capacity); err == nil && capacity > 0 {
			c.Cache.Capacity = capacity
		}
	}
}

// TickInterval returns Worker.TickInterval parsed as a duration, defaulting
// to 5 seconds if unset or unparseable.
func (c *Config) TickInterval() time.Duration {
	d, err := time.ParseDuration(c.Worker.TickInterval)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// RespawnBackoff returns Worker.RespawnBackoff parsed as a duration,
// defaulting to 5 seconds if unset or unparseable.
func (c *Config) RespawnBackoff() time.Duration {
	d, err := time.ParseDuration(c.Worker.RespawnBackoff)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache capacity must be positive, got %d", c.Cache.Capacity)
	}
	return nil
}
