// Package config loads service configuration from an optional YAML file with
// environment-variable overrides. Environment wins over file, file wins over
// defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string `yaml:"port"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// SpoolDir is where uploads are materialized (empty means os.TempDir).
	SpoolDir string `yaml:"spool_dir"`

	// AuditDB is the SQLite file recording extraction outcomes.
	AuditDB string `yaml:"audit_db"`

	// MaxFileSize is the largest upload accepted, in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`

	// MaxConcurrent caps in-flight extractions on the HTTP path.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:          "8106",
		LogLevel:      "info",
		AuditDB:       "db/extractions.db",
		MaxFileSize:   100 * 1024 * 1024,
		MaxConcurrent: 8,
	}
}

// Load builds the effective configuration. path may be empty; a missing file
// at an explicitly given path is an error, defaults otherwise.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DOCUTILS_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("DOCUTILS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DOCUTILS_SPOOL_DIR"); v != "" {
		c.SpoolDir = v
	}
	if v := os.Getenv("DOCUTILS_AUDIT_DB"); v != "" {
		c.AuditDB = v
	}
	if v := os.Getenv("DOCUTILS_MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxFileSize = n
		}
	}
	if v := os.Getenv("DOCUTILS_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxConcurrent = n
		}
	}
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max_concurrent must be positive, got %d", c.MaxConcurrent)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
