package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/TheMichaelB/pincheck/internal/crypto"
)

// Config holds all application configuration.
type Config struct {
	// Lookup endpoint
	API APIConfig `json:"api" mapstructure:"api"`

	// Envelope parameters
	Crypto CryptoConfig `json:"crypto" mapstructure:"crypto"`

	// Batch behavior
	Lookup LookupConfig `json:"lookup" mapstructure:"lookup"`

	// Lookup history
	History HistoryConfig `json:"history" mapstructure:"history"`

	// Logging
	Log LogConfig `json:"log" mapstructure:"log"`

	// Metrics
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`
}

// APIConfig for server communication.
type APIConfig struct {
	BaseURL    string        `json:"base_url" mapstructure:"base_url"`
	Timeout    time.Duration `json:"timeout" mapstructure:"timeout"`
	MaxRetries int           `json:"max_retries" mapstructure:"max_retries"` // 0 disables retries
	RetryDelay time.Duration `json:"retry_delay" mapstructure:"retry_delay"`
	UserAgent  string        `json:"user_agent" mapstructure:"user_agent"`
	Origin     string        `json:"origin" mapstructure:"origin"`
	Referer    string        `json:"referer" mapstructure:"referer"`
}

// CryptoConfig for envelope sealing.
type CryptoConfig struct {
	// Shared with the lookup service out of band; never sent on the wire.
	Passphrase     string `json:"-" mapstructure:"passphrase"`
	PassphraseFile string `json:"passphrase_file,omitempty" mapstructure:"passphrase_file"`
	KeySizeBits    int    `json:"key_size_bits" mapstructure:"key_size_bits"`
	Iterations     int    `json:"iterations" mapstructure:"iterations"`
	MaxIterations  int    `json:"max_iterations" mapstructure:"max_iterations"` // accepted when opening
}

// LookupConfig for batch checks.
type LookupConfig struct {
	Concurrency int     `json:"concurrency" mapstructure:"concurrency"`
	RateLimit   float64 `json:"rate_limit" mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	Burst       int     `json:"burst" mapstructure:"burst"`
}

// HistoryConfig for the local lookup history.
type HistoryConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Driver  string `json:"driver" mapstructure:"driver"` // sqlite, json
	Path    string `json:"path" mapstructure:"path"`
	Limit   int    `json:"limit" mapstructure:"limit"` // entries listed by default
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `json:"format" mapstructure:"format"` // text, json
	File   string `json:"file" mapstructure:"file"`     // Log file path (empty = stderr)
	Color  bool   `json:"color" mapstructure:"color"`   // Enable colored output
}

// MetricsConfig for the in-process metrics provider.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Namespace string `json:"namespace" mapstructure:"namespace"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	dataDir := ".pincheck"

	return &Config{
		API: APIConfig{
			BaseURL:    "https://stage-mdm.vijaysales.com/web/api/oms-api/check-pincode/v1",
			Timeout:    30 * time.Second,
			MaxRetries: 0,
			RetryDelay: time.Second,
			UserAgent:  "pincheck/1.0",
			Origin:     "https://stage.vijaysales.com",
			Referer:    "https://stage.vijaysales.com/",
		},
		Crypto: CryptoConfig{
			KeySizeBits:   crypto.DefaultKeySizeBits,
			Iterations:    crypto.DefaultIterations,
			MaxIterations: 1_000_000,
		},
		Lookup: LookupConfig{
			Concurrency: 4,
			RateLimit:   5,
			Burst:       1,
		},
		History: HistoryConfig{
			Enabled: true,
			Driver:  "sqlite",
			Path:    filepath.Join(dataDir, "history.db"),
			Limit:   20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   "",
			Color:  true,
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "pincheck",
		},
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}

	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}

	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must not be negative")
	}

	if err := crypto.ValidateKeySize(c.Crypto.KeySizeBits); err != nil {
		return fmt.Errorf("crypto.key_size_bits: %w", err)
	}

	if c.Crypto.Iterations < 1 {
		return errors.New("crypto.iterations must be positive")
	}

	if c.Crypto.MaxIterations < c.Crypto.Iterations {
		return errors.New("crypto.max_iterations must not be below crypto.iterations")
	}

	if c.Lookup.Concurrency <= 0 {
		return errors.New("lookup.concurrency must be positive")
	}

	if c.Lookup.RateLimit < 0 {
		return errors.New("lookup.rate_limit must not be negative")
	}

	if c.History.Enabled {
		validDrivers := map[string]bool{"sqlite": true, "json": true}
		if !validDrivers[c.History.Driver] {
			return fmt.Errorf("invalid history driver: %s", c.History.Driver)
		}
		if c.History.Path == "" {
			return errors.New("history.path is required")
		}
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	var dirs []string

	if c.History.Enabled {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}

	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
