package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/TheMichaelB/pincheck/internal/models"
)

// EnvPrefix prefixes every environment override, e.g. PINCHECK_LOG_LEVEL.
const EnvPrefix = "PINCHECK"

// Loader handles configuration loading from multiple sources.
type Loader struct {
	configPath string
	v          *viper.Viper
}

// NewLoader creates a config loader. An empty path searches the default
// locations.
func NewLoader(configPath string) *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{
		configPath: configPath,
		v:          v,
	}
}

// Load reads configuration from defaults, file and environment, in that
// order of precedence from lowest to highest.
func (l *Loader) Load() (*Config, error) {
	setDefaults(l.v, DefaultConfig())

	if l.configPath != "" {
		l.v.SetConfigFile(l.configPath)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	} else {
		l.v.SetConfigName("pincheck")
		for _, dir := range l.defaultPaths() {
			l.v.AddConfigPath(dir)
		}
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("load config file %s: %w", l.v.ConfigFileUsed(), err)
			}
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidConfig, err)
	}

	return cfg, nil
}

// ConfigFileUsed returns the file the last Load read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// defaultPaths returns default config file locations.
func (l *Loader) defaultPaths() []string {
	paths := []string{"."}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "pincheck"))
	}

	return paths
}

// setDefaults registers every key so that environment overrides are seen
// by Unmarshal even when no config file mentions them.
func setDefaults(v *viper.Viper, cfg *Config) {
	defaults := map[string]any{
		"api.base_url":    cfg.API.BaseURL,
		"api.timeout":     cfg.API.Timeout,
		"api.max_retries": cfg.API.MaxRetries,
		"api.retry_delay": cfg.API.RetryDelay,
		"api.user_agent":  cfg.API.UserAgent,
		"api.origin":      cfg.API.Origin,
		"api.referer":     cfg.API.Referer,

		"crypto.passphrase":      cfg.Crypto.Passphrase,
		"crypto.passphrase_file": cfg.Crypto.PassphraseFile,
		"crypto.key_size_bits":   cfg.Crypto.KeySizeBits,
		"crypto.iterations":      cfg.Crypto.Iterations,
		"crypto.max_iterations":  cfg.Crypto.MaxIterations,

		"lookup.concurrency": cfg.Lookup.Concurrency,
		"lookup.rate_limit":  cfg.Lookup.RateLimit,
		"lookup.burst":       cfg.Lookup.Burst,

		"history.enabled": cfg.History.Enabled,
		"history.driver":  cfg.History.Driver,
		"history.path":    cfg.History.Path,
		"history.limit":   cfg.History.Limit,

		"log.level":  cfg.Log.Level,
		"log.format": cfg.Log.Format,
		"log.file":   cfg.Log.File,
		"log.color":  cfg.Log.Color,

		"metrics.enabled":   cfg.Metrics.Enabled,
		"metrics.namespace": cfg.Metrics.Namespace,
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// LoadDotEnv searches for a .env file from the working directory up to the
// filesystem root and loads the first one found. Variables already set in
// the environment win.
func LoadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}

// SaveExample writes an example config file in YAML.
func SaveExample(path string) error {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.Set("crypto.passphrase", "change-me")

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}
