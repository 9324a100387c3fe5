package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Session flag backends.
const (
	SessionBackendStore   = "store"
	SessionBackendKeyring = "keyring"
)

// APIConfig holds settings for the StackIt HTTP API.
type APIConfig struct {
	// BaseURL is the root URL that /api/... paths are resolved against.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP round trip.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// RetryMaxElapsedSec bounds the total time spent retrying a
	// notification fetch.
	RetryMaxElapsedSec int `mapstructure:"retry_max_elapsed_sec" yaml:"retry_max_elapsed_sec"`

	// BreakerMaxFailures is the number of consecutive failures that opens
	// the circuit breaker.
	BreakerMaxFailures int `mapstructure:"breaker_max_failures" yaml:"breaker_max_failures"`

	// BreakerTimeoutSec is how long the breaker stays open.
	BreakerTimeoutSec int `mapstructure:"breaker_timeout_sec" yaml:"breaker_timeout_sec"`
}

// SessionConfig controls where the session flag lives and how often it is
// re-read.
type SessionConfig struct {
	Backend        string `mapstructure:"backend" yaml:"backend"`
	PollIntervalMs int    `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	KeyringDir     string `mapstructure:"keyring_dir" yaml:"keyring_dir"`
}

// StoreConfig holds the local SQLite database location.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// PollInterval returns the session flag poll interval.
func (c SessionConfig) PollInterval() time.Duration {
	if c.PollIntervalMs <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Timeout returns the HTTP client timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// RetryMaxElapsed returns the notification fetch retry budget.
func (c APIConfig) RetryMaxElapsed() time.Duration {
	return time.Duration(c.RetryMaxElapsedSec) * time.Second
}

// ConfigDir returns ~/.config/stackit, falling back to the working
// directory when the home directory is unknown.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "stackit")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/stackit/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := ConfigDir()
	return &AppConfig{
		API: APIConfig{
			BaseURL:            "http://localhost:3000",
			TimeoutSec:         15,
			RetryMaxElapsedSec: 10,
			BreakerMaxFailures: 5,
			BreakerTimeoutSec:  30,
		},
		Session: SessionConfig{
			Backend:        SessionBackendStore,
			PollIntervalMs: 300,
			KeyringDir:     filepath.Join(dir, "credentials"),
		},
		Store: StoreConfig{
			Path: filepath.Join(dir, "stackit.db"),
		},
		Log: LogConfig{
			File:  filepath.Join(dir, "stackit.log"),
			Level: "info",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// STACKIT_* environment variables override file values. If the file does
// not exist, defaults (plus environment overrides) are returned.
func LoadConfig(path string) (*AppConfig, error) {
	def := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("STACKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout_sec", def.API.TimeoutSec)
	v.SetDefault("api.retry_max_elapsed_sec", def.API.RetryMaxElapsedSec)
	v.SetDefault("api.breaker_max_failures", def.API.BreakerMaxFailures)
	v.SetDefault("api.breaker_timeout_sec", def.API.BreakerTimeoutSec)
	v.SetDefault("session.backend", def.Session.Backend)
	v.SetDefault("session.poll_interval_ms", def.Session.PollIntervalMs)
	v.SetDefault("session.keyring_dir", def.Session.KeyringDir)
	v.SetDefault("store.path", def.Store.Path)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.json", def.Log.JSON)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	switch cfg.Session.Backend {
	case SessionBackendStore, SessionBackendKeyring:
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("session", cfg.Session)
	v.Set("store", cfg.Store)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
