// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ericfisherdev/wifishare/internal/application"
)

// StoreKind selects the preference store backend.
type StoreKind string

const (
	StoreSQLite  StoreKind = "sqlite"
	StoreKeyring StoreKind = "keyring"
	StoreMemory  StoreKind = "memory"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr     string        `env:"WIFISHARE_LISTEN_ADDR" envDefault:"127.0.0.1:8080"`
	DBPath         string        `env:"WIFISHARE_DB_PATH" envDefault:"wifishare.db"`
	Store          StoreKind     `env:"WIFISHARE_STORE" envDefault:"sqlite"`
	KeyringService string        `env:"WIFISHARE_KEYRING_SERVICE" envDefault:"wifishare"`
	OnCorrupt      string        `env:"WIFISHARE_ON_CORRUPT" envDefault:"fail"`
	StoreTimeout   time.Duration `env:"WIFISHARE_STORE_TIMEOUT" envDefault:"5s"`
	LogLevel       string        `env:"WIFISHARE_LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"WIFISHARE_LOG_FORMAT" envDefault:"text"`
	SecretKeyHex   string        `env:"WIFISHARE_SECRET_KEY"`

	// Derived during Load; untagged fields are skipped by env.Parse.
	SecretKey     []byte
	CorruptPolicy application.CorruptPolicy
	Level         slog.Level
}

// HasSecretKey returns true when stored values should be sealed at rest.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional. WIFISHARE_SECRET_KEY, when set, must be 64 hex
// characters (32 bytes); without it the sqlite store keeps values in plaintext.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.Store {
	case StoreSQLite, StoreKeyring, StoreMemory:
	default:
		return nil, fmt.Errorf("WIFISHARE_STORE has invalid value %q: must be sqlite, keyring or memory", cfg.Store)
	}

	if cfg.SecretKeyHex != "" {
		key, err := hex.DecodeString(cfg.SecretKeyHex)
		if err != nil {
			return nil, fmt.Errorf("WIFISHARE_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("WIFISHARE_SECRET_KEY must be 32 bytes (64 hex chars), got %d bytes", len(key))
		}
		cfg.SecretKey = key
	}

	policy, err := application.ParseCorruptPolicy(cfg.OnCorrupt)
	if err != nil {
		return nil, fmt.Errorf("WIFISHARE_ON_CORRUPT: %w", err)
	}
	cfg.CorruptPolicy = policy

	if cfg.StoreTimeout <= 0 {
		return nil, fmt.Errorf("WIFISHARE_STORE_TIMEOUT must be positive, got %s", cfg.StoreTimeout)
	}

	if err := cfg.Level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("WIFISHARE_LOG_LEVEL has invalid level %q: %w", cfg.LogLevel, err)
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("WIFISHARE_LOG_FORMAT has invalid value %q: must be text or json", cfg.LogFormat)
	}

	return &cfg, nil
}
