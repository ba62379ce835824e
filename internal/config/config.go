// Package config provides configuration loading for everaidd.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/everaidhq/everaid/internal/logging"
)

// ErrInvalidConfig indicates a configuration value failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full daemon configuration.
type Config struct {
	Server ServerConfig   `koanf:"server"`
	NATS   NATSConfig     `koanf:"nats"`
	AI     AIConfig       `koanf:"ai"`
	Cache  CacheConfig    `koanf:"cache"`
	Log    logging.Config `koanf:"log"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	// AnonKey is the shared key clients present as both bearer token and
	// apikey header on pack routes. Empty disables auth (local dev).
	AnonKey Secret `koanf:"anon_key"`
}

// NATSConfig configures the JetStream key-value backend.
type NATSConfig struct {
	URL    string `koanf:"url"`
	Bucket string `koanf:"bucket"`
}

// AIConfig configures the upstream completion endpoint.
type AIConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	APIKey  Secret `koanf:"api_key"`
}

// CacheConfig configures cache behavior advertised to clients.
type CacheConfig struct {
	TTL Duration `koanf:"ttl"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8787
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://127.0.0.1:4222"
	}
	if cfg.NATS.Bucket == "" {
		cfg.NATS.Bucket = "everaid_packs"
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = Duration(5 * time.Minute)
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("%w: nats url required", ErrInvalidConfig)
	}
	if c.NATS.Bucket == "" {
		return fmt.Errorf("%w: nats bucket required", ErrInvalidConfig)
	}
	if c.AI.BaseURL == "" {
		return fmt.Errorf("%w: ai base url required", ErrInvalidConfig)
	}
	if c.Cache.TTL.Duration() < time.Second {
		return fmt.Errorf("%w: cache ttl below 1s", ErrInvalidConfig)
	}
	return nil
}
