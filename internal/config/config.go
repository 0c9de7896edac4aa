package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the server configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Draft  DraftConfig  `toml:"draft"`
	Store  StoreConfig  `toml:"store"`
	Log    LogConfig    `toml:"log"`
	WS     WSConfig     `toml:"ws"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr" env:"TEAMDRAFT_ADDR"`
	AllowedOrigins []string `toml:"allowed_origins" env:"TEAMDRAFT_ALLOWED_ORIGINS" envSeparator:","`
	MaxUploadBytes int64    `toml:"max_upload_bytes" env:"TEAMDRAFT_MAX_UPLOAD_BYTES"`
}

type DraftConfig struct {
	SpinDuration string `toml:"spin_duration" env:"TEAMDRAFT_SPIN_DURATION"` // e.g. "800ms"; "0s" waits for the client
	Seed         int64  `toml:"seed" env:"TEAMDRAFT_SEED"`                   // 0 seeds from the clock
}

type StoreConfig struct {
	Driver        string `toml:"driver" env:"TEAMDRAFT_STORE"` // memory | redis | postgres
	RedisAddr     string `toml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `toml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db" env:"REDIS_DB"`
	TTL           string `toml:"ttl" env:"TEAMDRAFT_STORE_TTL"` // redis only
	DatabaseURL   string `toml:"database_url" env:"DATABASE_URL"`
}

type LogConfig struct {
	Level       string `toml:"level" env:"TEAMDRAFT_LOG_LEVEL"`
	Development bool   `toml:"development" env:"TEAMDRAFT_LOG_DEVELOPMENT"`
}

type WSConfig struct {
	MessagesPerSecond float64 `toml:"messages_per_second" env:"TEAMDRAFT_WS_RATE"`
	Burst             int     `toml:"burst" env:"TEAMDRAFT_WS_BURST"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
			MaxUploadBytes: 1 << 20,
		},
		Draft: DraftConfig{
			SpinDuration: "800ms",
		},
		Store: StoreConfig{
			Driver:    "memory",
			RedisAddr: "localhost:6379",
			TTL:       "0s",
		},
		Log: LogConfig{
			Level: "info",
		},
		WS: WSConfig{
			MessagesPerSecond: 5,
			Burst:             10,
		},
	}
}

// Load reads the TOML file at path (if any) over the defaults, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server address cannot be empty")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive: %d", c.Server.MaxUploadBytes)
	}
	if d, err := time.ParseDuration(c.Draft.SpinDuration); err != nil {
		return fmt.Errorf("invalid spin duration %q: %w", c.Draft.SpinDuration, err)
	} else if d < 0 {
		return fmt.Errorf("spin duration cannot be negative: %s", d)
	}
	if _, err := time.ParseDuration(c.Store.TTL); err != nil {
		return fmt.Errorf("invalid store TTL %q: %w", c.Store.TTL, err)
	}

	switch c.Store.Driver {
	case "memory":
	case "redis":
		if c.Store.RedisAddr == "" {
			return errors.New("redis store needs redis_addr")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return errors.New("postgres store needs database_url")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Store.Driver != "redis" && c.GetStoreTTL() != 0 {
		return fmt.Errorf("store ttl is only supported by the redis driver, not %q", c.Store.Driver)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	if c.WS.MessagesPerSecond <= 0 || c.WS.Burst <= 0 {
		return fmt.Errorf("websocket rate limit must be positive: %v/s burst %d", c.WS.MessagesPerSecond, c.WS.Burst)
	}
	return nil
}

// GetSpinDuration returns the spin duration as a duration.
func (c *Config) GetSpinDuration() time.Duration {
	d, _ := time.ParseDuration(c.Draft.SpinDuration)
	return d
}

// GetStoreTTL returns the store TTL as a duration.
func (c *Config) GetStoreTTL() time.Duration {
	d, _ := time.ParseDuration(c.Store.TTL)
	return d
}
