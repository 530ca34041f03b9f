package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Cache     CacheConfig
	Frames    FrameConfig
	Sandbox   SandboxConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string   `envconfig:"PORT" default:"8000"`
	Host           string   `envconfig:"HOST" default:"0.0.0.0"`
	AllowedOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
	Gzip           bool     `envconfig:"GZIP" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StoreConfig selects and configures the content store.
type StoreConfig struct {
	Driver   string        `envconfig:"STORE_DRIVER" default:"memory"` // memory, postgres, sqlite, rest
	DSN      string        `envconfig:"STORE_DSN"`
	SeedGlob string        `envconfig:"STORE_SEED" default:"content/**/*.{yaml,yml,toml}"`
	URL      string        `envconfig:"STORE_URL"`
	APIKey   string        `envconfig:"STORE_API_KEY"`
	Timeout  time.Duration `envconfig:"STORE_TIMEOUT" default:"10s"`
}

// CacheConfig holds the redis read-through cache configuration.
type CacheConfig struct {
	Enabled  bool          `envconfig:"CACHE_ENABLED" default:"false"`
	Addr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"CACHE_TTL" default:"1m"`
	Prefix   string        `envconfig:"CACHE_PREFIX" default:"postframe:"`
}

// FrameConfig holds the frame sizing and document options.
type FrameConfig struct {
	InitialHeight     string `envconfig:"FRAME_INITIAL_HEIGHT" default:"100vh"`
	MinHeight         int    `envconfig:"FRAME_MIN_HEIGHT" default:"200"`
	LockVisualization bool   `envconfig:"FRAME_LOCK_VIZ" default:"false"`
	TargetOrigin      string `envconfig:"FRAME_TARGET_ORIGIN" default:"*"`
	StrictOrigin      bool   `envconfig:"FRAME_STRICT_ORIGIN" default:"false"`
	HostOrigin        string `envconfig:"FRAME_HOST_ORIGIN" default:"http://localhost:8000"`
	CSSFrameworkURL   string `envconfig:"FRAME_CSS_URL"`
	DrawingLibraryURL string `envconfig:"FRAME_DRAWING_URL"`
	ListLimit         int    `envconfig:"LIST_LIMIT" default:"100"`
	NavLimit          int    `envconfig:"NAV_LIMIT" default:"20"`
}

// SandboxConfig holds the sandbox emulator configuration.
type SandboxConfig struct {
	PoolSize int           `envconfig:"SANDBOX_POOL_SIZE" default:"4"`
	Timeout  time.Duration `envconfig:"SANDBOX_TIMEOUT" default:"2s"`
	Settle   time.Duration `envconfig:"SANDBOX_SETTLE" default:"1500ms"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8000",
			Host:           "0.0.0.0",
			AllowedOrigins: []string{"*"},
			Gzip:           true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Store: StoreConfig{
			Driver:   "memory",
			SeedGlob: "content/**/*.{yaml,yml,toml}",
			Timeout:  10 * time.Second,
		},
		Cache: CacheConfig{
			Addr:   "localhost:6379",
			TTL:    time.Minute,
			Prefix: "postframe:",
		},
		Frames: FrameConfig{
			InitialHeight: "100vh",
			MinHeight:     200,
			TargetOrigin:  "*",
			HostOrigin:    "http://localhost:8000",
			ListLimit:     100,
			NavLimit:      20,
		},
		Sandbox: SandboxConfig{
			PoolSize: 4,
			Timeout:  2 * time.Second,
			Settle:   1500 * time.Millisecond,
		},
	}
}

// Validate reports configuration that cannot be served.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "postgres", "sqlite":
		if c.Store.DSN == "" {
			return fmt.Errorf("store driver %q requires STORE_DSN", c.Store.Driver)
		}
	case "rest":
		if c.Store.URL == "" {
			return fmt.Errorf("store driver %q requires STORE_URL", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Frames.MinHeight < 0 {
		return fmt.Errorf("frame min height must not be negative: %d", c.Frames.MinHeight)
	}
	return nil
}
