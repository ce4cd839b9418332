// ABOUTME: Configuration management for the application with environment variable support
// ABOUTME: Reads env vars through cleanenv, optionally layered over a YAML file named by CONFIG_PATH

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig `yaml:"server"`

	// Upstream describes the scraped site
	Upstream UpstreamConfig `yaml:"upstream"`

	// Cache contains cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Refresh controls background refreshes and their lock
	Refresh RefreshConfig `yaml:"refresh"`

	// Log controls the logger
	Log LogConfig `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string `yaml:"port" env:"PORT" env-default:"8000"`

	// RateLimit is the number of requests a client may make per minute
	RateLimit int `yaml:"rate_limit" env:"RATE_LIMIT" env-default:"100"`
}

// UpstreamConfig holds settings for the scraped site
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url" env:"UPSTREAM_BASE_URL" env-default:"https://news.ycombinator.com/"`
	Timeout time.Duration `yaml:"timeout" env:"UPSTREAM_TIMEOUT" env-default:"30s"`

	// Client selects the HTTP client implementation (standard/colly)
	Client string `yaml:"client" env:"HTTP_CLIENT" env-default:"standard"`

	// StoriesPerPage is the number of stories a listing page must contain
	StoriesPerPage int `yaml:"stories_per_page" env:"STORIES_PER_PAGE" env-default:"30"`
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (redis/memory/sqlite)
	Type string `yaml:"type" env:"CACHE_TYPE" env-default:"memory"`

	// Interval is how long a cached page stays fresh
	Interval time.Duration `yaml:"interval" env:"CACHE_INTERVAL" env-default:"30s"`

	// Redis contains Redis-specific configuration
	Redis RedisConfig `yaml:"redis"`

	// SQLite contains SQLite-specific configuration
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string `yaml:"address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`

	// Password is the Redis authentication password
	Password string `yaml:"password" env:"REDIS_PASSWORD"`

	// DB is the Redis database number
	DB int `yaml:"db" env:"REDIS_DB" env-default:"8"`
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	// Path is the database file
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"cache.db"`
}

// RefreshConfig holds background refresh settings
type RefreshConfig struct {
	Workers            int           `yaml:"workers" env:"REFRESH_WORKERS" env-default:"4"`
	QueueSize          int           `yaml:"queue_size" env:"REFRESH_QUEUE_SIZE" env-default:"100"`
	LockAcquireTimeout time.Duration `yaml:"lock_acquire_timeout" env:"LOCK_ACQUIRE_TIMEOUT" env-default:"10s"`
	LockLease          time.Duration `yaml:"lock_lease" env:"LOCK_LEASE" env-default:"10s"`
	LockPollInterval   time.Duration `yaml:"lock_poll_interval" env:"LOCK_POLL_INTERVAL" env-default:"10ms"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Load reads the YAML file named by CONFIG_PATH when set, then applies
// environment variables on top of it
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv loads and validates configuration
func LoadFromEnv() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}

	if c.Server.RateLimit < 1 {
		return errors.New("rate limit must be at least 1 request per minute")
	}

	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream base url %q must be an absolute url", c.Upstream.BaseURL)
	}

	if c.Upstream.Client != "standard" && c.Upstream.Client != "colly" {
		return errors.New("http client must be 'standard' or 'colly'")
	}

	if c.Upstream.StoriesPerPage < 1 {
		return errors.New("stories per page must be positive")
	}

	switch c.Cache.Type {
	case "memory":
	case "redis":
		if c.Cache.Redis.Address == "" {
			return errors.New("redis address cannot be empty when using redis cache")
		}
	case "sqlite":
		if c.Cache.SQLite.Path == "" {
			return errors.New("sqlite path cannot be empty when using sqlite cache")
		}
	default:
		return errors.New("cache type must be 'redis', 'memory' or 'sqlite'")
	}

	if c.Cache.Interval <= 0 {
		return errors.New("cache interval must be positive")
	}

	if c.Refresh.LockLease <= 0 || c.Refresh.LockAcquireTimeout < 0 {
		return errors.New("lock lease must be positive and acquire timeout not negative")
	}

	if c.Refresh.Workers < 1 || c.Refresh.QueueSize < 1 {
		return errors.New("refresh workers and queue size must be positive")
	}

	return nil
}
