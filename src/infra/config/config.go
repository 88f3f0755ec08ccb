// Package config handles application configuration via environment variables.
// It uses kelseyhightower/envconfig for parsing and provides sensible defaults.
// A .env file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix shared by every configuration variable.
const EnvPrefix = "APP"

// Config holds all application configuration.
// Values are loaded from environment variables with the prefix "APP".
// Example: APP_PORT=5000, APP_DB_POOL_SIZE=10
type Config struct {
	// Server configuration (loaded separately to flatten env vars)
	Server ServerConfig

	// Database configuration (loaded separately to flatten env vars)
	Database DatabaseConfig

	// Logging configuration (loaded separately to flatten env vars)
	Log LogConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP server port (default: 5000)
	Port int `envconfig:"PORT" default:"5000"`

	// Host is the HTTP server host (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// ReadTimeout is the maximum duration for reading the entire request (default: 10s)
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`

	// WriteTimeout is the maximum duration before timing out writes of the response (default: 30s)
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish (default: 30s)
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds PostgreSQL connection and pool settings.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"profiles"`

	// SSLMode is the TLS verification mode. "require" encrypts without
	// verifying the server certificate; use "verify-full" to verify it.
	SSLMode string `envconfig:"DB_SSLMODE" default:"require"`

	// PoolSize is the maximum number of simultaneously open connections (default: 10)
	PoolSize int `envconfig:"DB_POOL_SIZE" default:"10"`

	// QueueLimit bounds how many borrowers may wait for a connection.
	// Zero means unbounded; waiters are still limited by AcquireTimeout.
	QueueLimit int `envconfig:"DB_QUEUE_LIMIT" default:"0"`

	// ConnectTimeout bounds establishing a new session with the store.
	// It must not exceed AcquireTimeout (default: 3s)
	ConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"3s"`

	// AcquireTimeout bounds waiting for a pooled connection (default: 5s)
	AcquireTimeout time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"5s"`

	// QueryTimeout bounds a single request's query (default: 10s)
	QueryTimeout time.Duration `envconfig:"DB_QUERY_TIMEOUT" default:"10s"`

	// IdleCheckAfter is how long a connection may sit idle before it is
	// pinged on its next borrow. Zero disables the check.
	IdleCheckAfter time.Duration `envconfig:"DB_IDLE_CHECK_AFTER" default:"1s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the log level: debug, info, warn, error (default: info)
	Level string `envconfig:"LOG_LEVEL" default:"info"`

	// Format is the log format: json, text, plain (default: json)
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// CORSConfig holds cross-origin settings for browser clients.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5500,http://127.0.0.1:5501,https://prasa-main.vercel.app"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// Validate rejects pool settings that would make the pool unusable.
func (c *DatabaseConfig) Validate() error {
	switch {
	case c.PoolSize < 1:
		return fmt.Errorf("DB_POOL_SIZE must be at least 1, got %d", c.PoolSize)
	case c.QueueLimit < 0:
		return fmt.Errorf("DB_QUEUE_LIMIT must not be negative, got %d", c.QueueLimit)
	case c.ConnectTimeout <= 0:
		return errors.New("DB_CONNECT_TIMEOUT must be positive")
	case c.AcquireTimeout <= 0:
		return errors.New("DB_ACQUIRE_TIMEOUT must be positive")
	case c.ConnectTimeout > c.AcquireTimeout:
		return fmt.Errorf("DB_CONNECT_TIMEOUT (%s) must not exceed DB_ACQUIRE_TIMEOUT (%s)", c.ConnectTimeout, c.AcquireTimeout)
	case c.QueryTimeout <= 0:
		return errors.New("DB_QUERY_TIMEOUT must be positive")
	case c.IdleCheckAfter < 0:
		return errors.New("DB_IDLE_CHECK_AFTER must not be negative")
	}
	return nil
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from an optional .env file and the environment.
// Variables already set in the environment take precedence over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadFromEnv()
}

// LoadFromEnv reads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	var cfg Config

	// Load each config section separately to flatten env var names
	// This allows env vars like APP_PORT instead of APP_SERVER_PORT
	if err := envconfig.Process(EnvPrefix, &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg.CORS); err != nil {
		return nil, fmt.Errorf("failed to load cors config: %w", err)
	}

	if err := cfg.Database.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	return &cfg, nil
}
