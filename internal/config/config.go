package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Enterprise EnterpriseConfig
	Flags      FlagConfig
	Email      EmailConfig
	Log        LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"offers_db"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// EnterpriseConfig holds connection settings for the remote enterprise
// learner/catalog service.
type EnterpriseConfig struct {
	ServiceURL     string `envconfig:"ENTERPRISE_SERVICE_URL" default:"http://localhost:8150"`
	RequestTimeout int    `envconfig:"ENTERPRISE_REQUEST_TIMEOUT" default:"5"` // seconds
}

// Timeout returns the per-request timeout for enterprise service calls.
func (c EnterpriseConfig) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// FlagConfig holds the feature switches gating enterprise offers. The
// switches are injected into the eligibility engine as explicit dependencies
// rather than consulted through global state.
type FlagConfig struct {
	EnterpriseOffersEnabled    bool `envconfig:"ENTERPRISE_OFFERS_ENABLED" default:"true"`
	EnterpriseOffersForCoupons bool `envconfig:"ENTERPRISE_OFFERS_FOR_COUPONS" default:"false"`
}

// EmailConfig holds settings for the assignment email dispatcher.
type EmailConfig struct {
	QueueSize int `envconfig:"EMAIL_QUEUE_SIZE" default:"256"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
