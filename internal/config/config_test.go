package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CustomValues(t *testing.T) {
	// Use t.Setenv which auto-restores after test
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("SHUTDOWN_TIMEOUT", "60")
	t.Setenv("DB_HOST", "db.example.com")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "myuser")
	t.Setenv("DB_PASSWORD", "secret123")
	t.Setenv("DB_NAME", "mydb")
	t.Setenv("ENTERPRISE_SERVICE_URL", "http://enterprise.example.com")
	t.Setenv("ENTERPRISE_REQUEST_TIMEOUT", "10")
	t.Setenv("ENTERPRISE_OFFERS_ENABLED", "false")
	t.Setenv("ENTERPRISE_OFFERS_FOR_COUPONS", "true")
	t.Setenv("EMAIL_QUEUE_SIZE", "64")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Server custom values
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 60, cfg.Server.ShutdownTimeout)

	// DB custom values
	assert.Equal(t, "db.example.com", cfg.DB.Host)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.Equal(t, "myuser", cfg.DB.User)
	assert.Equal(t, "secret123", cfg.DB.Password)
	assert.Equal(t, "mydb", cfg.DB.Name)

	// Enterprise custom values
	assert.Equal(t, "http://enterprise.example.com", cfg.Enterprise.ServiceURL)
	assert.Equal(t, 10*time.Second, cfg.Enterprise.Timeout())

	// Flag custom values
	assert.False(t, cfg.Flags.EnterpriseOffersEnabled)
	assert.True(t, cfg.Flags.EnterpriseOffersForCoupons)

	// Email custom values
	assert.Equal(t, 64, cfg.Email.QueueSize)

	// Log custom values
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, true, cfg.Log.Pretty)
}

func TestLoad_PartialOverride(t *testing.T) {
	// Only override some values, leave others as default
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_NAME", "custom_db")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Overridden values
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "custom_db", cfg.DB.Name)

	// Default values should still work
	assert.Equal(t, 30, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "http://localhost:8150", cfg.Enterprise.ServiceURL)
	assert.Equal(t, 5*time.Second, cfg.Enterprise.Timeout())
	assert.True(t, cfg.Flags.EnterpriseOffersEnabled)
	assert.False(t, cfg.Flags.EnterpriseOffersForCoupons)
	assert.Equal(t, 256, cfg.Email.QueueSize)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := DBConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "offers",
		Password: "pw",
		Name:     "offers_db",
		SSLMode:  "disable",
		MaxConns: 10,
		MinConns: 2,
	}

	dsn := cfg.DSN()
	assert.Equal(t,
		"postgres://offers:pw@db.internal:5432/offers_db?sslmode=disable&pool_max_conns=10&pool_min_conns=2",
		dsn)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
