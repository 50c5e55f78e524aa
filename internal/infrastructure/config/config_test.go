package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "storefront", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "USD", cfg.App.Currency)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 300*time.Second, cfg.Dedup.TTL)
	assert.Equal(t, "order:dedup:", cfg.Dedup.KeyPrefix)
	assert.True(t, cfg.HTTP.RateLimitEnabled)
	assert.Equal(t, 120, cfg.HTTP.RateLimitRequests)
	assert.Equal(t, 10, cfg.HTTP.CheckoutRateLimitRequests)
	assert.True(t, cfg.Health.Enabled)
	assert.False(t, cfg.IsProduction())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("STOREFRONT_DATABASE_HOST", "db.internal")
	t.Setenv("STOREFRONT_APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "9090", cfg.App.Port)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "shop", Password: "pw",
		DBName: "shopdb", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=shop password=pw dbname=shopdb sslmode=disable",
		c.DSN())
	assert.Equal(t,
		"postgres://shop:pw@localhost:5432/shopdb?sslmode=disable",
		c.URL())
}

func TestRedisAddr(t *testing.T) {
	c := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", c.Addr())
}

func TestValidateProductionRequiresSecrets(t *testing.T) {
	cfg := &Config{
		App:   AppConfig{Env: "production"},
		Dedup: DedupConfig{TTL: time.Minute},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")

	cfg.JWT.Secret = "topsecret"
	cfg.Stripe = StripeConfig{Enabled: true}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe.secret_key")
}

func TestValidateDedupTTL(t *testing.T) {
	cfg := &Config{Dedup: DedupConfig{TTL: 0}}
	assert.Error(t, cfg.Validate())
}
