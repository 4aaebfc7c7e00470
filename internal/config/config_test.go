package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 720*time.Hour, cfg.Cart.TTL)
	assert.Equal(t, "dev_secret", cfg.JWT.Secret)
	assert.Equal(t, "products", cfg.Elastic.Index)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.Scylla.Hosts)
	assert.False(t, cfg.Elastic.Enabled())
	assert.False(t, cfg.MinIO.Enabled())
	assert.False(t, cfg.Stripe.Enabled())
	assert.False(t, cfg.SMTP.Enabled())
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SCYLLA_HOSTS", "10.0.0.1, 10.0.0.2")
	t.Setenv("CORS_ORIGINS", "https://shop.example.com")
	t.Setenv("CART_TTL", "48h")
	t.Setenv("ELASTIC_URL", "http://localhost:9200")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Scylla.Hosts)
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.App.CORSOrigins)
	assert.Equal(t, 48*time.Hour, cfg.Cart.TTL)
	assert.True(t, cfg.Elastic.Enabled())
}

func TestFromViper_ProductionNeedsSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := FromViper(newViper())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := FromViper(newViper())
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
}
