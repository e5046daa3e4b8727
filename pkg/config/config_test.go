package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "MAX_INSTALLMENTS", "BUY_NOW_INCLUDES_CART", "ADDRESS_CACHE_TTL", "ADDRESS_LOOKUP_RPS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 10, cfg.MaxInstallments)
	assert.True(t, cfg.BuyNowIncludesCart)
	assert.Equal(t, time.Hour, cfg.AddressCacheTTL)
	assert.Equal(t, 5.0, cfg.AddressLookupRPS)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("MAX_INSTALLMENTS", "12")
	t.Setenv("BUY_NOW_INCLUDES_CART", "false")
	t.Setenv("ADDRESS_CACHE_TTL", "90s")
	t.Setenv("ADDRESS_LOOKUP_RPS", "2.5")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, 12, cfg.MaxInstallments)
	assert.False(t, cfg.BuyNowIncludesCart)
	assert.Equal(t, 90*time.Second, cfg.AddressCacheTTL)
	assert.Equal(t, 2.5, cfg.AddressLookupRPS)
	assert.Equal(t, "k1:9092,k2:9092", cfg.KafkaBrokers)
}

func TestLoadIgnoresGarbage(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	t.Setenv("BUY_NOW_INCLUDES_CART", "maybe")
	t.Setenv("ADDRESS_CACHE_TTL", "-1s")

	cfg := Load()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.True(t, cfg.BuyNowIncludesCart)
	assert.Equal(t, time.Hour, cfg.AddressCacheTTL)
}
