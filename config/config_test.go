package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
	assert.Equal(t, 6, cfg.SlotCapacity)
	assert.Equal(t, 30*time.Second, cfg.BannerCacheTTL)
	assert.Equal(t, int64(30), cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "LAK", cfg.PayLaoConfig.Currency)
	assert.Equal(t, "9090", cfg.MetricsPort)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("AD_SLOT_CAPACITY", "3")
	t.Setenv("BANNER_CACHE_TTL", "2m")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("ENABLE_METRICS", "false")

	cfg := LoadConfig()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 3, cfg.SlotCapacity)
	assert.Equal(t, 2*time.Minute, cfg.BannerCacheTTL)
	assert.Equal(t, int64(5), cfg.RateLimitMax)
	assert.False(t, cfg.EnableMetrics)
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("BANNER_CACHE_TTL", "not-a-duration")

	cfg := LoadConfig()
	assert.Equal(t, 30*time.Second, cfg.BannerCacheTTL)
}
