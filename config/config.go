package config

import (
	"os"
	"strconv"
	"time"

	"trip-booking/internal/services/payment/paylao"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration (customer notifications)
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Advertisement slot pool
	SlotCapacity int

	// Advertised tickets cache
	BannerCacheTTL time.Duration

	// Rate limiting
	RateLimitMax    int64
	RateLimitWindow time.Duration

	// Payment gateway
	PayLaoConfig paylao.Config

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Slot pool
		SlotCapacity: getEnvAsInt("AD_SLOT_CAPACITY", 6),

		// Cache
		BannerCacheTTL: getEnvAsDuration("BANNER_CACHE_TTL", "30s"),

		// Rate limiting
		RateLimitMax:    int64(getEnvAsInt("RATE_LIMIT_MAX", 30)),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),

		// Payment gateway
		PayLaoConfig: paylao.Config{
			BaseURL:     getEnv("PAYLAO_BASE_URL", ""),
			PartnerID:   getEnv("PAYLAO_PARTNER_ID", ""),
			ClientID:    getEnv("PAYLAO_CLIENT_ID", ""),
			ClientKey:   getEnv("PAYLAO_CLIENT_KEY", ""),
			HMACKey:     getEnv("PAYLAO_HMAC_KEY", ""),
			MerchantID:  getEnv("PAYLAO_MERCHANT_ID", ""),
			Currency:    getEnv("PAYLAO_CURRENCY", "LAK"),
			PNSubKey:    getEnv("PAYLAO_PN_SUBKEY", ""),
			PNSubSecret: getEnv("PAYLAO_PN_SUBSECRET", ""),
			PNUUID:      getEnv("PAYLAO_PN_UUID", ""),
			PNChannel:   getEnv("PAYLAO_PN_CHANNEL", "paylao-payment-notifications"),
			PNCipherKey: getEnv("PAYLAO_PN_CIPHERKEY", ""),
		},

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
