package config

import (
	"os"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr  string
	RedisAddr string
	RedisPass string

	KafkaBrokers []string
	KafkaTopic   string

	PriceAPIBaseURL      string
	PriceRefreshInterval time.Duration
	PriceRequestTimeout  time.Duration

	// Upper bound on a single transfer execution, validation to commit.
	TransferTimeout time.Duration
}

func Load() AppConfig {
	return AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8041"),
		RedisAddr: getEnv("REDIS_ADDR", "redis:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),

		KafkaBrokers: getEnvSlice("KAFKA_BROKERS", []string{"kafka:9092"}),
		KafkaTopic:   getEnv("KAFKA_TX_TOPIC", "wallet.transactions"),

		PriceAPIBaseURL:      getEnv("PRICE_API_BASE_URL", "https://api.coingecko.com/api/v3"),
		PriceRefreshInterval: getEnvDuration("PRICE_REFRESH_INTERVAL", 60*time.Second),
		PriceRequestTimeout:  getEnvDuration("PRICE_REQUEST_TIMEOUT", 10*time.Second),

		TransferTimeout: getEnvDuration("TRANSFER_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
