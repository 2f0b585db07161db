package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the lottery pool backend
type Config struct {
	// Server settings
	ServerPort string
	LogLevel   string

	// Settlement settings
	AutoSettle         bool
	AutoSettleInterval time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AutoSettle:         getEnvBool("AUTO_SETTLE", true),
		AutoSettleInterval: getEnvDuration("AUTO_SETTLE_INTERVAL", 10*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
