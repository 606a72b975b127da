package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// Backend configuration
	APIBaseURL     string
	RequestTimeout time.Duration

	// Catalog configuration
	SearchDebounce time.Duration

	// Token storage configuration
	TokenPath     string
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	return &Config{
		// Backend
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:5000"),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", "10s"),

		// Catalog
		SearchDebounce: getEnvAsDuration("SEARCH_DEBOUNCE", "500ms"),

		// Token storage
		TokenPath:     getEnv("TOKEN_PATH", defaultTokenPath()),
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ticketfront-token"
	}
	return filepath.Join(home, ".ticketfront", "token")
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
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
