package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port     string
	LogLevel string

	// Completion provider. An empty API key is valid: every request is
	// then served by the local fallback generator.
	CompletionAPIKey   string
	CompletionBaseURL  string
	Model              string
	MaxTokens          int
	ContextTokenBudget int
	CompletionTimeout  time.Duration

	// Response cache for catalog lookups
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// Conversation persistence
	StoreDriver string
	StorePath   string
	SQLitePath  string

	// Target catalog
	MASTBaseURL    string
	CatalogTimeout time.Duration

	// Usage recording
	AMQPURL     string
	UsageQueue  string
	DefaultTier string
}

// ------------------------------------------------------------------------------------------------------
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{
		Port:     getEnv("PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CompletionAPIKey:   getEnv("COMPLETION_API_KEY", ""),
		CompletionBaseURL:  getEnv("COMPLETION_BASE_URL", "https://api.groq.com/openai/v1/chat/completions"),
		Model:              getEnv("MODEL", "llama-3.1-8b-instant"),
		MaxTokens:          getEnvAsInt("MAX_TOKENS", 1024),
		ContextTokenBudget: getEnvAsInt("CONTEXT_TOKEN_BUDGET", 3000),
		CompletionTimeout:  getEnvAsDuration("COMPLETION_TIMEOUT", 30*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", 5*time.Minute),

		StoreDriver: getEnv("STORE_DRIVER", "file"),
		StorePath:   getEnv("STORE_PATH", "data/conversations.json"),
		SQLitePath:  getEnv("SQLITE_PATH", "data/larun.db"),

		MASTBaseURL:    getEnv("MAST_BASE_URL", "https://exo.mast.stsci.edu"),
		CatalogTimeout: getEnvAsDuration("CATALOG_TIMEOUT", 10*time.Second),

		AMQPURL:     getEnv("AMQP_URL", ""),
		UsageQueue:  getEnv("USAGE_QUEUE", "larun.usage"),
		DefaultTier: getEnv("DEFAULT_TIER", "free"),
	}

	return cfg, nil
}

// ------------------------------------------------------------------------------------------------------
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ------------------------------------------------------------------------------------------------------
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// ------------------------------------------------------------------------------------------------------
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
