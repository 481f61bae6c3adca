// Package config provides configuration management functionality.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     int
	LogLevel string
	DevMode  bool

	// Redis cache backend. Empty password and DB 0 are the common case.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// LLM collaborator (any OpenAI-compatible endpoint).
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	// Cache TTLs. CacheTTL covers final orchestrator responses,
	// NewsCacheTTL covers fast-moving data (quotes, news, web search).
	CacheTTL     time.Duration
	NewsCacheTTL time.Duration

	MaxSearchResults int
	RequestTimeout   time.Duration

	// Number of workers in the synthesis pool. LLM calls are long-running
	// and must not starve concurrent requests.
	SynthesisWorkers int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnvAsInt("PORT", 8000),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMBaseURL: getEnv("LLM_BASE_URL", ""),
		LLMModel:   getEnv("LLM_MODEL", "mistralai/Mixtral-8x7B-Instruct-v0.1"),

		CacheTTL:     time.Duration(getEnvAsInt("CACHE_TTL", 3600)) * time.Second,
		NewsCacheTTL: time.Duration(getEnvAsInt("NEWS_CACHE_TTL", 300)) * time.Second,

		MaxSearchResults: getEnvAsInt("MAX_SEARCH_RESULTS", 5),
		RequestTimeout:   time.Duration(getEnvAsInt("REQUEST_TIMEOUT", 30)) * time.Second,

		SynthesisWorkers: getEnvAsInt("SYNTHESIS_WORKERS", 2),
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
