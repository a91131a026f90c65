package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL string
	RedisURL    string

	// JWT
	JWTSecret string

	// OpenAI
	OpenAIAPIKey    string
	LLMModel        string
	LLMResponseMode string // "json" or "tools"
	LLMMaxTokens    int
	LLMTemperature  float64

	// Analysis pipeline
	AnalysisBatchSize  int
	AnalysisChunkDelay time.Duration
	AnalysisCacheTTL   time.Duration

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		LLMModel:        getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMResponseMode: getEnv("LLM_RESPONSE_MODE", "json"),
		LLMMaxTokens:    getEnvInt("LLM_MAX_TOKENS", 2048),
		LLMTemperature:  getEnvFloat("LLM_TEMPERATURE", 0.3),

		AnalysisBatchSize:  getEnvInt("ANALYSIS_BATCH_SIZE", 5),
		AnalysisChunkDelay: time.Duration(getEnvInt("ANALYSIS_CHUNK_DELAY_MS", 500)) * time.Millisecond,
		AnalysisCacheTTL:   time.Duration(getEnvInt("ANALYSIS_CACHE_TTL_MIN", 1440)) * time.Minute,

		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", nil),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.LLMResponseMode != "json" && c.LLMResponseMode != "tools" {
		return fmt.Errorf("LLM_RESPONSE_MODE must be json or tools, got %q", c.LLMResponseMode)
	}
	if c.AnalysisBatchSize <= 0 {
		return fmt.Errorf("ANALYSIS_BATCH_SIZE must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
