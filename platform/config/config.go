// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// OracleConfig provides settings for the item/intent extraction service.
type OracleConfig interface {
	GetOracleProvider() string
	GetOracleAPIKey() string
	GetOracleBaseURL() string
	GetOracleModel() string
	GetOracleMaxAttempts() int
	GetOracleBaseDelay() time.Duration
	GetOracleTimeout() time.Duration
}

// SessionConfig provides settings for the call session registry.
type SessionConfig interface {
	GetSessionStore() string
	GetSessionTTL() time.Duration
}

// SchedulerConfig provides settings for the asynq dispatch queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetDispatchQueueName() string
}

// TurnConfig provides conversation turn tuning knobs.
type TurnConfig interface {
	GetPromptTimeoutSeconds() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	RedisURL             string
	RedisTLSInsecure     bool
	DispatchQueueName    string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	OracleProvider       string
	OracleAPIKey         string
	OracleBaseURL        string
	OracleModel          string
	OracleMaxAttempts    int
	OracleBaseDelay      time.Duration
	OracleTimeout        time.Duration
	SessionStore         string
	SessionTTL           time.Duration
	PromptTimeoutSeconds int
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// OracleConfig implementation
func (c *Config) GetOracleProvider() string         { return c.OracleProvider }
func (c *Config) GetOracleAPIKey() string           { return c.OracleAPIKey }
func (c *Config) GetOracleBaseURL() string          { return c.OracleBaseURL }
func (c *Config) GetOracleModel() string            { return c.OracleModel }
func (c *Config) GetOracleMaxAttempts() int         { return c.OracleMaxAttempts }
func (c *Config) GetOracleBaseDelay() time.Duration { return c.OracleBaseDelay }
func (c *Config) GetOracleTimeout() time.Duration   { return c.OracleTimeout }

// SessionConfig implementation
func (c *Config) GetSessionStore() string      { return c.SessionStore }
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool    { return c.RedisTLSInsecure }
func (c *Config) GetDispatchQueueName() string { return c.DispatchQueueName }

// TurnConfig implementation
func (c *Config) GetPromptTimeoutSeconds() int { return c.PromptTimeoutSeconds }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		DispatchQueueName:    getEnv("DISPATCH_QUEUE_NAME", "default"),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		OracleProvider:       strings.ToLower(getEnv("ORACLE_PROVIDER", "chatapi")),
		OracleAPIKey:         getEnv("ORACLE_API_KEY", ""),
		OracleBaseURL:        getEnv("ORACLE_BASE_URL", ""),
		OracleModel:          getEnv("ORACLE_MODEL", ""),
		OracleMaxAttempts:    mustInt(getEnv("ORACLE_MAX_ATTEMPTS", "3")),
		OracleBaseDelay:      mustDuration(getEnv("ORACLE_BASE_DELAY", "1s")),
		OracleTimeout:        mustDuration(getEnv("ORACLE_TIMEOUT", "10s")),
		SessionStore:         strings.ToLower(getEnv("SESSION_STORE", "memory")),
		SessionTTL:           mustDuration(getEnv("SESSION_TTL", "1h")),
		PromptTimeoutSeconds: mustInt(getEnv("PROMPT_TIMEOUT_SECONDS", "5")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.OracleAPIKey == "" {
		return nil, fmt.Errorf("ORACLE_API_KEY is required")
	}
	if cfg.OracleProvider != "chatapi" && cfg.OracleProvider != "gemini" {
		return nil, fmt.Errorf("ORACLE_PROVIDER must be chatapi or gemini")
	}
	if cfg.SessionStore != "memory" && cfg.SessionStore != "redis" {
		return nil, fmt.Errorf("SESSION_STORE must be memory or redis")
	}
	if cfg.SessionStore == "redis" && cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required when SESSION_STORE is redis")
	}
	if cfg.OracleMaxAttempts < 1 {
		return nil, fmt.Errorf("ORACLE_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
