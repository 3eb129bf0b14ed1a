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

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// CadenceConfig provides tunables for the outreach cadence engine.
// Absent or malformed values fall back to safe defaults so batch jobs
// stay operable with incomplete configuration.
type CadenceConfig interface {
	GetCadenceMaxAttempts() int
	GetCadenceNoResponseDays() int
}

// CronConfig provides the shared secret gating the cron HTTP endpoints.
type CronConfig interface {
	GetCronSecret() string
}

// SchedulerConfig provides settings for the asynq-based background scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// DashboardConfig provides settings for the dashboard stats cache.
type DashboardConfig interface {
	GetDashboardCacheTTL() time.Duration
}

// Cadence defaults applied when the corresponding env vars are unset or invalid.
const (
	DefaultCadenceMaxAttempts    = 4
	DefaultCadenceNoResponseDays = 30
)

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	JWTAccessSecret       string
	AccessTokenTTL        time.Duration
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	CadenceMaxAttempts    int
	CadenceNoResponseDays int
	CronSecret            string
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	DashboardCacheTTL     time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig / AuthServiceConfig implementation
func (c *Config) GetJWTAccessSecret() string       { return c.JWTAccessSecret }
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// CadenceConfig implementation
func (c *Config) GetCadenceMaxAttempts() int    { return c.CadenceMaxAttempts }
func (c *Config) GetCadenceNoResponseDays() int { return c.CadenceNoResponseDays }

// CronConfig implementation
func (c *Config) GetCronSecret() string { return c.CronSecret }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// DashboardConfig implementation
func (c *Config) GetDashboardCacheTTL() time.Duration { return c.DashboardCacheTTL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:        durationOrDefault(getEnv("JWT_ACCESS_TTL", ""), 12*time.Hour),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		CadenceMaxAttempts:    positiveInt(getEnv("CADENCE_MAX_ATTEMPTS", ""), DefaultCadenceMaxAttempts),
		CadenceNoResponseDays: positiveInt(getEnv("CADENCE_NO_RESPONSE_DAYS", ""), DefaultCadenceNoResponseDays),
		CronSecret:            getEnv("CRON_SECRET", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:      positiveInt(getEnv("ASYNQ_CONCURRENCY", ""), 10),
		DashboardCacheTTL:     durationOrDefault(getEnv("DASHBOARD_CACHE_TTL", ""), 30*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
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

// durationOrDefault parses a strictly positive duration, falling back
// otherwise. A malformed TTL must never disable caching or expire tokens
// instantly.
func durationOrDefault(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// positiveInt parses a strictly positive integer, falling back otherwise.
func positiveInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
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
