package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Session backends understood by SessionBackend.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	// Dialogue
	Timezone              string
	DefaultMeetingMinutes int
	SessionBackend        string
	SessionTTL            time.Duration
	SessionLockTTL        time.Duration
	MaxSessions           int

	// Redis session store
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Meeting archive
	DatabaseURL            string
	ArchiveBreakerFailures int
	ArchiveBreakerTimeout  time.Duration

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		Timezone:              getEnv("TIMEZONE", "UTC"),
		DefaultMeetingMinutes: getEnvAsInt("DEFAULT_MEETING_MINUTES", 0),
		SessionBackend:        strings.ToLower(strings.TrimSpace(getEnv("SESSION_BACKEND", SessionBackendMemory))),
		SessionTTL:            getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		SessionLockTTL:        getEnvAsDuration("SESSION_LOCK_TTL", 5*time.Second),
		MaxSessions:           getEnvAsInt("MAX_SESSIONS", 10000),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DatabaseURL:            getEnv("DATABASE_URL", ""),
		ArchiveBreakerFailures: getEnvAsInt("ARCHIVE_BREAKER_FAILURES", 5),
		ArchiveBreakerTimeout:  getEnvAsDuration("ARCHIVE_BREAKER_TIMEOUT", 30*time.Second),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// UsesRedisSessions reports whether dialogue state should live in Redis.
func (c *Config) UsesRedisSessions() bool {
	return c.SessionBackend == SessionBackendRedis
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
