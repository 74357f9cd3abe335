package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Env       string
	Port      string
	LogLevel  string
	LogFormat string

	// Backend API
	APIBaseURL string
	APITimeout time.Duration
	TokenPath  string

	// Viewer timezone; empty means the process-local zone.
	ViewerTZ string

	// Calendar defaults
	SlotStepMinutes        int
	DayStartHour           int
	DayEndHour             int
	DefaultDurationMinutes int

	// Query cache
	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Background refresh of the active day ("" disables).
	RefreshSchedule string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:       getEnv("ENV", "development"),
		Port:      getEnv("PORT", "8090"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:3001"),
		APITimeout: getEnvAsDuration("API_TIMEOUT", 15*time.Second),
		TokenPath:  getEnv("TOKEN_PATH", ".practice-console/token"),

		ViewerTZ: getEnv("VIEWER_TZ", ""),

		SlotStepMinutes:        getEnvAsInt("SLOT_STEP_MINUTES", 15),
		DayStartHour:           getEnvAsInt("DAY_START_HOUR", 7),
		DayEndHour:             getEnvAsInt("DAY_END_HOUR", 20),
		DefaultDurationMinutes: getEnvAsInt("DEFAULT_DURATION_MINUTES", 30),

		CacheBackend:  strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "@every 5m"),
	}
}

// Location resolves the viewer timezone. An unknown zone name falls back to
// the process-local zone rather than failing startup.
func (c *Config) Location() *time.Location {
	if c.ViewerTZ == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.ViewerTZ)
	if err != nil {
		return time.Local
	}
	return loc
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
