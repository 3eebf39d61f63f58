package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort        int
	DatabasePath      string
	JWTSecret         string
	TokenTTL          time.Duration
	CORSAllowedOrigin string
	ReminderCron      string // standard 5-field cron expression
	StatsInterval     time.Duration
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	ttlStr := getEnv("TOKEN_TTL_HOURS", "24")
	ttlHours, err := strconv.Atoi(ttlStr)
	if err != nil || ttlHours <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS: %q", ttlStr)
	}

	statsStr := getEnv("STATS_INTERVAL_SECONDS", "15")
	statsSeconds, err := strconv.Atoi(statsStr)
	if err != nil || statsSeconds <= 0 {
		return nil, fmt.Errorf("invalid STATS_INTERVAL_SECONDS: %q", statsStr)
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		ServerPort:        port,
		DatabasePath:      getEnv("DATABASE_PATH", "./tasks.db"),
		JWTSecret:         secret,
		TokenTTL:          time.Duration(ttlHours) * time.Hour,
		CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
		ReminderCron:      getEnv("REMINDER_CRON", "*/5 * * * *"),
		StatsInterval:     time.Duration(statsSeconds) * time.Second,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
