package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the process-level settings. Database credentials and the
// JWT secret are read where they are used (pkg/database, the auth service),
// matching how the rest of the env surface is consumed.
type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	RedisURL string

	CacheTTL time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		RedisURL: os.Getenv("REDIS_URL"),

		CacheTTL: 5 * time.Minute,
	}

	if seconds, err := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "")); err == nil && seconds > 0 {
		cfg.CacheTTL = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
