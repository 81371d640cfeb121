package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Providers ProviderConfig
	Quota     QuotaConfig
	Poll      PollConfig
}

type ServerConfig struct {
	Port        string
	Environment string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type PostgresConfig struct {
	DSN string
}

// Credentials and endpoints for the metered external providers
type ProviderConfig struct {
	GeminiAPIKey       string
	CloudConvertAPIKey string
	CloudConvertURL    string
}

// Daily request ceilings per provider
type QuotaConfig struct {
	Gemini       int
	CloudConvert int
	Window       time.Duration
}

// Client-side polling budget for conversion jobs
type PollConfig struct {
	Interval     time.Duration
	MaxAttempts  int
	MaxFetchFail int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			DSN: getEnv("POSTGRES_DSN", ""),
		},
		Providers: ProviderConfig{
			GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
			CloudConvertAPIKey: getEnv("CLOUDCONVERT_API_KEY", ""),
			CloudConvertURL:    getEnv("CLOUDCONVERT_URL", "https://api.cloudconvert.com"),
		},
		Quota: QuotaConfig{
			Gemini:       getEnvInt("GEMINI_DAILY_QUOTA", 20),
			CloudConvert: getEnvInt("CLOUDCONVERT_DAILY_QUOTA", 10),
			Window:       24 * time.Hour,
		},
		Poll: PollConfig{
			Interval:     time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 2)) * time.Second,
			MaxAttempts:  getEnvInt("POLL_MAX_ATTEMPTS", 60),
			MaxFetchFail: getEnvInt("POLL_MAX_FETCH_FAILURES", 3),
		},
	}

	return cfg, nil
}

func (r *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return n
}
