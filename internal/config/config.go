package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	EnvDevelopment = "DEV"
	EnvProduction  = "PROD"

	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=subhive port=5432 sslmode=disable"

type AppConfig struct {
	Port          string
	AppEnv        string // EnvDevelopment or EnvProduction
	DatabaseURL   string
	StoreDriver   string // DriverPostgres or DriverMemory
	SessionSecret string
	LogLevel      slog.Level
	FeedCacheTTL  time.Duration
	FeedPageSize  int
}

var Config AppConfig

// LoadConfig reads the environment into Config.
func LoadConfig() {
	Config = Load()
}

func Load() AppConfig {
	cfg := AppConfig{}

	cfg.AppEnv = loadOptional("APP_ENV", EnvDevelopment)
	cfg.Port = loadOptional("PORT", "8080")
	cfg.StoreDriver = loadOptional("STORE_DRIVER", DriverPostgres)
	if cfg.StoreDriver != DriverPostgres && cfg.StoreDriver != DriverMemory {
		slog.Error("Invalid STORE_DRIVER, using postgres", "value", cfg.StoreDriver)
		cfg.StoreDriver = DriverPostgres
	}
	cfg.DatabaseURL = loadOptional("DATABASE_URL", defaultDSN)

	if cfg.AppEnv == EnvProduction {
		cfg.SessionSecret = loadRequired("SESSION_SECRET")
	} else {
		cfg.SessionSecret = loadOptional("SESSION_SECRET", "secret_key_change_me")
	}

	lvlString := loadOptional("LOG_LEVEL", "INFO")
	var err error
	cfg.LogLevel, err = parseLogLevel(lvlString)
	if err != nil {
		slog.Error("Invalid LOG_LEVEL", "error", err)
		cfg.LogLevel = slog.LevelInfo
	}

	cfg.FeedCacheTTL, err = time.ParseDuration(loadOptional("FEED_CACHE_TTL", "30s"))
	if err != nil || cfg.FeedCacheTTL < 0 {
		slog.Error("Invalid FEED_CACHE_TTL", "error", err)
		cfg.FeedCacheTTL = 30 * time.Second
	}

	cfg.FeedPageSize, err = strconv.Atoi(loadOptional("FEED_PAGE_SIZE", "25"))
	if err != nil || cfg.FeedPageSize <= 0 {
		slog.Error("Invalid FEED_PAGE_SIZE", "error", err)
		cfg.FeedPageSize = 25
	}

	return cfg
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	var err = level.UnmarshalText([]byte(s))
	return level, err
}

func loadRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		slog.Error("Required env var not set", "key", key)
		os.Exit(1)
	}
	return value
}

func loadOptional(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func (c AppConfig) IsProduction() bool {
	return c.AppEnv == EnvProduction
}
