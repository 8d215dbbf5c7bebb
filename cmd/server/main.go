package main

import (
	"context"
	"log/slog"
	"os"

	"subhive/internal/config"
	"subhive/internal/db"
	"subhive/internal/observability"
	"subhive/internal/router"
	"subhive/internal/services"
	"subhive/internal/store"
	"subhive/internal/store/gormstore"
	"subhive/internal/store/memstore"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, reading env vars from system")
	}

	config.LoadConfig()
	cfg := config.Config

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	st, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	if err := db.Seed(context.Background(), st); err != nil {
		slog.Error("Failed to seed subreddits", "error", err)
		os.Exit(1)
	}

	svc, err := services.New(st, services.Options{
		FeedCacheTTL: cfg.FeedCacheTTL,
		FeedPageSize: cfg.FeedPageSize,
		Metrics:      observability.NewMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		slog.Error("Failed to build services", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Setup Sessions
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	router.Use(r, sessionStore, st.Users())
	router.RegisterRoutes(r, svc, prometheus.DefaultGatherer)

	slog.Info("subhive server starting", "port", cfg.Port, "env", cfg.AppEnv, "store", cfg.StoreDriver)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func openStore(cfg config.AppConfig) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		return memstore.New(), nil
	}
	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return gormstore.New(conn), nil
}
