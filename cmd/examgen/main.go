package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/examgen/examgen/internal/config"
	"github.com/examgen/examgen/internal/gemini"
	"github.com/examgen/examgen/internal/server"
	"github.com/examgen/examgen/internal/storage"
)

func main() {
	// Load env if it exists
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	redis, err := storage.NewRedis(
		cfg.Redis.GetRedisAddr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redis.Close()

	logger.Info("connected to redis")

	var postgres *storage.Postgres
	if cfg.Postgres.DSN != "" {
		postgres, err = storage.NewPostgres(cfg.Postgres.DSN)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer postgres.Close()

		if err := postgres.AutoMigrate(); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}

		logger.Info("connected to postgres")
	} else {
		logger.Warn("POSTGRES_DSN not set, request logging and analytics disabled")
	}

	generator, err := gemini.NewClient(context.Background(), cfg.Providers.GeminiAPIKey, logger)
	if err != nil {
		logger.Fatal("failed to create gemini client", zap.Error(err))
	}
	defer generator.Close()

	srv := server.New(cfg, redis, postgres, generator, logger)

	go func() {
		addr := ":" + cfg.Server.Port
		if err := srv.Run(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}
