package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/i18n"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/server"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.Info().Str("env", string(cfg.Env)).Msg("configuration loaded")

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.AutoMigrate {
		if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
			logging.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Redis is optional: without it the denylist and the short link cache
	// stay in process and recipe creation is not rate limited.
	var redisClient *redis.Client
	if redisClient, err = database.NewRedisClient(cfg); err != nil {
		logging.Warn().Err(err).Msg("redis unavailable, continuing without it")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx := context.Background()
	store, err := storage.New(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize media storage")
	}

	bundle, err := i18n.NewBundle(cfg.DefaultLocale)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build message catalog")
	}

	srv, err := server.New(server.Deps{
		Config:   cfg,
		DB:       db,
		Redis:    redisClient,
		Store:    store,
		Bundle:   bundle,
		Notifier: service.NewEmailService(cfg, bundle),
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create server")
	}

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logging.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("received signal")
	}

	logging.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown error")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logging.Info().Msg("server stopped")
}
