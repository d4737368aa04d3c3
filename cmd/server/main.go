package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ayu-zh/placement-connector/internal/api"
	"github.com/Ayu-zh/placement-connector/internal/api/handler"
	"github.com/Ayu-zh/placement-connector/internal/config"
	"github.com/Ayu-zh/placement-connector/internal/factory"
	"github.com/Ayu-zh/placement-connector/internal/services/identity"
	pgstorage "github.com/Ayu-zh/placement-connector/internal/storage/postgres"
	redisstorage "github.com/Ayu-zh/placement-connector/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	identityCfg := identity.DefaultConfig()
	identityCfg.TokenSecret = []byte(cfg.TokenSecret)
	identityCfg.SessionDuration = cfg.SessionDuration

	factoryCfg := factory.Config{
		Identity:    identityCfg,
		Logger:      logger,
		StorageType: cfg.StorageType,
	}
	switch cfg.StorageType {
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		// Keep session records at least as long as the sessions themselves
		if redisCfg.SessionTTL < 2*cfg.SessionDuration {
			redisCfg.SessionTTL = 2 * cfg.SessionDuration
		}
		factoryCfg.RedisConfig = &redisCfg
	case config.StoragePostgres:
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.URL = cfg.DatabaseURL
		factoryCfg.PostgresConfig = &pgCfg
	}

	// Create application factory
	app, err := factory.New(ctx, factoryCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close failed", slog.String("error", err.Error()))
		}
	}()

	if cfg.SeedDemoData {
		if err := app.SeedDemo(ctx); err != nil {
			return err
		}
	}

	go app.RunSweeper(ctx, cfg.SweepInterval)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.Addr
	server := api.NewServer(app.Router(handler.DefaultKeepalive), serverConfig, logger)

	logger.Info("server starting",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType))
	return server.Run(ctx)
}
