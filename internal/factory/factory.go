package factory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ayu-zh/placement-connector/internal/api"
	"github.com/Ayu-zh/placement-connector/internal/dependencies/clock"
	"github.com/Ayu-zh/placement-connector/internal/dependencies/random"
	"github.com/Ayu-zh/placement-connector/internal/events"
	"github.com/Ayu-zh/placement-connector/internal/seed"
	"github.com/Ayu-zh/placement-connector/internal/services/catalog"
	"github.com/Ayu-zh/placement-connector/internal/services/dashboard"
	"github.com/Ayu-zh/placement-connector/internal/services/identity"
	"github.com/Ayu-zh/placement-connector/internal/services/jobs"
	"github.com/Ayu-zh/placement-connector/internal/services/students"
	"github.com/Ayu-zh/placement-connector/internal/services/teammates"
	"github.com/Ayu-zh/placement-connector/internal/storage"
	"github.com/Ayu-zh/placement-connector/internal/storage/memory"
	pgstorage "github.com/Ayu-zh/placement-connector/internal/storage/postgres"
	redisstorage "github.com/Ayu-zh/placement-connector/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Session events
	Hub *events.Hub

	// Services
	Identity  *identity.Service
	Jobs      *jobs.Service
	Students  *students.Service
	Catalog   *catalog.Service
	Teammates *teammates.Service
	Dashboard *dashboard.Service

	logger  *slog.Logger
	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Identity configures the identity authority. TokenSecret is required.
	Identity identity.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Create storage based on type
	var (
		store   storage.Storage
		closers []func() error
	)
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore.Close)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := pgstorage.New(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		store = pgStore
		closers = append(closers, pgStore.Close)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), cfg.Identity, logger)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}
	app.closers = append(app.closers, closers...)
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, identityCfg identity.Config, logger *slog.Logger) (*App, error) {
	hub := events.NewHub(logger)

	identityService, err := identity.New(store, clk, rnd, hub, logger, identityCfg)
	if err != nil {
		return nil, err
	}
	go hub.Run()

	return &App{
		Storage:   store,
		Clock:     clk,
		Random:    rnd,
		Hub:       hub,
		Identity:  identityService,
		Jobs:      jobs.New(store, clk, rnd, logger),
		Students:  students.New(store, identityService, logger),
		Catalog:   catalog.New(store, clk, rnd, logger),
		Teammates: teammates.New(store, clk, rnd, logger),
		Dashboard: dashboard.New(store, clk, logger),
		logger:    logger,
		closers:   []func() error{func() error { hub.Close(); return nil }},
	}, nil
}

// Router builds the HTTP API over the app's services
func (a *App) Router(keepalive time.Duration) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:    a.logger,
		Clock:     a.Clock,
		Identity:  a.Identity,
		Jobs:      a.Jobs,
		Students:  a.Students,
		Catalog:   a.Catalog,
		Teammates: a.Teammates,
		Dashboard: a.Dashboard,
		Keepalive: keepalive,
	})
}

// Logger returns the application logger
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// SeedDemo loads the demo portal data. Running it twice is harmless.
func (a *App) SeedDemo(ctx context.Context) error {
	return seed.Demo(ctx, seed.Services{
		Identity: a.Identity,
		Jobs:     a.Jobs,
		Catalog:  a.Catalog,
	}, a.Clock.Now(), a.logger)
}

// RunSweeper removes expired sessions every interval until ctx ends
func (a *App) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.Identity.SweepExpired(ctx); err != nil && ctx.Err() == nil {
				a.logger.Warn("session sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Close stops the event hub and closes the storage backend
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close app: %w", err)
	}
	return nil
}
