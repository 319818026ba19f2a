package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jpillora/backoff"

	"github.com/mcoot/scorekeeper/internal/api/events"
	"github.com/mcoot/scorekeeper/internal/config"
	"github.com/mcoot/scorekeeper/internal/dependencies/clock"
	"github.com/mcoot/scorekeeper/internal/dependencies/ids"
	"github.com/mcoot/scorekeeper/internal/dependencies/random"
	"github.com/mcoot/scorekeeper/internal/health"
	"github.com/mcoot/scorekeeper/internal/metrics"
	"github.com/mcoot/scorekeeper/internal/services/auth"
	"github.com/mcoot/scorekeeper/internal/services/games"
	"github.com/mcoot/scorekeeper/internal/services/ledger"
	"github.com/mcoot/scorekeeper/internal/storage"
	"github.com/mcoot/scorekeeper/internal/storage/memory"
	mongostorage "github.com/mcoot/scorekeeper/internal/storage/mongo"
	redisstorage "github.com/mcoot/scorekeeper/internal/storage/redis"
)

// ErrStoreUnavailable is returned by New when the store cannot be reached
// and a degraded start is not allowed
var ErrStoreUnavailable = errors.New("store unavailable")

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    ids.Generator

	// Services
	AuthService    *auth.Service
	GameController *games.Controller
	Ledger         *ledger.Service

	// Infrastructure
	HubManager *events.HubManager
	Monitor    *health.Monitor
	Metrics    *metrics.Recorder

	closeStorage func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "mongo")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// MongoConfig holds MongoDB connection settings (required if StorageType is "mongo")
	MongoConfig *mongostorage.Config
	// AuthConfig holds configuration for the auth service
	AuthConfig auth.Config
	// HealthConfig controls background store checks
	HealthConfig health.Config
	// MetricsEnabled creates a Prometheus recorder
	MetricsEnabled bool
	// ConnectAttempts is how many store pings are made before startup gives up (default 1)
	ConnectAttempts int
	// RetryMin is the first delay between connection attempts (default 200ms)
	RetryMin time.Duration
	// AllowDegradedStart returns a working App even when the store is down
	AllowDegradedStart bool
}

// FromConfig builds a factory Config from loaded server configuration
func FromConfig(cfg config.Config, logger *slog.Logger) Config {
	authCfg := auth.DefaultConfig()
	authCfg.Secret = cfg.JWTSecret
	authCfg.TokenTTL = cfg.TokenTTL

	healthCfg := health.DefaultConfig()
	healthCfg.Interval = cfg.HealthInterval

	fc := Config{
		Logger:             logger,
		StorageType:        cfg.StorageType,
		AuthConfig:         authCfg,
		HealthConfig:       healthCfg,
		MetricsEnabled:     cfg.MetricsEnabled,
		ConnectAttempts:    cfg.StoreConnectAttempts,
		AllowDegradedStart: cfg.AllowDegradedStart,
	}

	switch cfg.StorageType {
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		fc.RedisConfig = &redisCfg
	case config.StorageMongo:
		mongoCfg := mongostorage.DefaultConfig()
		mongoCfg.URI = cfg.MongoURI
		mongoCfg.Database = cfg.MongoDatabase
		fc.MongoConfig = &mongoCfg
	}
	return fc
}

// New creates a new application with all dependencies wired.
// The store is pinged with exponential backoff until it answers or the attempts run out.
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, closeStorage, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.NewRecorder()
	}

	app := newWithDependencies(store, clock.New(), random.New(), ids.New(), cfg.AuthConfig, cfg.HealthConfig, recorder, logger)
	app.closeStorage = closeStorage

	if err := app.connect(ctx, cfg, logger); err != nil {
		if !cfg.AllowDegradedStart {
			_ = app.Close()
			return nil, err
		}
		logger.Warn("starting without storage", slog.String("error", err.Error()))
	}

	return app, nil
}

func openStorage(cfg Config) (storage.Storage, func() error, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageMemory
	}

	switch storageType {
	case config.StorageMemory:
		return memory.New(), func() error { return nil }, nil
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, nil, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err := redisstorage.Open(*cfg.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.StorageMongo:
		if cfg.MongoConfig == nil {
			return nil, nil, errors.New("MongoConfig required when StorageType is mongo")
		}
		store, err := mongostorage.Open(*cfg.MongoConfig)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'mongo'", storageType)
	}
}

// connect runs health checks until the store answers
func (a *App) connect(ctx context.Context, cfg Config, logger *slog.Logger) error {
	attempts := max(cfg.ConnectAttempts, 1)
	retryMin := cfg.RetryMin
	if retryMin <= 0 {
		retryMin = 200 * time.Millisecond
	}

	b := &backoff.Backoff{
		Min:    retryMin,
		Max:    10 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	var status health.Status
	for attempt := range attempts {
		status = a.Monitor.Check(ctx)
		if status.StoreConnected {
			return nil
		}
		if attempt == attempts-1 {
			break
		}

		delay := b.Duration()
		logger.Info("store not reachable, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrStoreUnavailable, attempts, status.Err)
}

// Close releases the storage connection
func (a *App) Close() error {
	if a.closeStorage == nil {
		return nil
	}
	return a.closeStorage()
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	idGen ids.Generator,
	authCfg auth.Config,
	healthCfg health.Config,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) *App {
	authService := auth.New(store, clk, idGen, authCfg)
	gameController := games.NewController(store, clk, rnd, idGen, logger)
	ledgerService := ledger.New(store, clk, idGen, logger)
	hubManager := events.NewHubManager(logger)
	monitor := health.NewMonitor(store, clk, logger, healthCfg)

	gameController.Subscribe(hubManager)
	if recorder != nil {
		gameController.Subscribe(recorder)
		monitor.OnChange(func(s health.Status) {
			recorder.SetStoreConnected(s.StoreConnected)
		})
	}

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		IDs:            idGen,
		AuthService:    authService,
		GameController: gameController,
		Ledger:         ledgerService,
		HubManager:     hubManager,
		Monitor:        monitor,
		Metrics:        recorder,
	}
}
