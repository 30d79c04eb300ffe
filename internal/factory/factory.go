package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/projectr/roomserver/internal/dependencies/clock"
	"github.com/projectr/roomserver/internal/dependencies/random"
	"github.com/projectr/roomserver/internal/room"
	"github.com/projectr/roomserver/internal/storage"
	"github.com/projectr/roomserver/internal/storage/memory"
	redisstorage "github.com/projectr/roomserver/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Storage storage.Storage

	Clock  clock.Clock
	Random random.Random

	Registry *room.Registry
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// ActorConfig holds per-room actor settings (zero value means defaults)
	ActorConfig room.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
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
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	actorCfg := cfg.ActorConfig
	if actorCfg.HeartbeatInterval == 0 {
		actorCfg = room.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), random.New(), actorCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, actorCfg room.Config, logger *slog.Logger) *App {
	return &App{
		Storage:  store,
		Clock:    clk,
		Random:   rnd,
		Registry: room.NewRegistry(store, clk, actorCfg, logger),
	}
}

// Close shuts down every live room actor
func (a *App) Close() {
	a.Registry.CloseAll()
}
