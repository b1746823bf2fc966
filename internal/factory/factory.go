package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/dkaymak/roomchat/internal/dependencies/clock"
	"github.com/dkaymak/roomchat/internal/dependencies/random"
	"github.com/dkaymak/roomchat/internal/services/auth"
	"github.com/dkaymak/roomchat/internal/services/color"
	"github.com/dkaymak/roomchat/internal/services/message"
	"github.com/dkaymak/roomchat/internal/services/room"
	"github.com/dkaymak/roomchat/internal/storage"
	"github.com/dkaymak/roomchat/internal/storage/memory"
	redisstorage "github.com/dkaymak/roomchat/internal/storage/redis"
	"github.com/dkaymak/roomchat/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService    *auth.Service
	ColorService   *color.Service
	MessageService *message.Service
	RoomController *room.Controller
	HubManager     *ws.HubManager
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service. Secret is
	// required; zero duration falls back to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
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

	if cfg.AuthConfig.Secret == "" {
		return nil, errors.New("AuthConfig.Secret is required")
	}

	return NewWithDependencies(store, clock.New(), random.New(), cfg.AuthConfig, logger), nil
}

// NewWithDependencies creates an App with the given dependencies (useful for testing)
func NewWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) *App {
	authService := auth.New(store, clk, authCfg)
	colorService := color.New(rnd)
	messageService := message.NewService(store, clk, logger)
	roomController := room.NewController(store, colorService, messageService, clk, rnd, logger)
	hubManager := ws.NewHubManager(messageService, roomController, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		AuthService:    authService,
		ColorService:   colorService,
		MessageService: messageService,
		RoomController: roomController,
		HubManager:     hubManager,
	}
}
