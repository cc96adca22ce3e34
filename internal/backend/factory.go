package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jfprgin/home-budget/internal/amqp"
	"github.com/jfprgin/home-budget/internal/cache"
	"github.com/jfprgin/home-budget/internal/ledger"
	"github.com/jfprgin/home-budget/internal/ledger/memory"
	"github.com/jfprgin/home-budget/internal/log"
	"github.com/jfprgin/home-budget/internal/services"
	"github.com/jfprgin/home-budget/internal/storage"
)

type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	var result *BackendResult
	var err error
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		result = f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result.Users = result.Store
	if config.UserCacheSize > 0 {
		result.Users = f.attachUserCache(result, config)
	}

	amqpClient := f.createPublisher(config)
	if amqpClient != nil {
		// keep Events an untyped nil when publishing is off
		result.Events = amqpClient
		storeCleanup := result.Cleanup
		result.Cleanup = func() error {
			return errors.Join(amqpClient.Close(), storeCleanup())
		}
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	purged, err := repo.PurgeExpiredTokens(ctx, config.Now())
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to purge expired revoked tokens", log.FieldError, err)
	} else if purged > 0 {
		f.logger.InfoContext(ctx, "Purged expired revoked tokens", "count", purged)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend() *BackendResult {
	store := memory.New()
	f.logger.Info("Initialized memory backend")
	return &BackendResult{Store: store, Cleanup: store.Close}
}

// attachUserCache puts a cache in front of the store's user lookups and
// chains the sweeper's shutdown onto the backend cleanup.
func (f *DefaultFactory) attachUserCache(result *BackendResult, config Config) ledger.UserStore {
	users := cache.NewUserStore(result.Store, config.UserCacheSize, config.UserCacheTTL)
	manager := cache.NewManager(f.logger)
	manager.Register(users)
	manager.StartCleanup(cacheSweepInterval(config.UserCacheTTL))

	storeCleanup := result.Cleanup
	result.Cleanup = func() error {
		manager.Stop()
		return storeCleanup()
	}
	f.logger.Info("Initialized user cache", "size", config.UserCacheSize, "ttl", config.UserCacheTTL.String())
	return users
}

// cacheSweepInterval sweeps once per TTL, but at most every second.
func cacheSweepInterval(ttl time.Duration) time.Duration {
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}

// createPublisher connects to the broker when one is configured. A broker
// that cannot be reached disables events rather than failing startup.
func (f *DefaultFactory) createPublisher(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without ledger events", log.FieldError, err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

var _ services.EventPublisher = (*amqp.Client)(nil)
