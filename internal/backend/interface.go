// Package backend builds the ledger store, the user lookup cache and the
// event publisher selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jfprgin/home-budget/internal/config"
	"github.com/jfprgin/home-budget/internal/ledger"
	"github.com/jfprgin/home-budget/internal/services"
)

// CleanupFunc releases the resources a backend holds.
type CleanupFunc func() error

// BackendResult is what the factory hands to the services.
type BackendResult struct {
	Store ledger.Store
	// Users is Store itself or a cache in front of its user lookups.
	// Services must read users through it so their writes invalidate it.
	Users ledger.UserStore
	// Events is nil when publishing is disabled or the broker was unreachable.
	Events  services.EventPublisher
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string { return string(bt) }

func (bt BackendType) IsValid() bool {
	return bt == SQLiteBackend || bt == MemoryBackend
}

type Config struct {
	Type         BackendType
	SQLiteDBPath string

	// UserCacheSize 0 turns the user cache off.
	UserCacheSize int
	UserCacheTTL  time.Duration

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Now stamps the startup purge of expired blacklist rows.
	Now func() time.Time
}

// FromAppConfig picks the backend settings out of the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	cfg := Config{
		Type:          BackendType(appConfig.DataBackend),
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		UserCacheSize: appConfig.UserCacheSize,
		UserCacheTTL:  appConfig.UserCacheTTL,
		AMQPURL:       appConfig.AMQPURL,
		AMQPExchange:  appConfig.AMQPExchange,
		AMQPQueue:     appConfig.AMQPQueue,
		Now:           time.Now,
	}
	if !cfg.Type.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case !c.Type.IsValid():
		return fmt.Errorf("invalid backend type: %s", c.Type)
	case c.Type == SQLiteBackend && c.SQLiteDBPath == "":
		return errors.New("SQLite database path is required for sqlite backend")
	case c.UserCacheSize < 0:
		return fmt.Errorf("invalid user cache size: %d", c.UserCacheSize)
	case c.UserCacheSize > 0 && c.UserCacheTTL <= 0:
		return fmt.Errorf("invalid user cache ttl: %v", c.UserCacheTTL)
	}
	return nil
}
