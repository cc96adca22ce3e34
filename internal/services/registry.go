package services

import (
	"time"

	"github.com/jfprgin/home-budget/internal/auth"
	"github.com/jfprgin/home-budget/internal/ledger"
)

// Options configures the services built by NewRegistry.
type Options struct {
	Issuer *auth.Issuer
	Hasher auth.Hasher
	// Seed lists the category names given to each new profile.
	Seed     []string
	Location *time.Location
	// Now overrides the wall clock; nil means time.Now.
	Now func() time.Time
	// Users replaces the store's user port, e.g. with a cache.UserStore.
	Users ledger.UserStore
}

// Registry holds one instance of every service over a single store.
type Registry struct {
	Auth         *AuthService
	Categories   *CategoryService
	Transactions *TransactionService
	Summaries    *SummaryService
	Profiles     *ProfileService
}

// NewRegistry wires the services. events may be nil to disable publishing.
func NewRegistry(store ledger.Store, events EventPublisher, opts Options) *Registry {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var users ledger.UserStore = store
	if opts.Users != nil {
		users = opts.Users
	}

	authSvc := NewAuthService(users, store, opts.Issuer, opts.Hasher, opts.Seed)
	authSvc.now = now
	txSvc := NewTransactionService(store, store, events)
	txSvc.now = now

	return &Registry{
		Auth:         authSvc,
		Categories:   NewCategoryService(store, store, events),
		Transactions: txSvc,
		Summaries:    NewSummaryService(store, opts.Location).WithClock(now),
		Profiles:     NewProfileService(users, store, store),
	}
}
