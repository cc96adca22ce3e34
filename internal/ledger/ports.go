// Package ledger declares the outbound ports the services depend on.
// Every ledger call carries the owning profile id; implementations never
// return rows belonging to another profile.
package ledger

import (
	"context"
	"time"

	"github.com/jfprgin/home-budget/internal/core"
)

type (
	UserStore interface {
		// CreateUser stores the user, an owned profile with the given opening
		// balance, and one category per seed name, atomically. A taken
		// username yields core.ErrConflict.
		CreateUser(ctx context.Context, u core.User, balance core.Money, seed []string) (core.User, error)
		UserByUsername(ctx context.Context, username string) (core.User, error)
		UserByID(ctx context.Context, id int64) (core.User, error)
		UpdatePassword(ctx context.Context, userID int64, hash string) error
		// DeleteUser removes the user with its profile, categories and transactions.
		DeleteUser(ctx context.Context, userID int64) error
		Profile(ctx context.Context, profileID int64) (core.Profile, error)
	}

	// TokenBlacklist records revoked refresh tokens by their jti.
	TokenBlacklist interface {
		// Revoke returns core.ErrConflict when jti is already revoked.
		Revoke(ctx context.Context, jti string, expiresAt time.Time) error
		IsRevoked(ctx context.Context, jti string) (bool, error)
	}

	CategoryStore interface {
		ListCategories(ctx context.Context, profileID int64, q core.CategoryQuery) ([]core.Category, error)
		GetCategory(ctx context.Context, profileID, id int64) (core.Category, error)
		CreateCategory(ctx context.Context, profileID int64, name string) (core.Category, error)
		UpdateCategory(ctx context.Context, profileID, id int64, name string) (core.Category, error)
		// DeleteCategory also deletes the category's transactions.
		DeleteCategory(ctx context.Context, profileID, id int64) error
	}

	TransactionStore interface {
		// ListTransactions returns one page of the filtered ledger, most recent
		// first, along with the total number of matches.
		ListTransactions(ctx context.Context, profileID int64, f core.Filter, p core.Page) ([]core.Transaction, int, error)
		GetTransaction(ctx context.Context, profileID, id int64) (core.Transaction, error)
		CreateTransaction(ctx context.Context, profileID int64, in core.TransactionInput, at time.Time) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, profileID, id int64, in core.TransactionInput) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, profileID, id int64) error
		// Summarize totals the profile's transactions dated in [since, until].
		Summarize(ctx context.Context, profileID int64, since, until time.Time) (core.Summary, error)
	}

	// Store is the full set of ports a backend provides.
	Store interface {
		UserStore
		TokenBlacklist
		CategoryStore
		TransactionStore
		Ping(ctx context.Context) error
		Close() error
	}
)
