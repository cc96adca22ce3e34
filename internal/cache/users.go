// Package cache keeps short-lived copies of hot lookups in front of the
// ledger store.
package cache

import (
	"context"
	"time"

	"github.com/jfprgin/home-budget/internal/core"
	"github.com/jfprgin/home-budget/internal/ledger"
)

// UserStore caches UserByID, the lookup behind every authenticated
// request. Writes made through it drop the cached copy; writes made
// around it are seen once the entry expires.
type UserStore struct {
	ledger.UserStore
	byID *LRUCache[int64, core.User]
}

var _ ledger.UserStore = (*UserStore)(nil)

func NewUserStore(next ledger.UserStore, maxSize int, ttl time.Duration) *UserStore {
	return &UserStore{
		UserStore: next,
		byID:      NewLRUCache[int64, core.User](maxSize, ttl),
	}
}

// WithClock replaces the clock used for expiry.
func (s *UserStore) WithClock(now func() time.Time) *UserStore {
	s.byID.WithClock(now)
	return s
}

func (s *UserStore) UserByID(ctx context.Context, id int64) (core.User, error) {
	if u, ok := s.byID.Get(id); ok {
		return u, nil
	}
	u, err := s.UserStore.UserByID(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	s.byID.Set(id, u)
	return u, nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	defer s.byID.Delete(userID)
	return s.UserStore.UpdatePassword(ctx, userID, hash)
}

func (s *UserStore) DeleteUser(ctx context.Context, userID int64) error {
	defer s.byID.Delete(userID)
	return s.UserStore.DeleteUser(ctx, userID)
}

func (s *UserStore) CleanExpired() int { return s.byID.CleanExpired() }

func (s *UserStore) Len() int { return s.byID.Len() }
