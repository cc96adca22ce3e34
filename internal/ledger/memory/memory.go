// Package memory is an in-process ledger backend. It evaluates filters and
// summaries with the core functions and keeps nothing across restarts.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jfprgin/home-budget/internal/core"
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]core.User
	profiles map[int64]core.Profile
	cats     map[int64]core.Category
	txs      map[int64]core.Transaction
	revoked  map[string]time.Time
}

func New() *Store {
	return &Store{
		users:    make(map[int64]core.User),
		profiles: make(map[int64]core.Profile),
		cats:     make(map[int64]core.Category),
		txs:      make(map[int64]core.Transaction),
		revoked:  make(map[string]time.Time),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// CreateUser implements ledger.UserStore.
func (s *Store) CreateUser(_ context.Context, u core.User, balance core.Money, seed []string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return core.User{}, core.ErrConflict
		}
	}
	u.ID = s.id()
	p := core.Profile{ID: s.id(), UserID: u.ID, Balance: balance}
	u.ProfileID = p.ID
	s.users[u.ID] = u
	s.profiles[p.ID] = p
	for _, name := range seed {
		owner := p.ID
		c := core.Category{ID: s.id(), ProfileID: &owner, Name: name}
		s.cats[c.ID] = c
	}
	return u, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) UserByID(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (s *Store) UpdatePassword(_ context.Context, userID int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	s.users[userID] = u
	return nil
}

// DeleteUser cascades to the profile and everything it owns.
func (s *Store) DeleteUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	for id, t := range s.txs {
		if t.ProfileID == u.ProfileID {
			delete(s.txs, id)
		}
	}
	for id, c := range s.cats {
		if c.ProfileID != nil && *c.ProfileID == u.ProfileID {
			delete(s.cats, id)
		}
	}
	delete(s.profiles, u.ProfileID)
	delete(s.users, userID)
	return nil
}

func (s *Store) Profile(_ context.Context, profileID int64) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[profileID]
	if !ok {
		return core.Profile{}, core.ErrNotFound
	}
	return p, nil
}

// Revoke implements ledger.TokenBlacklist.
func (s *Store) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[jti]; ok {
		return core.ErrConflict
	}
	s.revoked[jti] = expiresAt
	return nil
}

func (s *Store) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok, nil
}

// ownedCategory must be called with s.mu held.
func (s *Store) ownedCategory(profileID, id int64) (core.Category, bool) {
	c, ok := s.cats[id]
	if !ok || c.ProfileID == nil || *c.ProfileID != profileID {
		return core.Category{}, false
	}
	return c, true
}

func (s *Store) ListCategories(_ context.Context, profileID int64, q core.CategoryQuery) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Category{}
	for _, c := range s.cats {
		if c.ProfileID != nil && *c.ProfileID == profileID && q.Match(c) {
			out = append(out, c)
		}
	}
	core.SortCategories(out)
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, profileID, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.ownedCategory(profileID, id)
	if !ok {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateCategory(_ context.Context, profileID int64, name string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profileID]; !ok {
		return core.Category{}, core.ErrNotFound
	}
	owner := profileID
	c := core.Category{ID: s.id(), ProfileID: &owner, Name: name}
	s.cats[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, profileID, id int64, name string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.ownedCategory(profileID, id)
	if !ok {
		return core.Category{}, core.ErrNotFound
	}
	c.Name = name
	s.cats[id] = c
	for tid, t := range s.txs {
		if t.Category != nil && t.Category.ID == id {
			t.Category = &core.CategoryRef{ID: id, Name: name}
			s.txs[tid] = t
		}
	}
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, profileID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ownedCategory(profileID, id); !ok {
		return core.ErrNotFound
	}
	for tid, t := range s.txs {
		if t.Category != nil && t.Category.ID == id {
			delete(s.txs, tid)
		}
	}
	delete(s.cats, id)
	return nil
}

// ledgerOf returns the profile's transactions in list order. Callers hold s.mu.
func (s *Store) ledgerOf(profileID int64) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, t := range s.txs {
		if t.ProfileID == profileID {
			out = append(out, t)
		}
	}
	core.SortTransactions(out)
	return out
}

func (s *Store) ListTransactions(_ context.Context, profileID int64, f core.Filter, p core.Page) ([]core.Transaction, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := f.Apply(s.ledgerOf(profileID))
	lo, hi := p.Slice(len(matched))
	return append([]core.Transaction{}, matched[lo:hi]...), len(matched), nil
}

func (s *Store) GetTransaction(_ context.Context, profileID, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok || t.ProfileID != profileID {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

// categoryRef resolves an optional category id within the profile. Callers hold s.mu.
func (s *Store) categoryRef(profileID int64, id *int64) (*core.CategoryRef, error) {
	if id == nil {
		return nil, nil
	}
	c, ok := s.ownedCategory(profileID, *id)
	if !ok {
		return nil, core.ErrNotFound
	}
	return &core.CategoryRef{ID: c.ID, Name: c.Name}, nil
}

func (s *Store) CreateTransaction(_ context.Context, profileID int64, in core.TransactionInput, at time.Time) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profileID]; !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	ref, err := s.categoryRef(profileID, in.CategoryID)
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		ID:          s.id(),
		ProfileID:   profileID,
		Category:    ref,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		Date:        at.UTC(),
	}
	s.txs[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, profileID, id int64, in core.TransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok || t.ProfileID != profileID {
		return core.Transaction{}, core.ErrNotFound
	}
	ref, err := s.categoryRef(profileID, in.CategoryID)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Category = ref
	t.Description = in.Description
	t.Amount = in.Amount
	t.Type = in.Type
	s.txs[id] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, profileID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok || t.ProfileID != profileID {
		return core.ErrNotFound
	}
	delete(s.txs, id)
	return nil
}

// Summarize runs the pure aggregator over the profile's ledger.
func (s *Store) Summarize(_ context.Context, profileID int64, since, until time.Time) (core.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := core.Filter{Since: &since, Until: &until}
	return core.Sum(f.Apply(s.ledgerOf(profileID))), nil
}
