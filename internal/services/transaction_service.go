package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jfprgin/home-budget/internal/amqp"
	"github.com/jfprgin/home-budget/internal/core"
	"github.com/jfprgin/home-budget/internal/ledger"
)

// TransactionService owns transaction writes: validation, category
// ownership and the server-assigned date.
type TransactionService struct {
	store  ledger.TransactionStore
	cats   ledger.CategoryStore
	events EventPublisher
	now    func() time.Time
}

func NewTransactionService(store ledger.TransactionStore, cats ledger.CategoryStore, events EventPublisher) *TransactionService {
	return &TransactionService{
		store:  store,
		cats:   cats,
		events: events,
		now:    time.Now,
	}
}

// List returns one page of the profile's filtered ledger and the match count.
func (s *TransactionService) List(ctx context.Context, profileID int64, f core.Filter, p core.Page) ([]core.Transaction, int, error) {
	txs, total, err := s.store.ListTransactions(ctx, profileID, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return txs, total, nil
}

// ListByType returns every matching transaction of one type, unpaginated.
func (s *TransactionService) ListByType(ctx context.Context, profileID int64, typ core.TransactionType, f core.Filter) ([]core.Transaction, error) {
	txs, _, err := s.List(ctx, profileID, f.WithType(typ), core.Page{})
	return txs, err
}

func (s *TransactionService) Get(ctx context.Context, profileID, id int64) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, profileID, id)
	if err != nil {
		return core.Transaction{}, wrapLedger("get transaction", err)
	}
	return t, nil
}

// checkInput validates in and confirms its category belongs to the profile.
func (s *TransactionService) checkInput(ctx context.Context, profileID int64, in core.TransactionInput) error {
	verr := &core.ValidationError{}
	var fieldErr *core.ValidationError
	if err := in.Validate(); errors.As(err, &fieldErr) {
		verr.Merge(fieldErr)
	}
	if in.CategoryID != nil {
		if _, err := s.cats.GetCategory(ctx, profileID, *in.CategoryID); err != nil {
			if !errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("check category: %w", err)
			}
			verr.Add("category_id", core.MsgForeignCategory)
		}
	}
	return verr.OrNil()
}

// foreignCategory maps a store-level ownership miss onto the field error.
func foreignCategory(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return core.NewValidationError("category_id", core.MsgForeignCategory)
	}
	return err
}

// Create stores a new transaction dated now.
func (s *TransactionService) Create(ctx context.Context, profileID int64, in core.TransactionInput) (core.Transaction, error) {
	if err := s.checkInput(ctx, profileID, in); err != nil {
		return core.Transaction{}, err
	}
	t, err := s.store.CreateTransaction(ctx, profileID, in, s.now().UTC())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", foreignCategory(err))
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"profile_id", profileID,
		"type", t.Type,
		"amount", t.Amount.String())

	publish(ctx, s.events, amqp.EventTransactionCreated, profileID, t.ID)
	return t, nil
}

// Update replaces every client-writable field. The date is kept.
func (s *TransactionService) Update(ctx context.Context, profileID, id int64, in core.TransactionInput) (core.Transaction, error) {
	if _, err := s.store.GetTransaction(ctx, profileID, id); err != nil {
		return core.Transaction{}, wrapLedger("get transaction", err)
	}
	if err := s.checkInput(ctx, profileID, in); err != nil {
		return core.Transaction{}, err
	}
	t, err := s.store.UpdateTransaction(ctx, profileID, id, in)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// the row was checked above, so a miss here is the category
			return core.Transaction{}, foreignCategory(err)
		}
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	publish(ctx, s.events, amqp.EventTransactionUpdated, profileID, t.ID)
	return t, nil
}

// Patch applies a partial update on top of the stored row.
func (s *TransactionService) Patch(ctx context.Context, profileID, id int64, p core.TransactionPatch) (core.Transaction, error) {
	cur, err := s.Get(ctx, profileID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	return s.Update(ctx, profileID, id, p.Apply(cur))
}

func (s *TransactionService) Delete(ctx context.Context, profileID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, profileID, id); err != nil {
		return wrapLedger("delete transaction", err)
	}
	publish(ctx, s.events, amqp.EventTransactionDeleted, profileID, id)
	return nil
}

// wrapLedger keeps core.ErrNotFound recognisable while adding context.
func wrapLedger(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
