package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jfprgin/home-budget/internal/amqp"
	"github.com/jfprgin/home-budget/internal/core"
	"github.com/jfprgin/home-budget/internal/ledger"
)

type CategoryService struct {
	store  ledger.CategoryStore
	txs    ledger.TransactionStore
	events EventPublisher
}

// NewCategoryService reads txs to report the transactions a category
// delete cascades to.
func NewCategoryService(store ledger.CategoryStore, txs ledger.TransactionStore, events EventPublisher) *CategoryService {
	return &CategoryService{store: store, txs: txs, events: events}
}

// CategoryPatch carries a partial category update.
type CategoryPatch struct {
	Name *string
}

func (s *CategoryService) List(ctx context.Context, profileID int64, q core.CategoryQuery) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, profileID, q)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) Get(ctx context.Context, profileID, id int64) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, profileID, id)
	if err != nil {
		return core.Category{}, wrapLedger("get category", err)
	}
	return c, nil
}

// checkName trims name and maps name errors onto the "name" field.
func checkName(name string) (string, error) {
	name, err := core.ValidateCategoryName(name)
	switch {
	case errors.Is(err, core.ErrEmptyName):
		return "", core.NewValidationError("name", core.MsgBlank)
	case errors.Is(err, core.ErrCategoryNameLong):
		return "", core.NewValidationError("name", core.MsgMaxLength)
	}
	return name, err
}

func (s *CategoryService) Create(ctx context.Context, profileID int64, name string) (core.Category, error) {
	name, err := checkName(name)
	if err != nil {
		return core.Category{}, err
	}
	c, err := s.store.CreateCategory(ctx, profileID, name)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Category created", "id", c.ID, "profile_id", profileID)
	return c, nil
}

// Update renames the category. Transactions keep pointing at it.
func (s *CategoryService) Update(ctx context.Context, profileID, id int64, name string) (core.Category, error) {
	if _, err := s.Get(ctx, profileID, id); err != nil {
		return core.Category{}, err
	}
	name, err := checkName(name)
	if err != nil {
		return core.Category{}, err
	}
	c, err := s.store.UpdateCategory(ctx, profileID, id, name)
	if err != nil {
		return core.Category{}, wrapLedger("update category", err)
	}
	return c, nil
}

// Patch with no fields returns the category unchanged.
func (s *CategoryService) Patch(ctx context.Context, profileID, id int64, p CategoryPatch) (core.Category, error) {
	cur, err := s.Get(ctx, profileID, id)
	if err != nil {
		return core.Category{}, err
	}
	if p.Name == nil {
		return cur, nil
	}
	return s.Update(ctx, profileID, id, *p.Name)
}

// Delete removes the category together with its transactions. Each
// cascaded transaction gets a transaction.deleted event ahead of the
// category.deleted one.
func (s *CategoryService) Delete(ctx context.Context, profileID, id int64) error {
	var cascaded []core.Transaction
	if s.events != nil {
		txs, _, err := s.txs.ListTransactions(ctx, profileID, core.Filter{CategoryID: &id}, core.Page{})
		if err != nil {
			return fmt.Errorf("list category transactions: %w", err)
		}
		cascaded = txs
	}
	if err := s.store.DeleteCategory(ctx, profileID, id); err != nil {
		return wrapLedger("delete category", err)
	}
	slog.InfoContext(ctx, "Category deleted", "id", id, "profile_id", profileID, "transactions", len(cascaded))
	for _, t := range cascaded {
		publish(ctx, s.events, amqp.EventTransactionDeleted, profileID, t.ID)
	}
	publish(ctx, s.events, amqp.EventCategoryDeleted, profileID, id)
	return nil
}
