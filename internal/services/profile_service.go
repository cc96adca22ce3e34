package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jfprgin/home-budget/internal/core"
	"github.com/jfprgin/home-budget/internal/ledger"
)

// ProfileView is everything the profile endpoint reports for a user.
type ProfileView struct {
	User         core.User
	Profile      core.Profile
	Categories   []core.Category
	Transactions []core.Transaction
}

type ProfileService struct {
	users ledger.UserStore
	cats  ledger.CategoryStore
	txs   ledger.TransactionStore
}

func NewProfileService(users ledger.UserStore, cats ledger.CategoryStore, txs ledger.TransactionStore) *ProfileService {
	return &ProfileService{users: users, cats: cats, txs: txs}
}

// View loads the profile with its categories and full ledger. The reads
// are independent and run concurrently.
func (s *ProfileService) View(ctx context.Context, u core.User) (ProfileView, error) {
	view := ProfileView{User: u}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.users.Profile(gctx, u.ProfileID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		view.Profile = p
		return nil
	})
	g.Go(func() error {
		cats, err := s.cats.ListCategories(gctx, u.ProfileID, core.CategoryQuery{})
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		view.Categories = cats
		return nil
	})
	g.Go(func() error {
		txs, _, err := s.txs.ListTransactions(gctx, u.ProfileID, core.Filter{}, core.Page{})
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		view.Transactions = txs
		return nil
	})

	if err := g.Wait(); err != nil {
		return ProfileView{}, err
	}
	return view, nil
}

// DeleteAccount removes the user and everything its profile owns.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return wrapLedger("delete account", err)
	}
	slog.InfoContext(ctx, "Account deleted", "user_id", userID)
	return nil
}
