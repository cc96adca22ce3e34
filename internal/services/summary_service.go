package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jfprgin/home-budget/internal/core"
	"github.com/jfprgin/home-budget/internal/ledger"
)

// SummaryService totals a profile's ledger over calendar windows seen in
// the configured time zone.
type SummaryService struct {
	store ledger.TransactionStore
	loc   *time.Location
	now   func() time.Time
}

func NewSummaryService(store ledger.TransactionStore, loc *time.Location) *SummaryService {
	if loc == nil {
		loc = time.UTC
	}
	return &SummaryService{store: store, loc: loc, now: time.Now}
}

// WithClock replaces the clock used to find today.
func (s *SummaryService) WithClock(now func() time.Time) *SummaryService {
	s.now = now
	return s
}

// ForPeriod summarizes the week, month or year containing today.
func (s *SummaryService) ForPeriod(ctx context.Context, profileID int64, p core.Period) (core.Summary, error) {
	w, err := core.ResolvePeriod(p, core.Today(s.now(), s.loc))
	if err != nil {
		return core.Summary{}, fmt.Errorf("resolve period %q: %w", p, err)
	}
	return s.window(ctx, profileID, w)
}

// Custom summarizes [start, end], both days included.
func (s *SummaryService) Custom(ctx context.Context, profileID int64, start, end core.Date) (core.Summary, error) {
	w, err := core.CustomWindow(start, end)
	if err != nil {
		if errors.Is(err, core.ErrStartAfterEnd) {
			return core.Summary{}, core.NewValidationError(core.NonFieldErrorsField, core.MsgStartAfterEnd)
		}
		return core.Summary{}, err
	}
	return s.window(ctx, profileID, w)
}

func (s *SummaryService) window(ctx context.Context, profileID int64, w core.Window) (core.Summary, error) {
	since, until := w.Bounds(s.loc)
	sum, err := s.store.Summarize(ctx, profileID, since, until)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize %s..%s: %w", w.Start, w.End, err)
	}
	return sum, nil
}
