package core

import (
	"errors"
	"testing"
	"time"
)

func tx(id int64, typ TransactionType, cents int64, at time.Time) Transaction {
	return Transaction{ID: id, Type: typ, Amount: MoneyFromCents(cents), Date: at, Description: "t"}
}

func TestAggregateExample(t *testing.T) {
	day := NewDate(2025, 6, 11)
	at := day.StartIn(time.UTC).Add(10 * time.Hour)
	txs := []Transaction{
		tx(1, Expense, 5000, at),
		tx(2, Income, 20000, at),
	}
	s := Aggregate(txs, Window{Start: day, End: day}, time.UTC)
	if s.TotalExpense.String() != "50.00" || s.TotalIncome.String() != "200.00" || s.Balance.String() != "150.00" {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestAggregateEmptyYieldsZeros(t *testing.T) {
	s := Aggregate(nil, Window{Start: NewDate(2025, 1, 1), End: NewDate(2025, 1, 31)}, time.UTC)
	if !s.TotalExpense.IsZero() || !s.TotalIncome.IsZero() || !s.Balance.IsZero() {
		t.Fatalf("expected zeros, got %+v", s)
	}
	if s.Balance.String() != "0.00" {
		t.Fatalf("zero should render as 0.00, got %s", s.Balance)
	}
}

func TestAggregateBalanceIdentity(t *testing.T) {
	base := time.Date(2025, 2, 3, 8, 0, 0, 0, time.UTC)
	var txs []Transaction
	for i := int64(1); i <= 50; i++ {
		typ := Expense
		if i%3 == 0 {
			typ = Income
		}
		txs = append(txs, tx(i, typ, i*137, base.Add(time.Duration(i)*time.Hour)))
	}
	s := Aggregate(txs, Window{Start: NewDate(2025, 2, 1), End: NewDate(2025, 2, 28)}, time.UTC)
	if !s.Balance.Equal(s.TotalIncome.Sub(s.TotalExpense)) {
		t.Fatalf("balance %s != %s - %s", s.Balance, s.TotalIncome, s.TotalExpense)
	}
}

func TestAggregateWindowEdges(t *testing.T) {
	w := Window{Start: NewDate(2025, 5, 1), End: NewDate(2025, 5, 31)}
	since, until := w.Bounds(time.UTC)
	txs := []Transaction{
		tx(1, Income, 100, since),
		tx(2, Income, 200, until),
		tx(3, Income, 400, until.Add(time.Nanosecond)),
		tx(4, Income, 800, since.Add(-time.Nanosecond)),
	}
	s := Aggregate(txs, w, time.UTC)
	if s.TotalIncome.Cents() != 300 {
		t.Fatalf("expected only the two boundary instants, got %s", s.TotalIncome)
	}
}

func TestResolvePeriod(t *testing.T) {
	cases := []struct {
		p          Period
		today      Date
		start, end Date
	}{
		{PeriodWeek, NewDate(2025, 6, 11), NewDate(2025, 6, 9), NewDate(2025, 6, 15)},  // Wednesday
		{PeriodWeek, NewDate(2025, 6, 9), NewDate(2025, 6, 9), NewDate(2025, 6, 15)},   // Monday
		{PeriodWeek, NewDate(2025, 6, 15), NewDate(2025, 6, 9), NewDate(2025, 6, 15)},  // Sunday
		{PeriodWeek, NewDate(2025, 1, 1), NewDate(2024, 12, 30), NewDate(2025, 1, 5)},  // spans years
		{PeriodMonth, NewDate(2024, 2, 10), NewDate(2024, 2, 1), NewDate(2024, 2, 29)}, // leap
		{PeriodMonth, NewDate(2025, 2, 10), NewDate(2025, 2, 1), NewDate(2025, 2, 28)},
		{PeriodMonth, NewDate(2025, 12, 31), NewDate(2025, 12, 1), NewDate(2025, 12, 31)},
		{PeriodYear, NewDate(2025, 6, 11), NewDate(2025, 1, 1), NewDate(2025, 12, 31)},
	}
	for _, tc := range cases {
		w, err := ResolvePeriod(tc.p, tc.today)
		if err != nil {
			t.Fatalf("%s %s: %v", tc.p, tc.today, err)
		}
		if !w.Start.Equal(tc.start.Time) || !w.End.Equal(tc.end.Time) {
			t.Fatalf("%s %s: got %s..%s, want %s..%s", tc.p, tc.today, w.Start, w.End, tc.start, tc.end)
		}
	}
	if _, err := ResolvePeriod(PeriodCustom, NewDate(2025, 1, 1)); !errors.Is(err, ErrUnknownPeriod) {
		t.Fatalf("custom needs explicit dates, got %v", err)
	}
}

func TestCustomWindow(t *testing.T) {
	if _, err := CustomWindow(NewDate(2025, 2, 1), NewDate(2025, 1, 1)); !errors.Is(err, ErrStartAfterEnd) {
		t.Fatalf("expected ErrStartAfterEnd, got %v", err)
	}
	w, err := CustomWindow(NewDate(2025, 1, 1), NewDate(2025, 1, 1))
	if err != nil || !w.Start.Equal(w.End.Time) {
		t.Fatalf("single-day window rejected: %v", err)
	}
}
