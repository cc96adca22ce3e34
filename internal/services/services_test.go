package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jfprgin/home-budget/internal/amqp"
	"github.com/jfprgin/home-budget/internal/auth"
	"github.com/jfprgin/home-budget/internal/core"
	"github.com/jfprgin/home-budget/internal/ledger/memory"
)

// fakePublisher records every event and can be told to fail.
type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev *amqp.LedgerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakePublisher) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Type
	}
	return out
}

func mustMoney(t *testing.T, s string) core.Money {
	t.Helper()
	m, err := core.ParseMoney(s)
	if err != nil {
		t.Fatalf("parse money %q: %v", s, err)
	}
	return m
}

func fieldErr(t *testing.T, err error, field string) string {
	t.Helper()
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	msgs := verr.Fields[field]
	if len(msgs) == 0 {
		t.Fatalf("expected an error on %q, got %v", field, verr.Fields)
	}
	return msgs[0]
}

func seededUser(t *testing.T, s *memory.Store, name string, seed ...string) core.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), core.User{Username: name, Email: name + "@example.com"}, core.DefaultProfileBalance, seed)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return u
}

func TestTransactionService_Create(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	svc := NewTransactionService(store, store, pub)
	fixed := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	alice := seededUser(t, store, "alice", "Food")
	bob := seededUser(t, store, "bob", "Rent")
	bobCats, _ := store.ListCategories(ctx, bob.ProfileID, core.CategoryQuery{})
	aliceCats, _ := store.ListCategories(ctx, alice.ProfileID, core.CategoryQuery{})

	t.Run("stores and dates the transaction", func(t *testing.T) {
		catID := aliceCats[0].ID
		tx, err := svc.Create(ctx, alice.ProfileID, core.TransactionInput{
			Description: "Lunch", Amount: mustMoney(t, "12.50"), Type: core.Expense, CategoryID: &catID,
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if !tx.Date.Equal(fixed) || tx.Category == nil || tx.Category.Name != "Food" {
			t.Errorf("Create() = %+v", tx)
		}
		if got := pub.kinds(); len(got) != 1 || got[0] != amqp.EventTransactionCreated {
			t.Errorf("events = %v", got)
		}
	})

	t.Run("foreign category is a field error", func(t *testing.T) {
		foreign := bobCats[0].ID
		_, err := svc.Create(ctx, alice.ProfileID, core.TransactionInput{
			Amount: mustMoney(t, "1"), Type: core.Expense, CategoryID: &foreign,
		})
		if msg := fieldErr(t, err, "category_id"); msg != core.MsgForeignCategory {
			t.Errorf("category_id message = %q", msg)
		}
	})

	t.Run("collects every field error", func(t *testing.T) {
		missing := int64(9999)
		_, err := svc.Create(ctx, alice.ProfileID, core.TransactionInput{
			Amount: core.Zero, Type: "gift", CategoryID: &missing,
		})
		fieldErr(t, err, "amount")
		fieldErr(t, err, "type")
		fieldErr(t, err, "category_id")
	})

	t.Run("publisher failure does not fail the write", func(t *testing.T) {
		pub.err = errors.New("broker down")
		defer func() { pub.err = nil }()
		if _, err := svc.Create(ctx, alice.ProfileID, core.TransactionInput{Amount: mustMoney(t, "3"), Type: core.Income}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	})

	t.Run("nil publisher", func(t *testing.T) {
		quiet := NewTransactionService(store, store, nil)
		if _, err := quiet.Create(ctx, alice.ProfileID, core.TransactionInput{Amount: mustMoney(t, "3"), Type: core.Income}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	})
}

func TestTransactionService_UpdatePatchDelete(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	svc := NewTransactionService(store, store, pub)
	ctx := context.Background()
	alice := seededUser(t, store, "alice", "Food", "Fuel")
	bob := seededUser(t, store, "bob")
	cats, _ := store.ListCategories(ctx, alice.ProfileID, core.CategoryQuery{})
	food := cats[0].ID

	tx, err := svc.Create(ctx, alice.ProfileID, core.TransactionInput{
		Description: "Groceries", Amount: mustMoney(t, "40"), Type: core.Expense, CategoryID: &food,
	})
	if err != nil {
		t.Fatal(err)
	}

	amount := mustMoney(t, "45.10")
	patched, err := svc.Patch(ctx, alice.ProfileID, tx.ID, core.TransactionPatch{Amount: &amount})
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if patched.Amount.String() != "45.10" || patched.Description != "Groceries" || patched.Category == nil || !patched.Date.Equal(tx.Date) {
		t.Errorf("Patch() = %+v", patched)
	}

	cleared, err := svc.Patch(ctx, alice.ProfileID, tx.ID, core.TransactionPatch{ClearCategory: true})
	if err != nil || cleared.Category != nil {
		t.Fatalf("Patch(clear) = %+v, %v", cleared, err)
	}

	if _, err := svc.Update(ctx, bob.ProfileID, tx.ID, core.TransactionInput{Amount: amount, Type: core.Expense}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update() from another profile error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, bob.ProfileID, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete() from another profile error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, alice.ProfileID, tx.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, alice.ProfileID, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}

	want := []string{amqp.EventTransactionCreated, amqp.EventTransactionUpdated, amqp.EventTransactionUpdated, amqp.EventTransactionDeleted}
	got := pub.kinds()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTransactionService_ListByType(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, store, nil)
	ctx := context.Background()
	u := seededUser(t, store, "alice")
	for _, in := range []core.TransactionInput{
		{Description: "salary", Amount: mustMoney(t, "200"), Type: core.Income},
		{Description: "rent", Amount: mustMoney(t, "50"), Type: core.Expense},
		{Description: "bonus", Amount: mustMoney(t, "20"), Type: core.Income},
	} {
		if _, err := svc.Create(ctx, u.ProfileID, in); err != nil {
			t.Fatal(err)
		}
	}

	incomes, err := svc.ListByType(ctx, u.ProfileID, core.Income, core.Filter{})
	if err != nil || len(incomes) != 2 {
		t.Fatalf("ListByType(income) = %v, %v", incomes, err)
	}
	// The caller's filter is narrowed, never widened.
	onlyBonus, _ := svc.ListByType(ctx, u.ProfileID, core.Income, core.Filter{Search: "bon"})
	if len(onlyBonus) != 1 || onlyBonus[0].Description != "bonus" {
		t.Errorf("ListByType(income, bon) = %v", onlyBonus)
	}
	expenses, _ := svc.ListByType(ctx, u.ProfileID, core.Expense, core.Filter{Type: core.Income})
	if len(expenses) != 1 {
		t.Errorf("ListByType(expense) = %v", expenses)
	}
}

func TestCategoryService(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	svc := NewCategoryService(store, store, pub)
	txs := NewTransactionService(store, store, nil)
	ctx := context.Background()
	alice := seededUser(t, store, "alice")
	bob := seededUser(t, store, "bob")

	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"blank", "   ", core.MsgBlank},
		{"too long", strings.Repeat("x", 256), core.MsgMaxLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, alice.ProfileID, tt.input)
			if msg := fieldErr(t, err, "name"); msg != tt.wantMsg {
				t.Errorf("name message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}

	c, err := svc.Create(ctx, alice.ProfileID, "  Travel ")
	if err != nil || c.Name != "Travel" {
		t.Fatalf("Create() = %+v, %v", c, err)
	}
	if _, err := svc.Get(ctx, bob.ProfileID, c.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get() from another profile error = %v", err)
	}

	unchanged, err := svc.Patch(ctx, alice.ProfileID, c.ID, CategoryPatch{})
	if err != nil || unchanged.Name != "Travel" {
		t.Errorf("Patch(empty) = %+v, %v", unchanged, err)
	}
	name := "Trips"
	renamed, err := svc.Patch(ctx, alice.ProfileID, c.ID, CategoryPatch{Name: &name})
	if err != nil || renamed.Name != "Trips" {
		t.Fatalf("Patch() = %+v, %v", renamed, err)
	}

	tx, err := txs.Create(ctx, alice.ProfileID, core.TransactionInput{Amount: mustMoney(t, "9"), Type: core.Expense, CategoryID: &c.ID})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, alice.ProfileID, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := txs.Get(ctx, alice.ProfileID, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("transaction survived its category: %v", err)
	}
	if got := pub.kinds(); len(got) != 2 || got[0] != amqp.EventTransactionDeleted || got[1] != amqp.EventCategoryDeleted {
		t.Errorf("events = %v", got)
	}
	if ev := pub.events[0]; ev.ID != tx.ID || ev.ProfileID != alice.ProfileID {
		t.Errorf("cascade event = %+v, want transaction %d", ev, tx.ID)
	}
}

func TestCategoryDeleteReportsCascade(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	svc := NewCategoryService(store, store, pub)
	txs := NewTransactionService(store, store, nil)
	ctx := context.Background()
	alice := seededUser(t, store, "alice")

	food, _ := svc.Create(ctx, alice.ProfileID, "Food")
	rent, _ := svc.Create(ctx, alice.ProfileID, "Rent")
	want := map[int64]bool{}
	for i := 0; i < 3; i++ {
		tx, err := txs.Create(ctx, alice.ProfileID, core.TransactionInput{Amount: mustMoney(t, "4"), Type: core.Expense, CategoryID: &food.ID})
		if err != nil {
			t.Fatal(err)
		}
		want[tx.ID] = true
	}
	kept, _ := txs.Create(ctx, alice.ProfileID, core.TransactionInput{Amount: mustMoney(t, "700"), Type: core.Expense, CategoryID: &rent.ID})

	if err := svc.Delete(ctx, alice.ProfileID, food.ID); err != nil {
		t.Fatal(err)
	}
	if len(pub.events) != 4 {
		t.Fatalf("events = %v", pub.kinds())
	}
	for _, ev := range pub.events[:3] {
		if ev.Type != amqp.EventTransactionDeleted || !want[ev.ID] {
			t.Errorf("unexpected cascade event %+v", ev)
		}
		delete(want, ev.ID)
	}
	if last := pub.events[3]; last.Type != amqp.EventCategoryDeleted || last.ID != food.ID {
		t.Errorf("last event = %+v", last)
	}
	if _, err := txs.Get(ctx, alice.ProfileID, kept.ID); err != nil {
		t.Errorf("other category's transaction: %v", err)
	}

	// a missing category deletes nothing and publishes nothing
	if err := svc.Delete(ctx, alice.ProfileID, food.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
	if len(pub.events) != 4 {
		t.Errorf("events after failed delete = %v", pub.kinds())
	}
}

func TestSummaryService(t *testing.T) {
	store := memory.New()
	u := seededUser(t, store, "alice")
	ctx := context.Background()

	// Wednesday 2024-02-14
	today := time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC)
	add := func(at time.Time, amount string, typ core.TransactionType) {
		t.Helper()
		if _, err := store.CreateTransaction(ctx, u.ProfileID, core.TransactionInput{Amount: mustMoney(t, amount), Type: typ}, at); err != nil {
			t.Fatal(err)
		}
	}
	add(today, "50", core.Expense)
	add(today.AddDate(0, 0, -1), "200", core.Income)
	add(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "10", core.Expense)
	add(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), "7", core.Income)
	add(time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC), "1000", core.Income)

	svc := NewSummaryService(store, time.UTC).WithClock(func() time.Time { return today })

	tests := []struct {
		period               core.Period
		expense, income, bal string
	}{
		{core.PeriodWeek, "50.00", "200.00", "150.00"},
		{core.PeriodMonth, "60.00", "200.00", "140.00"},
		{core.PeriodYear, "60.00", "207.00", "147.00"},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got, err := svc.ForPeriod(ctx, u.ProfileID, tt.period)
			if err != nil {
				t.Fatalf("ForPeriod() error = %v", err)
			}
			if got.TotalExpense.String() != tt.expense || got.TotalIncome.String() != tt.income || got.Balance.String() != tt.bal {
				t.Errorf("ForPeriod() = %s/%s/%s, want %s/%s/%s",
					got.TotalExpense, got.TotalIncome, got.Balance, tt.expense, tt.income, tt.bal)
			}
		})
	}

	t.Run("custom", func(t *testing.T) {
		got, err := svc.Custom(ctx, u.ProfileID, core.NewDate(2024, 1, 31), core.NewDate(2024, 1, 31))
		if err != nil || got.TotalIncome.String() != "7.00" || got.TotalExpense.String() != "0.00" {
			t.Errorf("Custom() = %+v, %v", got, err)
		}
	})

	t.Run("custom start after end", func(t *testing.T) {
		_, err := svc.Custom(ctx, u.ProfileID, core.NewDate(2024, 2, 2), core.NewDate(2024, 2, 1))
		if msg := fieldErr(t, err, core.NonFieldErrorsField); msg != core.MsgStartAfterEnd {
			t.Errorf("message = %q", msg)
		}
	})

	t.Run("unknown period", func(t *testing.T) {
		if _, err := svc.ForPeriod(ctx, u.ProfileID, core.PeriodCustom); !errors.Is(err, core.ErrUnknownPeriod) {
			t.Errorf("ForPeriod(custom) error = %v", err)
		}
	})
}

func newAuthService(store *memory.Store, now func() time.Time) *AuthService {
	issuer := auth.NewIssuer("test-secret-0123456789", 5*time.Minute, time.Hour).WithClock(now)
	svc := NewAuthService(store, store, issuer, auth.NewHasher(4), []string{"Groceries", "Bills"})
	svc.now = now
	return svc
}

func TestAuthService_RegisterLogin(t *testing.T) {
	store := memory.New()
	svc := newAuthService(store, time.Now)
	ctx := context.Background()

	reg := core.Registration{Username: "alice", Email: "alice@example.com", Password: "s3cure-Pass", Password2: "s3cure-Pass"}
	u, pair, err := svc.Register(ctx, reg)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Errorf("Register() pair = %+v", pair)
	}
	cats, _ := store.ListCategories(ctx, u.ProfileID, core.CategoryQuery{})
	if len(cats) != 2 {
		t.Errorf("seeded categories = %v", cats)
	}

	_, _, err = svc.Register(ctx, reg)
	if msg := fieldErr(t, err, "username"); msg != msgUsernameTaken {
		t.Errorf("duplicate username message = %q", msg)
	}

	if _, err := svc.Login(ctx, "alice", "s3cure-Pass"); err != nil {
		t.Errorf("Login() error = %v", err)
	}
	for _, tc := range [][2]string{{"alice", "wrong"}, {"nobody", "s3cure-Pass"}} {
		if _, err := svc.Login(ctx, tc[0], tc[1]); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%s, %s) error = %v, want ErrInvalidCredentials", tc[0], tc[1], err)
		}
	}

	got, err := svc.Authenticate(ctx, pair.Access)
	if err != nil || got.ID != u.ID {
		t.Errorf("Authenticate() = %+v, %v", got, err)
	}
	if _, err := svc.Authenticate(ctx, pair.Refresh); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Authenticate(refresh) error = %v", err)
	}
}

func TestAuthService_RefreshLogout(t *testing.T) {
	store := memory.New()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := newAuthService(store, clock)
	ctx := context.Background()

	alice, pair, err := svc.Register(ctx, core.Registration{Username: "alice", Email: "a@example.com", Password: "s3cure-Pass", Password2: "s3cure-Pass"})
	if err != nil {
		t.Fatal(err)
	}
	_, bobPair, err := svc.Register(ctx, core.Registration{Username: "bob", Email: "b@example.com", Password: "an0ther-Pass", Password2: "an0ther-Pass"})
	if err != nil {
		t.Fatal(err)
	}

	if access, err := svc.Refresh(ctx, pair.Refresh); err != nil || access == "" {
		t.Fatalf("Refresh() = %q, %v", access, err)
	}
	if _, err := svc.Refresh(ctx, pair.Access); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Refresh(access) error = %v", err)
	}

	if err := svc.Logout(ctx, alice.ID, bobPair.Refresh); !errors.Is(err, ErrLogoutFailed) {
		t.Errorf("Logout() with another user's token error = %v", err)
	}
	if err := svc.Logout(ctx, alice.ID, pair.Refresh); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if err := svc.Logout(ctx, alice.ID, pair.Refresh); !errors.Is(err, ErrLogoutFailed) {
		t.Errorf("second Logout() error = %v, want ErrLogoutFailed", err)
	}
	if _, err := svc.Refresh(ctx, pair.Refresh); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Refresh() after logout error = %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := svc.Refresh(ctx, bobPair.Refresh); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Refresh() of expired token error = %v", err)
	}
}

func TestAuthService_RefreshDeletedUser(t *testing.T) {
	store := memory.New()
	svc := newAuthService(store, time.Now)
	ctx := context.Background()
	u, pair, err := svc.Register(ctx, core.Registration{Username: "alice", Email: "a@example.com", Password: "s3cure-Pass", Password2: "s3cure-Pass"})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteUser(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if access, err := svc.Refresh(ctx, pair.Refresh); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Refresh() for a deleted user = %q, %v; want ErrUnauthenticated", access, err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	store := memory.New()
	svc := newAuthService(store, time.Now)
	ctx := context.Background()
	u, _, err := svc.Register(ctx, core.Registration{Username: "alice", Email: "a@example.com", Password: "s3cure-Pass", Password2: "s3cure-Pass"})
	if err != nil {
		t.Fatal(err)
	}
	u, _ = store.UserByID(ctx, u.ID)

	tests := []struct {
		name  string
		in    PasswordChange
		field string
		msg   string
	}{
		{"missing fields", PasswordChange{}, "current_password", core.MsgRequired},
		{"mismatch", PasswordChange{Current: "s3cure-Pass", New: "n3w-Passw0rd", Confirmation: "other-Pass1"}, core.NonFieldErrorsField, "New passwords do not match."},
		{"weak", PasswordChange{Current: "s3cure-Pass", New: "12345678", Confirmation: "12345678"}, "new_password", "This password is too common."},
		{"similar to username", PasswordChange{Current: "s3cure-Pass", New: "alice2024", Confirmation: "alice2024"}, "new_password", "The password is too similar to the username."},
		{"wrong current", PasswordChange{Current: "nope", New: "n3w-Passw0rd", Confirmation: "n3w-Passw0rd"}, "current_password", "Wrong password."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ChangePassword(ctx, u, tt.in)
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ChangePassword() error = %v", err)
			}
			found := false
			for _, m := range verr.Fields[tt.field] {
				found = found || m == tt.msg
			}
			if !found {
				t.Errorf("ChangePassword() errors = %v, want %q on %s", verr.Fields, tt.msg, tt.field)
			}
		})
	}

	pair, err := svc.ChangePassword(ctx, u, PasswordChange{Current: "s3cure-Pass", New: "n3w-Passw0rd", Confirmation: "n3w-Passw0rd"})
	if err != nil || pair.Access == "" {
		t.Fatalf("ChangePassword() = %+v, %v", pair, err)
	}
	if _, err := svc.Login(ctx, "alice", "n3w-Passw0rd"); err != nil {
		t.Errorf("Login() with new password error = %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "s3cure-Pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() with old password error = %v", err)
	}
}

func TestProfileService(t *testing.T) {
	store := memory.New()
	svc := NewProfileService(store, store, store)
	txs := NewTransactionService(store, store, nil)
	ctx := context.Background()
	u := seededUser(t, store, "alice", "Food", "Bills")
	for _, amount := range []string{"1", "2"} {
		if _, err := txs.Create(ctx, u.ProfileID, core.TransactionInput{Amount: mustMoney(t, amount), Type: core.Expense}); err != nil {
			t.Fatal(err)
		}
	}

	view, err := svc.View(ctx, u)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if view.Profile.Balance.String() != "100.00" || len(view.Categories) != 2 || len(view.Transactions) != 2 {
		t.Errorf("View() = %+v", view)
	}

	if err := svc.DeleteAccount(ctx, u.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if _, err := store.UserByID(ctx, u.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("user survived deletion: %v", err)
	}
	if _, err := svc.View(ctx, u); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("View() after deletion error = %v", err)
	}
	if err := svc.DeleteAccount(ctx, u.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second DeleteAccount() error = %v", err)
	}
}
