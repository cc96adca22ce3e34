package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseTransactionType(t *testing.T) {
	for _, in := range []string{"income", "expense", " expense "} {
		if _, err := ParseTransactionType(in); err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
	}
	for _, in := range []string{"", "Income", "transfer"} {
		if _, err := ParseTransactionType(in); !errors.Is(err, ErrInvalidType) {
			t.Fatalf("%q: expected ErrInvalidType, got %v", in, err)
		}
	}
}

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{Description: "ok", Amount: MoneyFromCents(100), Type: Expense}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := TransactionInput{
		Description: strings.Repeat("x", MaxDescriptionLength+1),
		Amount:      Zero,
		Type:        "transfer",
	}
	err := bad.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"description", "amount", "type"} {
		if !verr.Has(field) {
			t.Fatalf("expected error on %s, got %v", field, verr.Fields)
		}
	}
	if got := verr.Fields["type"][0]; got != `"transfer" is not a valid choice.` {
		t.Fatalf("unexpected type message %q", got)
	}
}

func TestTransactionPatchApply(t *testing.T) {
	cur := Transaction{
		ID:          1,
		Category:    &CategoryRef{ID: 7, Name: "Bills"},
		Description: "rent",
		Amount:      MoneyFromCents(50000),
		Type:        Expense,
	}

	amount := MoneyFromCents(100)
	in := TransactionPatch{Amount: &amount}.Apply(cur)
	if in.Description != "rent" || in.Type != Expense || in.Amount.Cents() != 100 {
		t.Fatalf("unexpected merge %+v", in)
	}
	if in.CategoryID == nil || *in.CategoryID != 7 {
		t.Fatalf("category should be kept, got %v", in.CategoryID)
	}

	in = TransactionPatch{ClearCategory: true}.Apply(cur)
	if in.CategoryID != nil {
		t.Fatalf("category should be cleared")
	}
}

func TestValidateCategoryName(t *testing.T) {
	if name, err := ValidateCategoryName("  Food "); err != nil || name != "Food" {
		t.Fatalf("got %q, %v", name, err)
	}
	if _, err := ValidateCategoryName("   "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := ValidateCategoryName(strings.Repeat("a", 256)); !errors.Is(err, ErrCategoryNameLong) {
		t.Fatalf("expected ErrCategoryNameLong, got %v", err)
	}
}

func TestSortTransactions(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{ID: 1, Date: base},
		{ID: 2, Date: base.Add(time.Hour)},
		{ID: 3, Date: base},
	}
	SortTransactions(txs)
	got := []int64{txs[0].ID, txs[1].ID, txs[2].ID}
	want := []int64{2, 3, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order %v, want %v", got, want)
		}
	}
}

func TestDateBoundsInLocation(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	d := NewDate(2025, 3, 30) // DST switch day, 23 hours long
	start, end := d.StartIn(rome), d.EndIn(rome)
	if start.Hour() != 0 || end.Day() != 30 || end.Hour() != 23 || end.Nanosecond() != 999999999 {
		t.Fatalf("unexpected bounds %v .. %v", start, end)
	}
	if got := end.Sub(start) + time.Nanosecond; got != 23*time.Hour {
		t.Fatalf("day length %v, want 23h", got)
	}
}

func TestRegistrationValidate(t *testing.T) {
	good := Registration{Username: "newuser", Email: "new@example.com", Password: "newpass123", Password2: "newpass123"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		reg   Registration
		field string
	}{
		{"mismatch", Registration{Username: "u1", Email: "a@b.co", Password: "S3cure!pass", Password2: "other!pass"}, NonFieldErrorsField},
		{"short", Registration{Username: "u1", Email: "a@b.co", Password: "x1", Password2: "x1"}, "password"},
		{"common", Registration{Username: "u1", Email: "a@b.co", Password: "password123", Password2: "password123"}, "password"},
		{"numeric", Registration{Username: "u1", Email: "a@b.co", Password: "9876543210", Password2: "9876543210"}, "password"},
		{"bad email", Registration{Username: "u1", Email: "nope", Password: "S3cure!pass", Password2: "S3cure!pass"}, "email"},
		{"bad username", Registration{Username: "a b", Email: "a@b.co", Password: "S3cure!pass", Password2: "S3cure!pass"}, "username"},
		{"missing", Registration{}, "username"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var verr *ValidationError
			if err := tc.reg.Validate(); !errors.As(err, &verr) || !verr.Has(tc.field) {
				t.Fatalf("expected error on %s, got %v", tc.field, err)
			}
		})
	}
}
