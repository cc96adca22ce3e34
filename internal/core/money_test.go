package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		err   error
	}{
		{"1", 100, nil},
		{"1.0", 100, nil},
		{"52.67", 5267, nil},
		{"1,23", 123, nil},
		{"0.01", 1, nil},
		{" 2.50 ", 250, nil},
		{"1.500", 150, nil},
		{"-3.10", -310, nil},
		{"9999999999.99", 999999999999, nil},
		{"1.005", 0, ErrTooManyDecimal},
		{"10000000000", 0, ErrTooManyDigits},
		{"abc", 0, ErrInvalidAmount},
		{"1.2.3", 0, ErrInvalidAmount},
		{"", 0, ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q expected %v, got %v", tc.in, tc.err, err)
			}
			continue
		}
		if err != nil || got.Cents() != tc.cents {
			t.Fatalf("%q expected %d cents, got %d (err=%v)", tc.in, tc.cents, got.Cents(), err)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		5000:   "50.00",
		123456: "1234.56",
		-10000: "-100.00",
	}
	for cents, want := range cases {
		if got := MoneyFromCents(cents).String(); got != want {
			t.Fatalf("%d cents: got %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyArithmeticIsExact(t *testing.T) {
	sum := Zero
	for i := 0; i < 10; i++ {
		sum = sum.Add(MoneyFromCents(10))
	}
	if !sum.Equal(MoneyFromCents(100)) {
		t.Fatalf("ten times 0.10 = %s, want 1.00", sum)
	}
	if got := MoneyFromCents(5000).Sub(MoneyFromCents(20000)); got.String() != "-150.00" {
		t.Fatalf("got %s, want -150.00", got)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := MoneyFromCents(1).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := Zero.Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := MoneyFromCents(-1).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{MoneyFromCents(5267)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"amount":"52.67"}` {
		t.Fatalf("unexpected encoding %s", b)
	}

	for _, in := range []string{`"52.67"`, `52.67`, `"52,67"`} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if m.Cents() != 5267 {
			t.Fatalf("%s decoded to %d cents", in, m.Cents())
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`null`), &m); err == nil {
		t.Fatalf("expected error for null")
	}
	if err := json.Unmarshal([]byte(`"1.234"`), &m); !errors.Is(err, ErrTooManyDecimal) {
		t.Fatalf("expected ErrTooManyDecimal, got %v", err)
	}
}
