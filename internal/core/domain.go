package core

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	MaxDescriptionLength  = 255
	MaxCategoryNameLength = 255
)

type (
	// TransactionType is the direction of a transaction.
	TransactionType string

	// Date is a calendar day. The time part is always midnight UTC.
	Date struct {
		time.Time
	}

	// Profile is a user's financial account scope.
	Profile struct {
		ID      int64
		UserID  int64
		Balance Money
	}

	Category struct {
		ID        int64
		ProfileID *int64 // nil for global categories
		Name      string
	}

	// CategoryRef is the short form of a category embedded in a transaction.
	CategoryRef struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	Transaction struct {
		ID          int64
		ProfileID   int64
		Category    *CategoryRef
		Description string
		Amount      Money
		Type        TransactionType
		Date        time.Time // set once at creation
	}

	// TransactionInput carries the client-writable fields of a transaction.
	TransactionInput struct {
		Description string
		Amount      Money
		Type        TransactionType
		CategoryID  *int64
	}

	// TransactionPatch carries a partial update. Nil fields are left as is;
	// ClearCategory drops the category reference.
	TransactionPatch struct {
		Description   *string
		Amount        *Money
		Type          *TransactionType
		CategoryID    *int64
		ClearCategory bool
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyName        = errors.New("empty category name")
	ErrCategoryNameLong = errors.New("category name too long (max 255 characters)")
)

// Field error messages surfaced to API clients.
const (
	MsgRequired         = "This field is required."
	MsgBlank            = "This field may not be blank."
	MsgInvalidDate      = "Enter a valid date."
	MsgInvalidNumber    = "A valid number is required."
	MsgInvalidInteger   = "A valid integer is required."
	MsgMaxDecimals      = "Ensure that there are no more than 2 decimal places."
	MsgMaxDigits        = "Ensure that there are no more than 12 digits in total."
	MsgPositiveAmount   = "Ensure this value is greater than 0."
	MsgMaxLength        = "Ensure this field has no more than 255 characters."
	MsgForeignCategory  = "Category does not exist or does not belong to the user."
	MsgStartAfterEnd    = "Start date must be before end date."
	NonFieldErrorsField = "non_field_errors"
)

// ParseTransactionType validates a raw type value.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.TrimSpace(s)); t {
	case Income, Expense:
		return t, nil
	default:
		return "", ErrInvalidType
	}
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// InvalidChoice is the message used when a value is outside an enumeration.
func InvalidChoice(v string) string {
	return `"` + v + `" is not a valid choice.`
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// AddDays returns the day n days after d.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// StartIn returns the first instant of the day in loc.
func (d Date) StartIn(loc *time.Location) time.Time {
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// EndIn returns the last representable instant of the day in loc.
func (d Date) EndIn(loc *time.Location) time.Time {
	y, m, day := d.Time.Date()
	return time.Date(y, m, day+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

// Validate checks the fields shared by create and full update.
func (in TransactionInput) Validate() error {
	verr := &ValidationError{}
	if utf8.RuneCountInString(in.Description) > MaxDescriptionLength {
		verr.Add("description", MsgMaxLength)
	}
	if !in.Type.Valid() {
		verr.Add("type", InvalidChoice(string(in.Type)))
	}
	if err := in.Amount.Validate(); err != nil {
		verr.Add("amount", MsgPositiveAmount)
	}
	return verr.OrNil()
}

// Apply returns the input produced by applying p on top of t.
func (p TransactionPatch) Apply(t Transaction) TransactionInput {
	in := TransactionInput{
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
	}
	if t.Category != nil {
		id := t.Category.ID
		in.CategoryID = &id
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Amount != nil {
		in.Amount = *p.Amount
	}
	if p.Type != nil {
		in.Type = *p.Type
	}
	switch {
	case p.ClearCategory:
		in.CategoryID = nil
	case p.CategoryID != nil:
		in.CategoryID = p.CategoryID
	}
	return in
}

// ValidateCategoryName trims and checks a category name.
func ValidateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return "", ErrCategoryNameLong
	}
	return name, nil
}

// SortCategories orders categories by name, then id.
func SortCategories(cats []Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].Name != cats[j].Name {
			return cats[i].Name < cats[j].Name
		}
		return cats[i].ID < cats[j].ID
	})
}

// SortTransactions orders transactions most recent first, then by id descending.
func SortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].ID > txs[j].ID
	})
}
