package core

import (
	"math"
	"strings"
	"time"
)

// Filter is a conjunction of optional constraints over a profile's ledger.
// A nil or zero field imposes no restriction. Both time bounds are inclusive.
type Filter struct {
	Since      *time.Time
	Until      *time.Time
	MinAmount  *Money
	MaxAmount  *Money
	Type       TransactionType
	CategoryID *int64
	Search     string
}

// WindowFilter restricts a filter to the instants covered by w in loc.
func WindowFilter(w Window, loc *time.Location) Filter {
	since, until := w.Bounds(loc)
	return Filter{Since: &since, Until: &until}
}

// WithType returns a copy of f restricted to one transaction type.
func (f Filter) WithType(t TransactionType) Filter {
	f.Type = t
	return f
}

// SearchTerms splits the search string the way the list endpoint documents:
// on whitespace and commas, dropping empty terms.
func (f Filter) SearchTerms() []string {
	return strings.FieldsFunc(f.Search, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// Match reports whether t satisfies every supplied constraint.
func (f Filter) Match(t Transaction) bool {
	if f.Since != nil && t.Date.Before(*f.Since) {
		return false
	}
	if f.Until != nil && t.Date.After(*f.Until) {
		return false
	}
	if f.MinAmount != nil && t.Amount.Cmp(*f.MinAmount) < 0 {
		return false
	}
	if f.MaxAmount != nil && t.Amount.Cmp(*f.MaxAmount) > 0 {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.CategoryID != nil && (t.Category == nil || t.Category.ID != *f.CategoryID) {
		return false
	}
	if terms := f.SearchTerms(); len(terms) > 0 {
		desc := strings.ToLower(t.Description)
		for _, term := range terms {
			if !strings.Contains(desc, strings.ToLower(term)) {
				return false
			}
		}
	}
	return true
}

// Apply returns the transactions of txs matching f, preserving order.
func (f Filter) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Page selects a slice of an ordered result set. Size 0 means everything.
type Page struct {
	Number int
	Size   int
}

// Offset is the index of the first item on the page. It saturates at
// math.MaxInt instead of overflowing.
func (p Page) Offset() int {
	if p.Size <= 0 || p.Number <= 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// Slice bounds a result set of n items to the page.
func (p Page) Slice(n int) (lo, hi int) {
	if p.Size <= 0 {
		return 0, n
	}
	lo = min(p.Offset(), n)
	hi = lo + min(p.Size, n-lo)
	return lo, hi
}

// CategoryQuery filters the category list.
type CategoryQuery struct {
	Name   string // exact match
	Search string // case-insensitive substring
}

// Match reports whether c satisfies the query.
func (q CategoryQuery) Match(c Category) bool {
	if q.Name != "" && c.Name != q.Name {
		return false
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		name := strings.ToLower(c.Name)
		for _, term := range strings.Fields(strings.ReplaceAll(s, ",", " ")) {
			if !strings.Contains(name, strings.ToLower(term)) {
				return false
			}
		}
	}
	return true
}
