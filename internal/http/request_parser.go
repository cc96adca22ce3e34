// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// JSON or form-encoded bodies, list filters and pagination parameters.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jfprgin/home-budget/internal/core"
)

// errMalformedBody marks a body that is neither a JSON object nor form data.
var errMalformedBody = errors.New("malformed request body")

const (
	msgNull          = "This field may not be null."
	msgNotAString    = "Not a valid string."
	msgEnterNumber   = "Enter a number."
	msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
)

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON objects and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and stores it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(r.Body)
	}
	return p
}

// Parse decodes the body as a JSON object or form data. Numbers are kept as
// json.Number so amounts never pass through float64.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if p.IsJSONContent() || trimmed[0] == '{' || trimmed[0] == '[' {
		dec := json.NewDecoder(strings.NewReader(trimmed))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			p.err = fmt.Errorf("%w: JSON parse error - %v", errMalformedBody, err)
			return p.err
		}
		obj, ok := v.(map[string]any)
		if !ok {
			p.err = fmt.Errorf("%w: Invalid data. Expected a dictionary, but got %s.", errMalformedBody, jsonKind(v))
			return p.err
		}
		p.jsonData = obj
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
	}
	return p.err
}

// IsJSONContent reports whether the Content-Type header names JSON.
func (p *RequestBodyParser) IsJSONContent() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(p.contentType)), "application/json")
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// Has reports whether key was sent, even with a null value.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	_, ok := p.formData[key]
	return ok
}

// IsNull reports whether key was sent as JSON null.
func (p *RequestBodyParser) IsNull(key string) bool {
	if p.jsonData == nil {
		return false
	}
	v, ok := p.jsonData[key]
	return ok && v == nil
}

// Get returns a trimmed string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			s, _ := stringValue(val)
			return strings.TrimSpace(sanitizeInput(s))
		}
		return ""
	}
	return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
}

// Value returns the untrimmed value of key. Passwords are read this way.
func (p *RequestBodyParser) Value(key string) string {
	if p.jsonData != nil {
		s, _ := stringValue(p.jsonData[key])
		return s
	}
	return p.formData.Get(key)
}

// Scalar reports whether key holds a string or number, the only shapes a
// text field accepts.
func (p *RequestBodyParser) Scalar(key string) bool {
	if p.jsonData == nil {
		return true
	}
	_, ok := stringValue(p.jsonData[key])
	return ok
}

// GetRaw returns the raw body bytes.
func (p *RequestBodyParser) GetRaw() []byte {
	return p.body
}

func stringValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	default:
		return "", false
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case []any:
		return "list"
	case string:
		return "str"
	case json.Number:
		return "int"
	case bool:
		return "bool"
	default:
		return "NoneType"
	}
}

// sanitizeInput drops control characters other than tab, newline and
// carriage return.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// parseTransactionBody reads the writable transaction fields. With partial
// unset, amount and type are mandatory.
func parseTransactionBody(p *RequestBodyParser, partial bool) (core.TransactionPatch, error) {
	var patch core.TransactionPatch
	verr := &core.ValidationError{}

	if p.Has("description") {
		switch {
		case p.IsNull("description"):
			verr.Add("description", msgNull)
		case !p.Scalar("description"):
			verr.Add("description", msgNotAString)
		default:
			d := p.Get("description")
			patch.Description = &d
		}
	}

	if p.Has("amount") || !partial {
		switch {
		case !p.Has("amount"):
			verr.Add("amount", core.MsgRequired)
		case p.IsNull("amount"):
			verr.Add("amount", msgNull)
		default:
			m, err := core.ParseMoney(p.Get("amount"))
			if err != nil {
				verr.Add("amount", moneyMessage(err))
			} else {
				patch.Amount = &m
			}
		}
	}

	if p.Has("type") || !partial {
		switch {
		case !p.Has("type"):
			verr.Add("type", core.MsgRequired)
		case p.IsNull("type"):
			verr.Add("type", msgNull)
		default:
			raw := p.Get("type")
			t, err := core.ParseTransactionType(raw)
			if err != nil {
				verr.Add("type", core.InvalidChoice(raw))
			} else {
				patch.Type = &t
			}
		}
	}

	if p.Has("category_id") {
		raw := p.Get("category_id")
		switch {
		case p.IsNull("category_id") || (!p.IsJSON() && raw == ""):
			patch.ClearCategory = true
		default:
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				verr.Add("category_id", core.MsgInvalidInteger)
			} else {
				patch.CategoryID = &id
			}
		}
	}

	return patch, verr.OrNil()
}

// transactionInput turns a complete patch into create/update input.
func transactionInput(p core.TransactionPatch) core.TransactionInput {
	in := core.TransactionInput{CategoryID: p.CategoryID}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Amount != nil {
		in.Amount = *p.Amount
	}
	if p.Type != nil {
		in.Type = *p.Type
	}
	return in
}

func moneyMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrTooManyDecimal):
		return core.MsgMaxDecimals
	case errors.Is(err, core.ErrTooManyDigits):
		return core.MsgMaxDigits
	default:
		return core.MsgInvalidNumber
	}
}

// parseFilter reads the transaction list filters from the query string.
// Dates are calendar days in loc; end_date covers the whole day.
func parseFilter(q url.Values, loc *time.Location) (core.Filter, error) {
	var f core.Filter
	verr := &core.ValidationError{}

	if v := strings.TrimSpace(q.Get("start_date")); v != "" {
		if d, err := core.ParseDate(v); err != nil {
			verr.Add("start_date", core.MsgInvalidDate)
		} else {
			since := d.StartIn(loc)
			f.Since = &since
		}
	}
	if v := strings.TrimSpace(q.Get("end_date")); v != "" {
		if d, err := core.ParseDate(v); err != nil {
			verr.Add("end_date", core.MsgInvalidDate)
		} else {
			until := d.EndIn(loc)
			f.Until = &until
		}
	}
	for _, key := range []string{"min_amount", "max_amount"} {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			continue
		}
		m, err := core.ParseMoney(v)
		if err != nil {
			verr.Add(key, msgEnterNumber)
			continue
		}
		if key == "min_amount" {
			f.MinAmount = &m
		} else {
			f.MaxAmount = &m
		}
	}
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		t, err := core.ParseTransactionType(v)
		if err != nil {
			verr.Add("type", "Select a valid choice. "+v+" is not one of the available choices.")
		} else {
			f.Type = t
		}
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			verr.Add("category", msgInvalidChoice)
		} else {
			f.CategoryID = &id
		}
	}
	f.Search = q.Get("search")

	return f, verr.OrNil()
}

// parseCategoryQuery reads the category list filters.
func parseCategoryQuery(q url.Values) core.CategoryQuery {
	return core.CategoryQuery{
		Name:   q.Get("name"),
		Search: q.Get("search"),
	}
}

// parsePage reads page and page_size. A malformed page number reports
// ok=false; a malformed page_size falls back to the default.
func parsePage(q url.Values, defaultSize, maxSize int) (core.Page, bool) {
	p := core.Page{Number: 1, Size: defaultSize}
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Size = n
		}
	}
	if maxSize > 0 && p.Size > maxSize {
		p.Size = maxSize
	}
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		n, err := strconv.Atoi(v)
		// pages whose offset overflows int cannot exist
		if err != nil || n < 1 || (p.Size > 0 && n-1 > math.MaxInt/p.Size) {
			return p, false
		}
		p.Number = n
	}
	return p, true
}

// parseCustomDates reads the mandatory start and end days of a custom summary.
func parseCustomDates(q url.Values) (start, end core.Date, err error) {
	verr := &core.ValidationError{}
	read := func(key string) core.Date {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			verr.Add(key, core.MsgRequired)
			return core.Date{}
		}
		d, err := core.ParseDate(v)
		if err != nil {
			verr.Add(key, core.MsgInvalidDate)
		}
		return d
	}
	start = read("start")
	end = read("end")
	return start, end, verr.OrNil()
}
