package core

import (
	"sort"
	"strings"
)

// ValidationError collects field-level problems with a request. Nothing is
// persisted when one is returned.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an error with a single field message.
func NewValidationError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// Add appends a message for field.
func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

// Has reports whether field already has an error.
func (v *ValidationError) Has(field string) bool {
	return len(v.Fields[field]) > 0
}

// Merge copies every message from other into v.
func (v *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msgs := range other.Fields {
		for _, m := range msgs {
			v.Add(field, m)
		}
	}
}

// OrNil returns v as an error when it holds messages, nil otherwise.
func (v *ValidationError) OrNil() error {
	if v == nil || len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
