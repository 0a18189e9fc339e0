package utils

import (
	"errors"
	"sort"
	"strings"
)

// Common application errors used across services.
var (
	ErrConfigNotFound      = errors.New("CONFIG_NOT_FOUND")
	ErrNoActiveConfig      = errors.New("NO_ACTIVE_CONFIG")
	ErrActiveConflict      = errors.New("ACTIVE_CONFLICT")
	ErrDuplicateShopName   = errors.New("DUPLICATE_SHOP_NAME")
	ErrUnsupportedTestType = errors.New("UNSUPPORTED_TEST_TYPE")
)

// ValidationError carries per-field messages, rendered as {"field": ["msg"]}.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError builds a ValidationError with a single message.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Err returns e as an error, or nil when no field failed.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
