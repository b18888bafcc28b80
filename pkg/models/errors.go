package models

import (
	"errors"
	"fmt"
)

// ErrValidation marks missing or malformed caller input.
var ErrValidation = errors.New("validation failed")

// ErrNotFound is returned when aggregation found nothing at all.
var ErrNotFound = errors.New("not found")

// UpstreamError wraps a network or provider failure.
type UpstreamError struct {
	Source     string // "profile", "newsapi", "twitter", ...
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: GET %s: HTTP %d", e.Source, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: GET %s: %v", e.Source, e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ParseError describes page structure that did not match expectations.
// It is logged and degraded to sentinels, never returned to API callers.
type ParseError struct {
	Section string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Section, e.Reason)
}

// Validationf builds an error wrapping ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
