package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrUnknownSource   = errors.New("unknown scrape source")
	ErrUnknownPeriod   = errors.New("unknown time period")
	ErrMissingAPIKey   = errors.New("secondary API key is required")
	ErrEmptyResponse   = errors.New("empty response body")
	ErrNoContainers    = errors.New("no item containers matched")
	ErrMissingName     = errors.New("container yielded no name")
	ErrDeniedPath      = errors.New("item link matches denied path")
	ErrInvalidEnvelope = errors.New("render API response carries no HTML")
)

// ValidationError reports a malformed scrape request. It is surfaced before
// any network activity and is fatal to the single request only.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a request field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FetchError wraps errors that occur while fetching a URL. Fetch failures
// are always recoverable by the caller: the URL contributes zero records.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractError wraps errors that occur while extracting records from a page.
type ExtractError struct {
	URL      string
	Strategy string
	Err      error
}

func (e *ExtractError) Error() string {
	if e.Strategy != "" {
		return fmt.Sprintf("extract error for %s (strategy=%q): %v", e.URL, e.Strategy, e.Err)
	}
	return fmt.Sprintf("extract error for %s: %v", e.URL, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// EnrichError wraps a per-item enrichment failure. The affected listing
// keeps its pre-enrichment field values.
type EnrichError struct {
	Name string
	Err  error
}

func (e *EnrichError) Error() string {
	return fmt.Sprintf("enrich error for %q: %v", e.Name, e.Err)
}

func (e *EnrichError) Unwrap() error { return e.Err }
