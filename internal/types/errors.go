package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrElementNotFound = errors.New("element not found")
	ErrNoResults       = errors.New("no result cards appeared")
)

// NavigationError wraps failures while driving the browser to or around the
// result page.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation error for %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// StorageError wraps errors from a lead store backend.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s, %s): %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// EnrichError wraps per-lead enrichment failures. The enricher logs and
// swallows these; they never abort a batch.
type EnrichError struct {
	LeadID string
	Name   string
	Err    error
}

func (e *EnrichError) Error() string {
	return fmt.Sprintf("enrich error for lead %s (%q): %v", e.LeadID, e.Name, e.Err)
}

func (e *EnrichError) Unwrap() error { return e.Err }
