package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors returned by Config.Validate.
// Package-level sentinel errors let callers use errors.Is while still
// providing human-readable messages.
var (
	// ErrNoSeedURL is returned when no documentation URL is specified.
	ErrNoSeedURL = errors.New("no URL specified: provide a documentation site URL")

	// ErrInvalidSeedURL is returned when the seed URL is not a parseable
	// http or https URL with a host.
	ErrInvalidSeedURL = errors.New("invalid URL: must be an absolute http(s) URL")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrInvalidMaxPages is returned when the page budget is negative.
	// Use 0 for unlimited.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidConcurrency is returned when the worker count is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidRequestDelay is returned when the request delay is negative.
	// Use 0 for no pacing between requests.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxRetries is returned when the retry count is not positive.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to disable the limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)

// PatternError reports an include/exclude pattern that failed to compile.
type PatternError struct {
	// Pattern is the offending regular expression.
	Pattern string

	// Err is the underlying regexp compile error.
	Err error
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid URL pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the underlying compile error.
func (e *PatternError) Unwrap() error { return e.Err }
