package tmdb

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrMissingCredential is returned before any request is issued when no
	// read access token is configured
	ErrMissingCredential = errors.New("missing TMDB read access token: set MARQUEE_TMDB_TOKEN or tmdb.token")
	// ErrInvalidFilters indicates a discover filter set failed validation
	ErrInvalidFilters = errors.New("invalid discover filters")
)

// HTTPError is returned for any non-2xx response. The body is kept for
// diagnostics and is not parsed.
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("TMDB error %d: %s", e.StatusCode, e.Body)
}

// IsNotFound checks if the error indicates a not found response
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *HTTPError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// NetworkError wraps a transport failure where no response was received
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
