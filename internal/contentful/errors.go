package contentful

import (
	"errors"
	"fmt"
)

// ErrVersionConflict is returned when the repository rejects a write
// because the entry's stored version advanced since it was read
// (optimistic concurrency, HTTP 409). Callers resolve it with a fresh
// read and a bounded retry; it is never retried at the transport level.
var ErrVersionConflict = errors.New("contentful: version conflict")

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("contentful: entry not found")

// APIError is any other non-2xx response from the repository.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("contentful: API error (status %d): %s", e.StatusCode, e.Body)
}
