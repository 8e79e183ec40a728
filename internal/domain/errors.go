package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrCapacity     = errors.New("capacity exceeded")
)

// ViewNotFoundError reports an explorer view that expired or never existed
type ViewNotFoundError struct {
	ViewID string
}

func (e *ViewNotFoundError) Error() string {
	return "view " + e.ViewID + " not found"
}

func (e *ViewNotFoundError) StatusCode() int { return http.StatusNotFound }

var _ HTTPError = (*ViewNotFoundError)(nil)

// Is allows errors.Is() to match against ErrNotFound
func (e *ViewNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
