// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
	// ErrUpstream marks a failed fetch from a backing store. The whole refresh
	// cycle is abandoned; callers surface a single retryable signal.
	ErrUpstream = errors.New("upstream fetch failed")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrUpstream):
		Problem(w, http.StatusBadGateway, "Refresh Failed", "data refresh failed, try again")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
