// Package apperr defines the shared error taxonomy for the ingestion
// pipeline and its mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingKey indicates the request carried no API key at all.
	ErrMissingKey = errors.New("api key missing")

	// ErrUnknownKey indicates the presented key matched no credential.
	ErrUnknownKey = errors.New("api key not recognized")

	// ErrInactiveKey indicates the key matched a credential that has
	// been deactivated.
	ErrInactiveKey = errors.New("api key inactive")

	// ErrForbidden indicates the caller does not own the entity it is
	// acting on.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the request payload failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates the caller exceeded its ingest rate limit.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrChannel indicates alert delivery failed after the incident
	// write was already committed. Handlers report it as response
	// metadata, not as a request failure.
	ErrChannel = errors.New("alert delivery failed")
)

// HTTPStatus maps a pipeline error to the status code the API returns
// for it. Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingKey):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownKey):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInactiveKey):
		return http.StatusForbidden
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
