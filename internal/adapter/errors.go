package adapter

import "errors"

var (
	// ErrBadRequest corresponds to HTTP 400 responses.
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized corresponds to a single HTTP 401 response, before the
	// refresh-and-retry pass has run.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrAuthExpired is returned when a request still fails with 401 after
	// one token refresh, or when the refresh token itself is rejected. The
	// user must log in again.
	ErrAuthExpired = errors.New("authorization expired")

	// ErrForbidden corresponds to HTTP 403 responses.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound corresponds to HTTP 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrConflict corresponds to HTTP 409 responses.
	ErrConflict = errors.New("conflict")

	// ErrInternalServerError corresponds to HTTP 500 responses.
	ErrInternalServerError = errors.New("internal server error")

	// ErrBadGateway corresponds to HTTP 502 responses.
	ErrBadGateway = errors.New("bad gateway")
)
