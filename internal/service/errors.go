package service

import "errors"

var (
	// ErrOffline is returned by a sync trigger while connectivity is absent.
	// The trigger issues no network calls and local work stays intact; the
	// error is delivered to the caller only, never to the onError funnel.
	ErrOffline = errors.New("client is offline")

	// ErrSessionStopped is returned by triggers arriving after Stop, and
	// resolves a pending debounce window that Stop cancelled.
	ErrSessionStopped = errors.New("sync session stopped")

	// ErrUserAlreadyExists is returned by registration when the principal is
	// taken.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrWrongCredentials is returned by login on an unknown principal or a
	// password mismatch. The two cases are deliberately indistinguishable.
	ErrWrongCredentials = errors.New("wrong login credentials")

	// ErrInvalidToken is returned when a presented token fails validation.
	ErrInvalidToken = errors.New("invalid token")
)
