package store

import "errors"

var (
	// ErrNotFound is returned when a requested document or user does not
	// exist.
	ErrNotFound = errors.New("document not found")

	// ErrRevConflict is returned by Put and SoftDelete when the supplied
	// revision token does not match the stored one.
	ErrRevConflict = errors.New("stale document revision")

	// ErrDuplicate is returned when an insert collides with an existing row.
	ErrDuplicate = errors.New("duplicate record")
)
