package service

import "errors"

// Sentinel errors returned by the services. Callers match them with
// errors.Is; the HTTP layer maps each to a client-error status.
var (
	// ErrValidation covers missing required fields and edit patches
	// with nothing to change.
	ErrValidation = errors.New("invalid request")

	// ErrNotFound covers entities that are absent or soft-deleted; the
	// two cases are indistinguishable to callers.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the supplied password did not verify
	// against the stored hash.
	ErrUnauthorized = errors.New("password mismatch")
)
