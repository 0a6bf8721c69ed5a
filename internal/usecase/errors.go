package usecase

import "github.com/cockroachdb/errors"

// Sentinel errors returned by the services. Callers wrap them with detail
// via fmt.Errorf("%w: ...") and the HTTP layer maps each to one status.
var (
	// ErrInvalidInput is a malformed request: missing ids, bad rounds, unknown names.
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	// ErrForbidden covers non-members and non-admin overrides.
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict is returned when concurrent writers keep winning an
	// optimistic update.
	ErrConflict              = errors.New("concurrent update conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
