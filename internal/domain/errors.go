package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so callers can branch with errors.Is without leaking
// infrastructure details.
var (
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a conditional create that lost: an idempotent
	// snippet already written, or a notification lock already held. Callers
	// treat it as a success-equivalent outcome, not a failure.
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation failed")
	// ErrTimeout marks an entry-store query that exceeded its bound. The
	// aggregator degrades to an empty result instead of propagating it.
	ErrTimeout    = errors.New("query timeout")
	ErrGeneration = errors.New("generation service failed")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
)
