// Package status defines the error taxonomy shared by every planner
// component. All errors are surfaced to callers verbatim; the core
// never retries or suppresses them.
package status

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a lost update detected by the store's version
	// check, or a duplicate operation racing itself. Callers are
	// expected to retry the whole operation, never a part of it.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks an unknown event, guest, vendor or
	// participant.
	ErrNotFound = errors.New("not found")

	// ErrSignatureInvalid marks a payment verification whose supplied
	// signature does not match the recomputed one.
	ErrSignatureInvalid = errors.New("payment signature invalid")

	// ErrExternalService marks a payment gateway failure. No state was
	// changed; retrying is the caller's decision.
	ErrExternalService = errors.New("external service failed")

	// ErrNegativeBudget marks a budget delta that would drive spent
	// below zero while policy requires a non-negative figure.
	ErrNegativeBudget = errors.New("spent budget cannot go negative")
)

// GuestLimitError reports a guest addition that would exceed the
// event's capacity ceiling. The operation performed no mutation.
type GuestLimitError struct {
	Current           int
	Limit             int
	Requested         int
	AdditionalAllowed int
}

func (e *GuestLimitError) Error() string {
	return fmt.Sprintf("guest limit exceeded: %d requested, %d of %d used, %d allowed",
		e.Requested, e.Current, e.Limit, e.AdditionalAllowed)
}

// IsGuestLimit reports whether err is a GuestLimitError.
func IsGuestLimit(err error) bool {
	var gle *GuestLimitError
	return errors.As(err, &gle)
}
