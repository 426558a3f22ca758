package token

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenNotFound is returned when a token id does not resolve
	ErrTokenNotFound = errors.New("token: not found")

	// ErrIllegalTransition is returned when the target is not a legal
	// successor of the current status
	ErrIllegalTransition = errors.New("token: illegal status transition")

	// ErrNoOpTransition is returned when the target equals the current status
	ErrNoOpTransition = errors.New("token: transition to current status")

	// ErrPreconditionFailed is returned when an injected precondition for the
	// target status does not hold
	ErrPreconditionFailed = errors.New("token: transition precondition failed")

	// ErrConflict is returned when the token changed between load and commit
	ErrConflict = errors.New("token: concurrent status change")

	// ErrPersistence is returned when the store failed to durably apply a
	// change; token and audit log are guaranteed unchanged
	ErrPersistence = errors.New("token: persistence failure")

	// ErrStandardInvalid is returned when a token names an unsupported schema
	ErrStandardInvalid = errors.New("token: unsupported standard")

	// ErrNameRequired is returned when a token is created without a name
	ErrNameRequired = errors.New("token: name is required")
)

// TransitionError captures a rejected transition with its reason
type TransitionError struct {
	From   Status
	To     Status
	Kind   error // ErrIllegalTransition, ErrNoOpTransition or ErrPreconditionFailed
	Reason string
}

func (e *TransitionError) Error() string {
	if e == nil {
		return ErrIllegalTransition.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Reason)
}

func (e *TransitionError) Unwrap() error {
	if e == nil {
		return ErrIllegalTransition
	}
	return e.Kind
}
