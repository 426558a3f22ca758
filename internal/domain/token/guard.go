package token

import "fmt"

// Precondition is a pure, status-keyed predicate gating entry into a status.
// It must not perform I/O. A nil return allows the transition; a non-nil
// return carries the human-readable reason it was blocked.
type Precondition func(tok *Token) error

// Check is the discriminated result of a guard evaluation. The guard never
// returns a Go error to its caller.
type Check struct {
	Allowed bool
	// Kind is one of ErrIllegalTransition, ErrNoOpTransition or
	// ErrPreconditionFailed when Allowed is false, nil otherwise.
	Kind   error
	Reason string
}

// CheckTransition validates a requested transition for the token against the
// transition table and the injected preconditions.
//
// The no-op check runs before the table check: a self-target can never be in
// the table, so callers repeating a completed transition get the more
// specific NoOp result instead of a generic illegal-transition failure.
func CheckTransition(tok *Token, to Status, preconditions map[Status]Precondition) Check {
	from := tok.Status

	if to == from {
		return Check{
			Kind:   ErrNoOpTransition,
			Reason: fmt.Sprintf("token is already %s", from),
		}
	}

	if !CanReach(from, to) {
		reason := fmt.Sprintf("cannot move from %s to %s", from, to)
		if from.IsTerminal() {
			reason = fmt.Sprintf("%s is a final status", from)
		}
		return Check{Kind: ErrIllegalTransition, Reason: reason}
	}

	if pre, ok := preconditions[to]; ok && pre != nil {
		if err := pre(tok); err != nil {
			return Check{Kind: ErrPreconditionFailed, Reason: err.Error()}
		}
	}

	return Check{Allowed: true}
}

// Err converts a failed check into the error the update command surfaces.
// Returns nil for an allowed check.
func (c Check) Err(from, to Status) error {
	if c.Allowed {
		return nil
	}
	return &TransitionError{From: from, To: to, Kind: c.Kind, Reason: c.Reason}
}
