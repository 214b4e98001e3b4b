package claims

import (
	"errors"
	"fmt"
)

// ValidationError reports a submission rejected by a business rule.
// The submitter can recover by correcting the input; nothing is persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StateError reports an illegal transition attempt: wrong role for the
// current stage, a terminal-state re-transition, or a missing rejection
// reason. Claim state is unchanged on failure.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return e.Reason
}

// NotFoundError reports a claim ID that does not exist.
type NotFoundError struct {
	ClaimID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("claim with ID %d not found", e.ClaimID)
}

// IsValidation returns true if err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStateViolation returns true if err is a StateError
func IsStateViolation(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// IsNotFound returns true if err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
