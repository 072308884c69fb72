/*
errors.go - Error taxonomy for the approval core

PURPOSE:
  Five sentinel errors cover every refusal the orchestrators can make.
  Structured wrappers carry the offending id/state and Unwrap() to the
  sentinel so callers discriminate with errors.Is().

PROPAGATION POLICY:
  Any failure inside an atomic transaction aborts the whole transaction.
  The API layer shows the error message to the admin; underlying database
  causes are logged, never surfaced verbatim.
*/
package flightops

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a submission/deposit/fuel-log id does
	// not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidState is returned when an operation is attempted on a
	// submission already in a terminal or incompatible state.
	ErrInvalidState = errors.New("invalid submission state")

	// ErrIncompleteData is returned when required numeric fields are
	// missing from a submission at approval time.
	ErrIncompleteData = errors.New("incomplete submission data")

	// ErrAlreadyApproved is returned when a deposit or fuel log has
	// already been approved.
	ErrAlreadyApproved = errors.New("already approved")

	// ErrCounterRegression is returned at submission time when reported
	// finals fall below the aircraft's current meters. Approval does NOT
	// re-check this; the guard lives here on purpose.
	ErrCounterRegression = errors.New("reported counters below aircraft baseline")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which record kind and id was missing.
type NotFoundError struct {
	Kind string // "submission", "deposit", "fuel log", "aircraft"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidStateError reports the state that blocked the operation.
type InvalidStateError struct {
	SubmissionID int64
	Status       Status
	Operation    string // "approve", "cancel"
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s submission %d in state %s",
		e.Operation, e.SubmissionID, e.Status)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// IncompleteDataError names the missing submission fields.
type IncompleteDataError struct {
	SubmissionID int64
	Missing      []string
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("submission %d missing required fields: %v",
		e.SubmissionID, e.Missing)
}

func (e *IncompleteDataError) Unwrap() error { return ErrIncompleteData }

// AlreadyApprovedError identifies the financial record.
type AlreadyApprovedError struct {
	Kind string // "deposit", "fuel log"
	ID   int64
}

func (e *AlreadyApprovedError) Error() string {
	return fmt.Sprintf("%s %d already approved", e.Kind, e.ID)
}

func (e *AlreadyApprovedError) Unwrap() error { return ErrAlreadyApproved }
