package service

import (
	"errors"
	"fmt"
)

// Domain errors. Handlers map these onto HTTP statuses.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidVote     = errors.New("vote already cast in this direction")
	ErrContentRejected = errors.New("content rejected")
	ErrInvalidInput    = errors.New("invalid input")
)

// CascadeStepError describes a deletion cascade step that did not complete.
// It is logged and recorded in the DeletionReport, never returned to callers
// as a failure of the whole operation.
type CascadeStepError struct {
	Step      string
	WarningID string
	Err       error
}

func (e *CascadeStepError) Error() string {
	return fmt.Sprintf("cascade %s for warning %s: %v", e.Step, e.WarningID, e.Err)
}

func (e *CascadeStepError) Unwrap() error {
	return e.Err
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
