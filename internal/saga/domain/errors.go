package domain

import (
	apperrors "github.com/allisson/studygroups/internal/errors"
)

var (
	// ErrInvalidTransition indicates a status change the state machine forbids.
	ErrInvalidTransition = apperrors.New("invalid saga status transition")

	// ErrSagaAborted indicates an infrastructure fault outlasted the step retry budget.
	ErrSagaAborted = apperrors.New("saga aborted")

	// ErrCompensationFailed indicates a compensation could not undo a committed step.
	// The execution is left in COMPENSATION_FAILED for operators.
	ErrCompensationFailed = apperrors.New("saga compensation failed")

	// ErrExecutionNotFound indicates the saga execution log has no such entry.
	ErrExecutionNotFound = apperrors.Wrap(apperrors.ErrNotFound, "saga execution not found")
)
