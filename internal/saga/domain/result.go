package domain

import "github.com/google/uuid"

// Result is the terminal outcome of a saga handed back to its caller. GroupID is set
// only when Status is COMPLETED; ErrorMessage is set on every other terminal status.
type Result struct {
	SagaID         uuid.UUID
	Status         Status
	GroupID        *uuid.UUID
	ErrorCode      ErrorCode
	ErrorMessage   *string
	CompletedSteps []string
}

// Succeeded reports whether the saga completed.
func (r *Result) Succeeded() bool {
	return r.Status == StatusCompleted
}
