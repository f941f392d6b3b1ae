package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/studygroups/internal/errors"
)

// SagaCreateGroup is the name of the create study group saga.
const SagaCreateGroup = "create_group"

// Execution tracks one run of a saga. CompletedSteps lists, in commit order, the steps
// whose effects currently survive: a step is appended after its commit and removed again
// once its compensation succeeds. Status changes go through TransitionTo.
type Execution struct {
	ID             uuid.UUID
	Name           string
	Status         Status
	CompletedSteps []string
	ErrorCode      ErrorCode
	ErrorMessage   *string
	// GroupID is set while the create_group step's effect survives.
	GroupID *uuid.UUID
	// ReservedGroupID is generated up front so a replayed create_group step finds its own row.
	ReservedGroupID uuid.UUID
	OwnerID         uuid.UUID
	GroupName       string
	Description     string
	StartedAt       time.Time
	FinishedAt      *time.Time

	cause string
}

// NewCreateGroupExecution starts a create_group execution for the given request data.
func NewCreateGroupExecution(ownerID uuid.UUID, name, description string) *Execution {
	return &Execution{
		ID:              uuid.Must(uuid.NewV7()),
		Name:            SagaCreateGroup,
		Status:          StatusStarted,
		CompletedSteps:  []string{},
		ReservedGroupID: uuid.Must(uuid.NewV7()),
		OwnerID:         ownerID,
		GroupName:       name,
		Description:     description,
		StartedAt:       time.Now().UTC(),
	}
}

// TransitionTo moves the execution to next, stamping FinishedAt on terminal states.
func (e *Execution) TransitionTo(next Status) error {
	if !e.Status.CanTransitionTo(next) {
		return apperrors.Wrapf(ErrInvalidTransition, "%s -> %s", e.Status, next)
	}
	e.Status = next
	if next.IsTerminal() {
		now := time.Now().UTC()
		e.FinishedAt = &now
	}
	return nil
}

// MarkStepCompleted records that a step committed.
func (e *Execution) MarkStepCompleted(step string) {
	e.CompletedSteps = append(e.CompletedSteps, step)
}

// MarkStepCompensated removes the most recent occurrence of step from CompletedSteps.
func (e *Execution) MarkStepCompensated(step string) {
	for i := len(e.CompletedSteps) - 1; i >= 0; i-- {
		if e.CompletedSteps[i] == step {
			e.CompletedSteps = append(e.CompletedSteps[:i], e.CompletedSteps[i+1:]...)
			return
		}
	}
}

// HasCompletedSteps reports whether any step effect survives.
func (e *Execution) HasCompletedSteps() bool {
	return len(e.CompletedSteps) > 0
}

// Complete finishes the execution successfully.
func (e *Execution) Complete() error {
	return e.TransitionTo(StatusCompleted)
}

// Fail finishes the execution without side effects.
func (e *Execution) Fail(code ErrorCode, message string) error {
	if err := e.TransitionTo(StatusFailed); err != nil {
		return err
	}
	e.setError(code, message)
	return nil
}

// BeginCompensation records the failure that triggered compensation. The message is
// published once the compensation outcome is known.
func (e *Execution) BeginCompensation(code ErrorCode, cause string) error {
	if err := e.TransitionTo(StatusCompensating); err != nil {
		return err
	}
	e.ErrorCode = code
	e.cause = cause
	return nil
}

// Compensated finishes a compensation that undid every committed step.
func (e *Execution) Compensated() error {
	if err := e.TransitionTo(StatusCompensated); err != nil {
		return err
	}
	e.setError(e.ErrorCode, e.cause)
	return nil
}

// CompensationFailed finishes a compensation that left committed effects behind.
func (e *Execution) CompensationFailed(compensationErr error) error {
	if err := e.TransitionTo(StatusCompensationFailed); err != nil {
		return err
	}
	e.setError(
		ErrorCodeCompensationFailed,
		fmt.Sprintf("%s; compensation failed: %v", e.cause, compensationErr),
	)
	return nil
}

func (e *Execution) setError(code ErrorCode, message string) {
	e.ErrorCode = code
	e.ErrorMessage = &message
}

// Duration returns how long the execution ran, or has been running.
func (e *Execution) Duration() time.Duration {
	if e.FinishedAt != nil {
		return e.FinishedAt.Sub(e.StartedAt)
	}
	return time.Since(e.StartedAt)
}

// Result snapshots the execution for callers.
func (e *Execution) Result() *Result {
	result := &Result{
		SagaID:         e.ID,
		Status:         e.Status,
		ErrorCode:      e.ErrorCode,
		ErrorMessage:   e.ErrorMessage,
		CompletedSteps: append([]string(nil), e.CompletedSteps...),
	}
	if e.Status == StatusCompleted && e.GroupID != nil {
		id := *e.GroupID
		result.GroupID = &id
	}
	return result
}
