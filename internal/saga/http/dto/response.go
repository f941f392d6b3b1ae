// Package dto provides data transfer objects for the saga execution HTTP layer.
package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/studygroups/internal/saga/domain"
)

// ExecutionResponse represents a logged saga execution
type ExecutionResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	CompletedSteps []string   `json:"completed_steps"`
	ErrorCode      string     `json:"error_code,omitempty"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	OwnerID        uuid.UUID  `json:"owner_id"`
	GroupName      string     `json:"group_name"`
	GroupID        *uuid.UUID `json:"group_id,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// ListExecutionsResponse represents a page of saga executions
type ListExecutionsResponse struct {
	Data []ExecutionResponse `json:"data"`
}

// ToExecutionResponse converts a domain Execution to an ExecutionResponse DTO
func ToExecutionResponse(exec *domain.Execution) ExecutionResponse {
	steps := exec.CompletedSteps
	if steps == nil {
		steps = []string{}
	}
	return ExecutionResponse{
		ID:             exec.ID,
		Name:           exec.Name,
		Status:         string(exec.Status),
		CompletedSteps: steps,
		ErrorCode:      string(exec.ErrorCode),
		ErrorMessage:   exec.ErrorMessage,
		OwnerID:        exec.OwnerID,
		GroupName:      exec.GroupName,
		GroupID:        exec.GroupID,
		StartedAt:      exec.StartedAt,
		FinishedAt:     exec.FinishedAt,
	}
}

// ToListExecutionsResponse converts executions to a ListExecutionsResponse DTO
func ToListExecutionsResponse(executions []*domain.Execution) ListExecutionsResponse {
	data := make([]ExecutionResponse, 0, len(executions))
	for _, exec := range executions {
		data = append(data, ToExecutionResponse(exec))
	}
	return ListExecutionsResponse{Data: data}
}
