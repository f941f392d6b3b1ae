package usecase

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/allisson/studygroups/internal/errors"
	"github.com/allisson/studygroups/internal/saga/domain"
)

type executionUseCase struct {
	executions ExecutionRepository
}

// NewExecutionUseCase creates an ExecutionUseCase over the saga execution log.
func NewExecutionUseCase(executions ExecutionRepository) ExecutionUseCase {
	return &executionUseCase{executions: executions}
}

func (uc *executionUseCase) GetExecution(ctx context.Context, id uuid.UUID) (*domain.Execution, error) {
	return uc.executions.GetByID(ctx, id)
}

// ListExecutions lists logged executions, newest first. An empty status lists all.
func (uc *executionUseCase) ListExecutions(
	ctx context.Context,
	status domain.Status,
	offset, limit int,
) ([]*domain.Execution, error) {
	if status != "" && !status.IsValid() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown saga status %q", status)
	}
	return uc.executions.List(ctx, status, offset, limit)
}
