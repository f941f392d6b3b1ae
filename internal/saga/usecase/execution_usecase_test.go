package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/studygroups/internal/errors"
	"github.com/allisson/studygroups/internal/saga/domain"
	sagaMocks "github.com/allisson/studygroups/internal/saga/usecase/mocks"
)

func TestExecutionUseCase_GetExecution(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		repo := sagaMocks.NewMockExecutionRepository(t)
		uc := NewExecutionUseCase(repo)
		exec := newTestExecution()

		repo.On("GetByID", context.Background(), exec.ID).Return(exec, nil).Once()

		got, err := uc.GetExecution(context.Background(), exec.ID)
		require.NoError(t, err)
		assert.Equal(t, exec, got)
	})

	t.Run("Not found", func(t *testing.T) {
		repo := sagaMocks.NewMockExecutionRepository(t)
		uc := NewExecutionUseCase(repo)
		id := uuid.Must(uuid.NewV7())

		repo.On("GetByID", context.Background(), id).Return(nil, domain.ErrExecutionNotFound).Once()

		_, err := uc.GetExecution(context.Background(), id)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestExecutionUseCase_ListExecutions(t *testing.T) {
	t.Run("All statuses", func(t *testing.T) {
		repo := sagaMocks.NewMockExecutionRepository(t)
		uc := NewExecutionUseCase(repo)
		execs := []*domain.Execution{newTestExecution(), newTestExecution()}

		repo.On("List", context.Background(), domain.Status(""), 0, 50).Return(execs, nil).Once()

		got, err := uc.ListExecutions(context.Background(), "", 0, 50)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Filtered by status", func(t *testing.T) {
		repo := sagaMocks.NewMockExecutionRepository(t)
		uc := NewExecutionUseCase(repo)

		repo.On("List", context.Background(), domain.StatusCompensationFailed, 10, 10).
			Return([]*domain.Execution{}, nil).Once()

		got, err := uc.ListExecutions(context.Background(), domain.StatusCompensationFailed, 10, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Unknown status", func(t *testing.T) {
		repo := sagaMocks.NewMockExecutionRepository(t)
		uc := NewExecutionUseCase(repo)

		_, err := uc.ListExecutions(context.Background(), domain.Status("RUNNING"), 0, 10)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
