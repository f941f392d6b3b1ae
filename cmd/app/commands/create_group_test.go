package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	sagaDomain "github.com/allisson/studygroups/internal/saga/domain"
	sagaUsecase "github.com/allisson/studygroups/internal/saga/usecase"
)

func TestRunCreateGroup(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	ownerID := uuid.Must(uuid.NewV7()).String()
	req := sagaUsecase.CreateGroupRequest{OwnerID: ownerID, Name: "Graphs", Description: "weekly"}
	sagaID := uuid.Must(uuid.NewV7())
	groupID := uuid.Must(uuid.NewV7())

	t.Run("completed-text", func(t *testing.T) {
		mockUseCase := &mockCreateGroupUseCase{}
		mockUseCase.On("Start", ctx, req).Return(&sagaDomain.Result{
			SagaID:         sagaID,
			Status:         sagaDomain.StatusCompleted,
			GroupID:        &groupID,
			CompletedSteps: []string{"create_group", "add_owner_member"},
		}, nil)

		var out bytes.Buffer
		err := RunCreateGroup(ctx, mockUseCase, logger, &out, ownerID, "Graphs", "weekly", "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Status: COMPLETED")
		require.Contains(t, out.String(), groupID.String())
		require.Contains(t, out.String(), "create_group, add_owner_member")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("business-failure-json", func(t *testing.T) {
		message := "a group with this name already exists"
		mockUseCase := &mockCreateGroupUseCase{}
		mockUseCase.On("Start", ctx, req).Return(&sagaDomain.Result{
			SagaID:       sagaID,
			Status:       sagaDomain.StatusFailed,
			ErrorCode:    sagaDomain.ErrorCodeDuplicateGroupName,
			ErrorMessage: &message,
		}, nil)

		var out bytes.Buffer
		err := RunCreateGroup(ctx, mockUseCase, logger, &out, ownerID, "Graphs", "weekly", "json")

		require.ErrorIs(t, err, ErrSagaNotCompleted)
		require.Contains(t, out.String(), `"error_code": "DUPLICATE_GROUP_NAME"`)
		require.Contains(t, out.String(), `"completed_steps": []`)
		require.NotContains(t, out.String(), "group_id")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("aborted", func(t *testing.T) {
		mockUseCase := &mockCreateGroupUseCase{}
		mockUseCase.On("Start", ctx, req).Return(&sagaDomain.Result{
			SagaID:         sagaID,
			Status:         sagaDomain.StatusCompensated,
			ErrorCode:      sagaDomain.ErrorCodeInternal,
			CompletedSteps: []string{},
		}, sagaDomain.ErrSagaAborted)

		var out bytes.Buffer
		err := RunCreateGroup(ctx, mockUseCase, logger, &out, ownerID, "Graphs", "weekly", "text")

		require.ErrorIs(t, err, sagaDomain.ErrSagaAborted)
		require.Contains(t, out.String(), "Status: COMPENSATED")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("nil-result", func(t *testing.T) {
		mockUseCase := &mockCreateGroupUseCase{}
		mockUseCase.On("Start", ctx, req).Return(nil, nil)

		var out bytes.Buffer
		err := RunCreateGroup(ctx, mockUseCase, logger, &out, ownerID, "Graphs", "weekly", "text")

		require.Error(t, err)
		require.Empty(t, out.String())
		mockUseCase.AssertExpectations(t)
	})
}
