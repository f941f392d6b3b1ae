package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/studygroups/internal/errors"
	userDomain "github.com/allisson/studygroups/internal/user/domain"
	userUsecase "github.com/allisson/studygroups/internal/user/usecase"
)

func TestRunCreateUser(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	input := userUsecase.RegisterUserInput{Name: "Ada", Email: "ada@example.com", JudgeHandle: "ada_l"}
	user := &userDomain.User{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        "Ada",
		Email:       "ada@example.com",
		JudgeHandle: "ada_l",
		CreatedAt:   time.Now(),
	}

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &mockUserUseCase{}
		mockUseCase.On("RegisterUser", ctx, input).Return(user, nil)

		var out bytes.Buffer
		err := RunCreateUser(ctx, mockUseCase, logger, &out, "Ada", "ada@example.com", "ada_l", "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "User created successfully")
		require.Contains(t, out.String(), user.ID.String())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &mockUserUseCase{}
		mockUseCase.On("RegisterUser", ctx, input).Return(user, nil)

		var out bytes.Buffer
		err := RunCreateUser(ctx, mockUseCase, logger, &out, "Ada", "ada@example.com", "ada_l", "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"judge_handle": "ada_l"`)
		require.Contains(t, out.String(), `"id": "`+user.ID.String()+`"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("use-case-error", func(t *testing.T) {
		mockUseCase := &mockUserUseCase{}
		mockUseCase.On("RegisterUser", ctx, input).Return(nil, apperrors.ErrConflict)

		err := RunCreateUser(ctx, mockUseCase, logger, &bytes.Buffer{}, "Ada", "ada@example.com", "ada_l", "text")

		require.ErrorIs(t, err, apperrors.ErrConflict)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-format", func(t *testing.T) {
		mockUseCase := &mockUserUseCase{}

		err := RunCreateUser(ctx, mockUseCase, logger, &bytes.Buffer{}, "Ada", "ada@example.com", "", "yaml")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid format")
		mockUseCase.AssertNotCalled(t, "RegisterUser")
	})
}
