package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	userUsecase "github.com/allisson/studygroups/internal/user/usecase"
)

// RunCreateUser registers a user and prints its identifier.
func RunCreateUser(
	ctx context.Context,
	userUseCase userUsecase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	name, email, judgeHandle, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("creating user", slog.String("email", email))

	user, err := userUseCase.RegisterUser(ctx, userUsecase.RegisterUserInput{
		Name:        name,
		Email:       email,
		JudgeHandle: judgeHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user created", slog.String("user_id", user.ID.String()))

	if format == formatJSON {
		return writeJSON(writer, map[string]any{
			"id":           user.ID.String(),
			"name":         user.Name,
			"email":        user.Email,
			"judge_handle": user.JudgeHandle,
			"created_at":   user.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	_, err = fmt.Fprintf(writer, "User created successfully\nID: %s\nName: %s\nEmail: %s\n",
		user.ID, user.Name, user.Email)
	return err
}
