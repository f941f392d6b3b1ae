package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/allisson/studygroups/internal/saga/domain"
	sagaUsecase "github.com/allisson/studygroups/internal/saga/usecase"
)

// ErrSagaNotCompleted is returned when the create group saga ends in any state other
// than COMPLETED. The result is still printed.
var ErrSagaNotCompleted = errors.New("create group saga did not complete")

// RunCreateGroup runs the create group saga and prints its result.
func RunCreateGroup(
	ctx context.Context,
	createGroupUseCase sagaUsecase.CreateGroupUseCase,
	logger *slog.Logger,
	writer io.Writer,
	ownerID, name, description, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("creating group",
		slog.String("owner_id", ownerID),
		slog.String("name", name),
	)

	result, err := createGroupUseCase.Start(ctx, sagaUsecase.CreateGroupRequest{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
	})
	if result == nil {
		if err == nil {
			err = errors.New("saga returned no result")
		}
		return fmt.Errorf("failed to create group: %w", err)
	}

	if outErr := outputSagaResult(writer, result, format); outErr != nil {
		return outErr
	}

	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("%w: %s", ErrSagaNotCompleted, result.ErrorCode)
	}
	return nil
}

func outputSagaResult(writer io.Writer, result *domain.Result, format string) error {
	steps := nonNilSteps(result.CompletedSteps)

	if format == formatJSON {
		out := map[string]any{
			"saga_id":         result.SagaID.String(),
			"status":          string(result.Status),
			"completed_steps": steps,
		}
		if result.GroupID != nil {
			out["group_id"] = result.GroupID.String()
		}
		if result.ErrorCode != domain.ErrorCodeNone {
			out["error_code"] = string(result.ErrorCode)
		}
		if result.ErrorMessage != nil {
			out["error_message"] = *result.ErrorMessage
		}
		return writeJSON(writer, out)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Saga ID: %s\nStatus: %s\n", result.SagaID, result.Status)
	if result.GroupID != nil {
		fmt.Fprintf(&b, "Group ID: %s\n", result.GroupID)
	}
	if result.ErrorCode != domain.ErrorCodeNone {
		fmt.Fprintf(&b, "Error code: %s\n", result.ErrorCode)
	}
	if result.ErrorMessage != nil {
		fmt.Fprintf(&b, "Error: %s\n", *result.ErrorMessage)
	}
	fmt.Fprintf(&b, "Completed steps: %s\n", strings.Join(steps, ", "))

	_, err := io.WriteString(writer, b.String())
	return err
}
