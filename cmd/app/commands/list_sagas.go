package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/allisson/studygroups/internal/saga/domain"
	sagaUsecase "github.com/allisson/studygroups/internal/saga/usecase"
)

// RunListSagas prints saga executions, newest first, optionally filtered by status.
func RunListSagas(
	ctx context.Context,
	executionUseCase sagaUsecase.ExecutionUseCase,
	writer io.Writer,
	status string,
	offset, limit int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	filter := domain.Status(strings.ToUpper(status))
	if filter != "" && !filter.IsValid() {
		return fmt.Errorf("invalid saga status: %s", status)
	}

	executions, err := executionUseCase.ListExecutions(ctx, filter, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list saga executions: %w", err)
	}

	if format == formatJSON {
		data := make([]map[string]any, 0, len(executions))
		for _, exec := range executions {
			item := map[string]any{
				"id":              exec.ID.String(),
				"name":            exec.Name,
				"status":          string(exec.Status),
				"owner_id":        exec.OwnerID.String(),
				"group_name":      exec.GroupName,
				"completed_steps": nonNilSteps(exec.CompletedSteps),
				"started_at":      exec.StartedAt.UTC().Format(time.RFC3339),
			}
			if exec.GroupID != nil {
				item["group_id"] = exec.GroupID.String()
			}
			if exec.ErrorCode != domain.ErrorCodeNone {
				item["error_code"] = string(exec.ErrorCode)
			}
			if exec.ErrorMessage != nil {
				item["error_message"] = *exec.ErrorMessage
			}
			if exec.FinishedAt != nil {
				item["finished_at"] = exec.FinishedAt.UTC().Format(time.RFC3339)
			}
			data = append(data, item)
		}
		return writeJSON(writer, map[string]any{"data": data})
	}

	if len(executions) == 0 {
		_, err = fmt.Fprintln(writer, "No saga executions")
		return err
	}

	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tGROUP NAME\tERROR CODE\tSTARTED AT")
	for _, exec := range executions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			exec.ID, exec.Status, exec.GroupName, exec.ErrorCode, exec.StartedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

func nonNilSteps(steps []string) []string {
	if steps == nil {
		return []string{}
	}
	return steps
}
