package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	groupUsecase "github.com/allisson/studygroups/internal/group/usecase"
)

// RunSweepPendingGroups deletes groups left pending for more than the given number of minutes.
func RunSweepPendingGroups(
	ctx context.Context,
	groups groupUsecase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	minutes int,
	format string,
) error {
	if minutes <= 0 {
		return fmt.Errorf("older-than-minutes must be a positive number, got: %d", minutes)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	count, err := groups.SweepStalePending(ctx, time.Duration(minutes)*time.Minute)
	if err != nil {
		return fmt.Errorf("failed to sweep pending groups: %w", err)
	}

	logger.Info("pending group sweep completed",
		slog.Int64("count", count),
		slog.Int("older_than_minutes", minutes),
	)

	if format == formatJSON {
		return writeJSON(writer, map[string]any{
			"count":              count,
			"older_than_minutes": minutes,
		})
	}

	_, err = fmt.Fprintf(writer, "Deleted %d pending group(s) older than %d minute(s)\n", count, minutes)
	return err
}
