package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	outboxUsecase "github.com/allisson/studygroups/internal/outbox/usecase"
)

// RunCleanOutbox deletes outbox records published more than the given number of hours ago.
// Unpublished records are never deleted. With dryRun it only counts them.
func RunCleanOutbox(
	ctx context.Context,
	relay outboxUsecase.RelayUseCase,
	logger *slog.Logger,
	writer io.Writer,
	hours int,
	dryRun bool,
	format string,
) error {
	if hours < 0 {
		return fmt.Errorf("hours must be a positive number, got: %d", hours)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("cleaning outbox records",
		slog.Int("hours", hours),
		slog.Bool("dry_run", dryRun),
	)

	count, err := relay.Cleanup(ctx, time.Duration(hours)*time.Hour, dryRun)
	if err != nil {
		return fmt.Errorf("failed to clean outbox records: %w", err)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("hours", hours),
		slog.Bool("dry_run", dryRun),
	)

	if format == formatJSON {
		return writeJSON(writer, map[string]any{
			"count":   count,
			"hours":   hours,
			"dry_run": dryRun,
		})
	}

	if dryRun {
		_, err = fmt.Fprintf(writer,
			"Dry-run mode: Would delete %d published outbox record(s) older than %d hour(s)\n", count, hours)
	} else {
		_, err = fmt.Fprintf(writer,
			"Successfully deleted %d published outbox record(s) older than %d hour(s)\n", count, hours)
	}
	return err
}
