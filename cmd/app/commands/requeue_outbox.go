package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	outboxUsecase "github.com/allisson/studygroups/internal/outbox/usecase"
)

// RunListFlaggedOutbox prints the records the relay gave up on.
func RunListFlaggedOutbox(
	ctx context.Context,
	relay outboxUsecase.RelayUseCase,
	writer io.Writer,
	offset, limit int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	records, err := relay.ListFlagged(ctx, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list flagged outbox records: %w", err)
	}

	if format == formatJSON {
		data := make([]map[string]any, 0, len(records))
		for _, record := range records {
			item := map[string]any{
				"id":             record.ID.String(),
				"aggregate_type": record.AggregateType,
				"aggregate_id":   record.AggregateID,
				"event_type":     record.EventType,
				"attempts":       record.Attempts,
				"created_at":     record.CreatedAt.UTC().Format(time.RFC3339),
			}
			if record.LastError != nil {
				item["last_error"] = *record.LastError
			}
			if record.FlaggedAt != nil {
				item["flagged_at"] = record.FlaggedAt.UTC().Format(time.RFC3339)
			}
			data = append(data, item)
		}
		return writeJSON(writer, map[string]any{"data": data})
	}

	if len(records) == 0 {
		_, err = fmt.Fprintln(writer, "No flagged outbox records")
		return err
	}

	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEVENT\tAGGREGATE\tATTEMPTS\tLAST ERROR")
	for _, record := range records {
		lastError := ""
		if record.LastError != nil {
			lastError = *record.LastError
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			record.ID, record.EventType, record.AggregateID, record.Attempts, lastError)
	}
	return tw.Flush()
}

// RunRequeueOutbox puts a flagged outbox record back in the delivery queue.
func RunRequeueOutbox(
	ctx context.Context,
	relay outboxUsecase.RelayUseCase,
	logger *slog.Logger,
	writer io.Writer,
	recordID string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	id, err := uuid.Parse(recordID)
	if err != nil {
		return fmt.Errorf("invalid outbox record id %q: %w", recordID, err)
	}

	if err := relay.Requeue(ctx, id); err != nil {
		return fmt.Errorf("failed to requeue outbox record: %w", err)
	}

	logger.Info("outbox record requeued", slog.String("record_id", id.String()))

	if format == formatJSON {
		return writeJSON(writer, map[string]any{
			"id":       id.String(),
			"requeued": true,
		})
	}

	_, err = fmt.Fprintf(writer, "Outbox record %s requeued\n", id)
	return err
}
