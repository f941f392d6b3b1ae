package publisher

import (
	"context"
	"log/slog"
)

// LogPublisher writes messages to the structured logger instead of a broker.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the message.
func (p *LogPublisher) Publish(ctx context.Context, msg Message) error {
	p.logger.InfoContext(ctx, "outbox event published",
		slog.String("event_id", msg.ID),
		slog.String("event_type", msg.EventType),
		slog.String("aggregate_type", msg.AggregateType),
		slog.String("aggregate_id", msg.AggregateID),
		slog.String("payload", string(msg.Payload)),
	)
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error {
	return nil
}
