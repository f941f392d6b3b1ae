// Package publisher delivers outbox records to an external broker.
//
// The relay depends only on the Publisher interface. Implementations exist for slog
// (development), Kafka, Redis Streams, RabbitMQ and Go CDK pub/sub topics. Any of them can
// be wrapped in a circuit breaker with NewBreakerPublisher.
package publisher

import (
	"context"
	"io"

	"github.com/allisson/studygroups/internal/outbox/domain"
)

// Message is the broker-facing view of an outbox record. ID is stable across retries so
// consumers can deduplicate at-least-once deliveries.
type Message struct {
	ID            string
	EventType     string
	AggregateType string
	AggregateID   string
	Payload       []byte
}

// Publisher sends a message to a broker. Publish must be safe to call again with the
// same message after a failure.
type Publisher interface {
	io.Closer
	Publish(ctx context.Context, msg Message) error
}

// NewMessage converts an outbox record to a Message.
func NewMessage(record *domain.OutboxRecord) Message {
	return Message{
		ID:            record.ID.String(),
		EventType:     record.EventType,
		AggregateType: record.AggregateType,
		AggregateID:   record.AggregateID,
		Payload:       []byte(record.Payload),
	}
}

// headers returns the metadata every broker receives next to the payload.
func (m Message) headers() map[string]string {
	return map[string]string{
		"event_id":       m.ID,
		"event_type":     m.EventType,
		"aggregate_type": m.AggregateType,
		"aggregate_id":   m.AggregateID,
	}
}
