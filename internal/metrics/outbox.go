package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// QueueSizeFunc reports the number of unpublished outbox records.
type QueueSizeFunc func(ctx context.Context) (int64, error)

// OutboxMetrics records outbox relay activity.
type OutboxMetrics interface {
	RecordPublished(ctx context.Context, eventType string)
	RecordPublishFailure(ctx context.Context, eventType string)
	RecordFlagged(ctx context.Context, eventType string)
	RecordCleaned(ctx context.Context, count int64)

	// ObserveQueueSize registers fn as the source of the outbox queue size gauge. fn is
	// called on every collection.
	ObserveQueueSize(fn QueueSizeFunc) error
}

type outboxMetrics struct {
	meter          metric.Meter
	namespace      string
	publishCounter metric.Int64Counter
	flaggedCounter metric.Int64Counter
	cleanedCounter metric.Int64Counter
}

// NewOutboxMetrics creates OutboxMetrics backed by meters from meterProvider.
func NewOutboxMetrics(meterProvider metric.MeterProvider, namespace string) (OutboxMetrics, error) {
	meter := meterProvider.Meter(namespace)

	publishCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_outbox_publish_attempts_total", namespace),
		metric.WithDescription("Total number of outbox publish attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox publish counter: %w", err)
	}

	flaggedCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_outbox_flagged_total", namespace),
		metric.WithDescription("Outbox records that exhausted their delivery attempts"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox flagged counter: %w", err)
	}

	cleanedCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_outbox_cleaned_total", namespace),
		metric.WithDescription("Published outbox records removed by retention cleanup"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox cleanup counter: %w", err)
	}

	return &outboxMetrics{
		meter:          meter,
		namespace:      namespace,
		publishCounter: publishCounter,
		flaggedCounter: flaggedCounter,
		cleanedCounter: cleanedCounter,
	}, nil
}

func (o *outboxMetrics) RecordPublished(ctx context.Context, eventType string) {
	o.publishCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("status", "success"),
	))
}

func (o *outboxMetrics) RecordPublishFailure(ctx context.Context, eventType string) {
	o.publishCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("status", "error"),
	))
}

func (o *outboxMetrics) RecordFlagged(ctx context.Context, eventType string) {
	o.flaggedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", eventType)))
}

func (o *outboxMetrics) RecordCleaned(ctx context.Context, count int64) {
	o.cleanedCounter.Add(ctx, count)
}

func (o *outboxMetrics) ObserveQueueSize(fn QueueSizeFunc) error {
	_, err := o.meter.Int64ObservableGauge(
		fmt.Sprintf("%s_outbox_queue_size", o.namespace),
		metric.WithDescription("Number of outbox records waiting to be published"),
		metric.WithUnit("{record}"),
		metric.WithInt64Callback(func(ctx context.Context, observer metric.Int64Observer) error {
			size, err := fn(ctx)
			if err != nil {
				return err
			}
			observer.Observe(size)
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox queue size gauge: %w", err)
	}
	return nil
}

// NoOpOutboxMetrics discards everything.
type NoOpOutboxMetrics struct{}

// NewNoOpOutboxMetrics creates a no-op OutboxMetrics implementation.
func NewNoOpOutboxMetrics() OutboxMetrics {
	return &NoOpOutboxMetrics{}
}

func (n *NoOpOutboxMetrics) RecordPublished(context.Context, string) {}

func (n *NoOpOutboxMetrics) RecordPublishFailure(context.Context, string) {}

func (n *NoOpOutboxMetrics) RecordFlagged(context.Context, string) {}

func (n *NoOpOutboxMetrics) RecordCleaned(context.Context, int64) {}

func (n *NoOpOutboxMetrics) ObserveQueueSize(QueueSizeFunc) error { return nil }
