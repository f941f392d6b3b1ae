package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SagaMetrics records saga outcomes, step attempts and compensations.
type SagaMetrics interface {
	// RecordSagaFinished counts a saga reaching a terminal status. errorCode is empty on success.
	RecordSagaFinished(ctx context.Context, saga, status, errorCode string, duration time.Duration)

	// RecordStepAttempt counts one forward step attempt with outcome "success", "rejected" or "error".
	RecordStepAttempt(ctx context.Context, saga, step, outcome string)

	// RecordCompensation counts one compensation with status "success" or "error".
	RecordCompensation(ctx context.Context, saga, step, status string)

	// RecordCompensationAlert counts a saga left in COMPENSATION_FAILED.
	RecordCompensationAlert(ctx context.Context, saga string)
}

type sagaMetrics struct {
	finishedCounter     metric.Int64Counter
	durationHisto       metric.Float64Histogram
	stepCounter         metric.Int64Counter
	compensationCounter metric.Int64Counter
	alertCounter        metric.Int64Counter
}

// NewSagaMetrics creates SagaMetrics backed by meters from meterProvider.
func NewSagaMetrics(meterProvider metric.MeterProvider, namespace string) (SagaMetrics, error) {
	meter := meterProvider.Meter(namespace)

	finishedCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_saga_executions_total", namespace),
		metric.WithDescription("Total number of saga executions by terminal status"),
		metric.WithUnit("{saga}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create saga execution counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_saga_duration_seconds", namespace),
		metric.WithDescription("Saga execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create saga duration histogram: %w", err)
	}

	stepCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_saga_step_attempts_total", namespace),
		metric.WithDescription("Total number of saga step attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create saga step counter: %w", err)
	}

	compensationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_saga_compensations_total", namespace),
		metric.WithDescription("Total number of saga step compensations"),
		metric.WithUnit("{compensation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create saga compensation counter: %w", err)
	}

	alertCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_saga_compensation_alerts_total", namespace),
		metric.WithDescription("Sagas that could not be compensated and need operator attention"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create saga alert counter: %w", err)
	}

	return &sagaMetrics{
		finishedCounter:     finishedCounter,
		durationHisto:       durationHisto,
		stepCounter:         stepCounter,
		compensationCounter: compensationCounter,
		alertCounter:        alertCounter,
	}, nil
}

func (s *sagaMetrics) RecordSagaFinished(
	ctx context.Context,
	saga, status, errorCode string,
	duration time.Duration,
) {
	attrs := metric.WithAttributes(
		attribute.String("saga", saga),
		attribute.String("status", status),
		attribute.String("error_code", errorCode),
	)
	s.finishedCounter.Add(ctx, 1, attrs)
	s.durationHisto.Record(ctx, duration.Seconds(), attrs)
}

func (s *sagaMetrics) RecordStepAttempt(ctx context.Context, saga, step, outcome string) {
	s.stepCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("saga", saga),
		attribute.String("step", step),
		attribute.String("outcome", outcome),
	))
}

func (s *sagaMetrics) RecordCompensation(ctx context.Context, saga, step, status string) {
	s.compensationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("saga", saga),
		attribute.String("step", step),
		attribute.String("status", status),
	))
}

func (s *sagaMetrics) RecordCompensationAlert(ctx context.Context, saga string) {
	s.alertCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("saga", saga)))
}

// NoOpSagaMetrics discards everything.
type NoOpSagaMetrics struct{}

// NewNoOpSagaMetrics creates a no-op SagaMetrics implementation.
func NewNoOpSagaMetrics() SagaMetrics {
	return &NoOpSagaMetrics{}
}

func (n *NoOpSagaMetrics) RecordSagaFinished(context.Context, string, string, string, time.Duration) {}

func (n *NoOpSagaMetrics) RecordStepAttempt(context.Context, string, string, string) {}

func (n *NoOpSagaMetrics) RecordCompensation(context.Context, string, string, string) {}

func (n *NoOpSagaMetrics) RecordCompensationAlert(context.Context, string) {}
