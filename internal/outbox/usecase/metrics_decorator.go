package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/studygroups/internal/metrics"
	"github.com/allisson/studygroups/internal/outbox/domain"
)

// relayUseCaseWithMetrics decorates RelayUseCase with metrics instrumentation.
type relayUseCaseWithMetrics struct {
	next    RelayUseCase
	metrics metrics.BusinessMetrics
}

// NewRelayUseCaseWithMetrics wraps a RelayUseCase with metrics recording.
func NewRelayUseCaseWithMetrics(useCase RelayUseCase, m metrics.BusinessMetrics) RelayUseCase {
	return &relayUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *relayUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.metrics.RecordOperation(ctx, "outbox", operation, status)
	r.metrics.RecordDuration(ctx, "outbox", operation, time.Since(start), status)
}

// Start is passed through without instrumentation.
func (r *relayUseCaseWithMetrics) Start(ctx context.Context) error {
	return r.next.Start(ctx)
}

func (r *relayUseCaseWithMetrics) ProcessBatch(ctx context.Context) (*BatchResult, error) {
	start := time.Now()
	result, err := r.next.ProcessBatch(ctx)
	r.record(ctx, "process_batch", start, err)
	return result, err
}

func (r *relayUseCaseWithMetrics) Cleanup(ctx context.Context, retention time.Duration, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := r.next.Cleanup(ctx, retention, dryRun)
	r.record(ctx, "cleanup", start, err)
	return count, err
}

func (r *relayUseCaseWithMetrics) ListFlagged(ctx context.Context, offset, limit int) ([]*domain.OutboxRecord, error) {
	start := time.Now()
	records, err := r.next.ListFlagged(ctx, offset, limit)
	r.record(ctx, "list_flagged", start, err)
	return records, err
}

func (r *relayUseCaseWithMetrics) Requeue(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := r.next.Requeue(ctx, id)
	r.record(ctx, "requeue", start, err)
	return err
}

func (r *relayUseCaseWithMetrics) QueueSize(ctx context.Context) (int64, error) {
	return r.next.QueueSize(ctx)
}
