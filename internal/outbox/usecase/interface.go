// Package usecase implements the outbox relay: it moves committed outbox records to the
// configured publisher, retries failed deliveries with exponential backoff, flags records
// that keep failing and removes published records after the retention period.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/studygroups/internal/outbox/domain"
)

// OutboxRepository defines the relay's persistence operations.
type OutboxRepository interface {
	FetchUnpublished(ctx context.Context, now time.Time, limit int) ([]*domain.OutboxRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.OutboxRecord, error)
	MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error
	RecordFailure(
		ctx context.Context,
		id uuid.UUID,
		reason string,
		nextAttemptAt time.Time,
		flaggedAt *time.Time,
	) error
	DeletePublished(ctx context.Context, olderThan time.Time) (int64, error)
	CountPublished(ctx context.Context, olderThan time.Time) (int64, error)
	CountUnpublished(ctx context.Context) (int64, error)
	ListFlagged(ctx context.Context, offset, limit int) ([]*domain.OutboxRecord, error)
	Requeue(ctx context.Context, id uuid.UUID, now time.Time) error
}

// BatchResult summarizes one relay pass.
type BatchResult struct {
	Fetched   int
	Published int
	Failed    int
	Flagged   int
}

// RelayUseCase defines the outbox relay operations.
type RelayUseCase interface {
	// Start polls until ctx is cancelled. It returns ctx.Err().
	Start(ctx context.Context) error

	// ProcessBatch delivers one batch of due records inside a single transaction.
	ProcessBatch(ctx context.Context) (*BatchResult, error)

	// Cleanup removes records published more than retention ago. With dryRun it only
	// counts them.
	Cleanup(ctx context.Context, retention time.Duration, dryRun bool) (int64, error)

	ListFlagged(ctx context.Context, offset, limit int) ([]*domain.OutboxRecord, error)

	// Requeue puts a flagged record back in the delivery queue with a fresh attempt budget.
	Requeue(ctx context.Context, id uuid.UUID) error

	// QueueSize returns the number of unpublished records, flagged ones included.
	QueueSize(ctx context.Context) (int64, error)
}
