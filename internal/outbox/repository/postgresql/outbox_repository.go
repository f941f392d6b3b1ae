// Package postgresql implements outbox record persistence for PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/studygroups/internal/database"
	apperrors "github.com/allisson/studygroups/internal/errors"
	"github.com/allisson/studygroups/internal/outbox/domain"
)

const recordColumns = `id, aggregate_type, aggregate_id, event_type, payload, created_at,
	published_at, attempts, last_error, next_attempt_at, flagged_at`

// OutboxRepository handles outbox record persistence for PostgreSQL.
type OutboxRepository struct {
	db *sql.DB
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Append inserts a record. It must be called with the context of the business
// transaction so both writes commit or roll back together.
func (r *OutboxRepository) Append(ctx context.Context, record *domain.OutboxRecord) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO outbox_records (id, aggregate_type, aggregate_id, event_type, payload,
			  created_at, attempts, next_attempt_at)
			  VALUES ($1, $2, $3, $4, $5, $6, 0, $7)`

	_, err := querier.ExecContext(ctx, query, record.ID, record.AggregateType, record.AggregateID,
		record.EventType, record.Payload, record.CreatedAt, record.NextAttemptAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to append outbox record")
	}
	return nil
}

// FetchUnpublished locks and returns up to limit deliverable records, oldest first.
// Rows locked by a concurrent relay are skipped.
func (r *OutboxRepository) FetchUnpublished(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*domain.OutboxRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + recordColumns + `
			  FROM outbox_records
			  WHERE published_at IS NULL AND flagged_at IS NULL AND next_attempt_at <= $1
			  ORDER BY created_at ASC, id ASC
			  LIMIT $2
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to fetch unpublished outbox records")
	}
	defer rows.Close() //nolint:errcheck

	return scanRecords(rows)
}

// GetByID retrieves a record by ID.
func (r *OutboxRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OutboxRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + recordColumns + ` FROM outbox_records WHERE id = $1`

	record, err := scanRecord(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get outbox record")
	}
	return record, nil
}

// ListByAggregate returns every record emitted for an aggregate, oldest first.
func (r *OutboxRepository) ListByAggregate(
	ctx context.Context,
	aggregateType, aggregateID string,
) ([]*domain.OutboxRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + recordColumns + `
			  FROM outbox_records
			  WHERE aggregate_type = $1 AND aggregate_id = $2
			  ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, aggregateType, aggregateID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list outbox records by aggregate")
	}
	defer rows.Close() //nolint:errcheck

	return scanRecords(rows)
}

// MarkPublished sets published_at once. Marking an already published record is a no-op.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE outbox_records
			  SET published_at = $1, attempts = attempts + 1, last_error = NULL
			  WHERE id = $2 AND published_at IS NULL`

	if _, err := querier.ExecContext(ctx, query, publishedAt, id); err != nil {
		return apperrors.Wrap(err, "failed to mark outbox record as published")
	}
	return nil
}

// RecordFailure stores a failed delivery attempt. A non-nil flaggedAt takes the record
// out of the delivery queue until it is requeued.
func (r *OutboxRepository) RecordFailure(
	ctx context.Context,
	id uuid.UUID,
	reason string,
	nextAttemptAt time.Time,
	flaggedAt *time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE outbox_records
			  SET attempts = attempts + 1, last_error = $1, next_attempt_at = $2, flagged_at = $3
			  WHERE id = $4 AND published_at IS NULL`

	if _, err := querier.ExecContext(ctx, query, reason, nextAttemptAt, flaggedAt, id); err != nil {
		return apperrors.Wrap(err, "failed to record outbox delivery failure")
	}
	return nil
}

// DeletePublished removes records published at or before olderThan. Unpublished records
// are never deleted.
func (r *OutboxRepository) DeletePublished(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM outbox_records WHERE published_at IS NOT NULL AND published_at <= $1`

	result, err := querier.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete published outbox records")
	}
	return result.RowsAffected()
}

// CountPublished counts records DeletePublished would remove.
func (r *OutboxRepository) CountPublished(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	query := `SELECT COUNT(*) FROM outbox_records WHERE published_at IS NOT NULL AND published_at <= $1`
	if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count published outbox records")
	}
	return count, nil
}

// CountUnpublished returns the delivery backlog, flagged records included.
func (r *OutboxRepository) CountUnpublished(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	query := `SELECT COUNT(*) FROM outbox_records WHERE published_at IS NULL`
	if err := querier.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count unpublished outbox records")
	}
	return count, nil
}

// ListFlagged returns records the relay gave up on, oldest first.
func (r *OutboxRepository) ListFlagged(ctx context.Context, offset, limit int) ([]*domain.OutboxRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + recordColumns + `
			  FROM outbox_records
			  WHERE flagged_at IS NOT NULL AND published_at IS NULL
			  ORDER BY created_at ASC, id ASC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list flagged outbox records")
	}
	defer rows.Close() //nolint:errcheck

	return scanRecords(rows)
}

// Requeue clears the flag and the attempt counter so the relay picks the record up again.
func (r *OutboxRepository) Requeue(ctx context.Context, id uuid.UUID, now time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE outbox_records
			  SET flagged_at = NULL, attempts = 0, next_attempt_at = $1
			  WHERE id = $2 AND flagged_at IS NOT NULL AND published_at IS NULL`

	result, err := querier.ExecContext(ctx, query, now, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to requeue outbox record")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to requeue outbox record")
	}
	if affected == 0 {
		return domain.ErrRecordNotFlagged
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.OutboxRecord, error) {
	var record domain.OutboxRecord
	err := row.Scan(
		&record.ID,
		&record.AggregateType,
		&record.AggregateID,
		&record.EventType,
		&record.Payload,
		&record.CreatedAt,
		&record.PublishedAt,
		&record.Attempts,
		&record.LastError,
		&record.NextAttemptAt,
		&record.FlaggedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func scanRecords(rows *sql.Rows) ([]*domain.OutboxRecord, error) {
	var records []*domain.OutboxRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox record")
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate outbox records")
	}

	return records, nil
}
