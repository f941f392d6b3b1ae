// Package domain defines the transactional outbox record and its delivery bookkeeping.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/studygroups/internal/errors"
)

// OutboxRecord is an event written in the same transaction as the business change it
// describes. Identity and payload never change after insert; the relay only touches the
// delivery columns (PublishedAt, Attempts, LastError, NextAttemptAt, FlaggedAt).
type OutboxRecord struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       string
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Attempts      int
	LastError     *string
	NextAttemptAt time.Time
	FlaggedAt     *time.Time
}

// Domain-specific errors for outbox operations.
var (
	// ErrRecordNotFound indicates the outbox record does not exist.
	ErrRecordNotFound = apperrors.Wrap(apperrors.ErrNotFound, "outbox record not found")

	// ErrRecordNotFlagged indicates a requeue was requested for a record that is not flagged.
	ErrRecordNotFlagged = apperrors.Wrap(apperrors.ErrConflict, "outbox record is not flagged")
)

// NewRecord builds an unpublished record with a JSON-encoded payload.
func NewRecord(aggregateType, aggregateID, eventType string, payload any) (*OutboxRecord, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal outbox payload")
	}

	now := time.Now().UTC()
	return &OutboxRecord{
		ID:            uuid.Must(uuid.NewV7()),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       string(data),
		CreatedAt:     now,
		NextAttemptAt: now,
	}, nil
}

// IsPublished reports whether the record has been delivered.
func (r *OutboxRecord) IsPublished() bool {
	return r.PublishedAt != nil
}

// IsFlagged reports whether the relay gave up on the record.
func (r *OutboxRecord) IsFlagged() bool {
	return r.FlaggedAt != nil
}
