package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/studygroups/internal/database"
	"github.com/allisson/studygroups/internal/metrics"
	"github.com/allisson/studygroups/internal/outbox/domain"
	"github.com/allisson/studygroups/internal/outbox/publisher"
	appValidation "github.com/allisson/studygroups/internal/validation"
)

// Config holds relay configuration.
type Config struct {
	PollInterval   time.Duration
	BatchSize      int
	MaxAttempts    int
	RetryBase      time.Duration
	RetryMax       time.Duration
	PublishTimeout time.Duration
}

type relayUseCase struct {
	config     Config
	txManager  database.TxManager
	outboxRepo OutboxRepository
	publisher  publisher.Publisher
	metrics    metrics.OutboxMetrics
	logger     *slog.Logger
}

// NewRelayUseCase creates a RelayUseCase.
func NewRelayUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxRepository,
	pub publisher.Publisher,
	outboxMetrics metrics.OutboxMetrics,
	logger *slog.Logger,
) RelayUseCase {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 10
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	return &relayUseCase{
		config:     config,
		txManager:  txManager,
		outboxRepo: outboxRepo,
		publisher:  pub,
		metrics:    outboxMetrics,
		logger:     logger,
	}
}

func (uc *relayUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox relay",
		slog.Duration("interval", uc.config.PollInterval),
		slog.Int("batch_size", uc.config.BatchSize),
		slog.Int("max_attempts", uc.config.MaxAttempts),
	)

	ticker := time.NewTicker(uc.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox relay")
			return ctx.Err()
		case <-ticker.C:
			uc.drain(ctx)
		}
	}
}

// drain keeps processing while batches come back full.
func (uc *relayUseCase) drain(ctx context.Context) {
	for ctx.Err() == nil {
		result, err := uc.ProcessBatch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				uc.logger.Error("failed to process outbox batch", slog.Any("error", err))
			}
			return
		}
		if result.Fetched < uc.config.BatchSize {
			return
		}
	}
}

func (uc *relayUseCase) ProcessBatch(ctx context.Context) (*BatchResult, error) {
	result := &BatchResult{}

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		records, err := uc.outboxRepo.FetchUnpublished(ctx, time.Now().UTC(), uc.config.BatchSize)
		if err != nil {
			return err
		}
		result.Fetched = len(records)

		for _, record := range records {
			if err := uc.deliver(ctx, record, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Fetched > 0 {
		uc.logger.Info("processed outbox batch",
			slog.Int("fetched", result.Fetched),
			slog.Int("published", result.Published),
			slog.Int("failed", result.Failed),
			slog.Int("flagged", result.Flagged),
		)
	}
	return result, nil
}

// deliver publishes one record and stores the outcome. Only repository errors and
// cancellation of ctx abort the batch.
func (uc *relayUseCase) deliver(ctx context.Context, record *domain.OutboxRecord, result *BatchResult) error {
	pubCtx := ctx
	if uc.config.PublishTimeout > 0 {
		var cancel context.CancelFunc
		pubCtx, cancel = context.WithTimeout(ctx, uc.config.PublishTimeout)
		defer cancel()
	}

	pubErr := uc.publisher.Publish(pubCtx, publisher.NewMessage(record))
	if ctx.Err() != nil {
		return ctx.Err()
	}

	now := time.Now().UTC()
	if pubErr == nil {
		if err := uc.outboxRepo.MarkPublished(ctx, record.ID, now); err != nil {
			return err
		}
		result.Published++
		uc.metrics.RecordPublished(ctx, record.EventType)
		return nil
	}

	result.Failed++
	uc.metrics.RecordPublishFailure(ctx, record.EventType)

	attempts := record.Attempts + 1
	var flaggedAt *time.Time
	if attempts >= uc.config.MaxAttempts {
		flaggedAt = &now
		result.Flagged++
		uc.metrics.RecordFlagged(ctx, record.EventType)
		uc.logger.Error("outbox record exhausted delivery attempts",
			slog.String("record_id", record.ID.String()),
			slog.String("event_type", record.EventType),
			slog.String("aggregate_id", record.AggregateID),
			slog.Int("attempts", attempts),
			slog.Any("error", pubErr),
		)
	} else {
		uc.logger.Warn("failed to publish outbox record",
			slog.String("record_id", record.ID.String()),
			slog.String("event_type", record.EventType),
			slog.Int("attempts", attempts),
			slog.Any("error", pubErr),
		)
	}

	return uc.outboxRepo.RecordFailure(ctx, record.ID, pubErr.Error(), now.Add(uc.retryDelay(attempts)), flaggedAt)
}

// retryDelay returns RetryBase * 2^(attempts-1), capped at RetryMax.
func (uc *relayUseCase) retryDelay(attempts int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = uc.config.RetryBase
	b.MaxInterval = uc.config.RetryMax
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	delay := b.InitialInterval
	for i := 0; i < attempts; i++ {
		delay = b.NextBackOff()
	}
	return delay
}

func (uc *relayUseCase) Cleanup(ctx context.Context, retention time.Duration, dryRun bool) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	if dryRun {
		count, err := uc.outboxRepo.CountPublished(ctx, cutoff)
		if err != nil {
			return 0, err
		}
		uc.logger.Info("outbox cleanup dry run",
			slog.Time("cutoff", cutoff),
			slog.Int64("would_delete", count),
		)
		return count, nil
	}

	count, err := uc.outboxRepo.DeletePublished(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	uc.metrics.RecordCleaned(ctx, count)
	uc.logger.Info("outbox cleanup finished",
		slog.Time("cutoff", cutoff),
		slog.Int64("deleted", count),
	)
	return count, nil
}

func (uc *relayUseCase) ListFlagged(ctx context.Context, offset, limit int) ([]*domain.OutboxRecord, error) {
	return uc.outboxRepo.ListFlagged(ctx, offset, limit)
}

func (uc *relayUseCase) Requeue(ctx context.Context, id uuid.UUID) error {
	if err := validation.Validate(id, appValidation.NotNilUUID); err != nil {
		return appValidation.WrapValidationError(err)
	}

	record, err := uc.outboxRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !record.IsFlagged() || record.IsPublished() {
		return domain.ErrRecordNotFlagged
	}

	if err := uc.outboxRepo.Requeue(ctx, id, time.Now().UTC()); err != nil {
		return err
	}

	uc.logger.Info("outbox record requeued",
		slog.String("record_id", id.String()),
		slog.String("event_type", record.EventType),
	)
	return nil
}

func (uc *relayUseCase) QueueSize(ctx context.Context) (int64, error) {
	return uc.outboxRepo.CountUnpublished(ctx)
}
