package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	databaseMocks "github.com/allisson/studygroups/internal/database/mocks"
	apperrors "github.com/allisson/studygroups/internal/errors"
	"github.com/allisson/studygroups/internal/metrics"
	"github.com/allisson/studygroups/internal/outbox/domain"
	"github.com/allisson/studygroups/internal/outbox/publisher"
	outboxMocks "github.com/allisson/studygroups/internal/outbox/usecase/mocks"
)

type relayFixture struct {
	txManager *databaseMocks.MockTxManager
	repo      *outboxMocks.MockOutboxRepository
	publisher *outboxMocks.MockPublisher
	useCase   *relayUseCase
}

func newRelayFixture(t *testing.T, config Config) *relayFixture {
	t.Helper()
	f := &relayFixture{
		txManager: databaseMocks.NewMockTxManager(t),
		repo:      outboxMocks.NewMockOutboxRepository(t),
		publisher: outboxMocks.NewMockPublisher(t),
	}
	f.useCase = NewRelayUseCase(
		config,
		f.txManager,
		f.repo,
		f.publisher,
		metrics.NewNoOpOutboxMetrics(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	).(*relayUseCase)
	return f
}

func (f *relayFixture) expectTx() {
	f.txManager.On("WithTx", mock.Anything, mock.AnythingOfType("func(context.Context) error")).Return(nil)
}

func defaultConfig() Config {
	return Config{
		PollInterval:   10 * time.Millisecond,
		BatchSize:      10,
		MaxAttempts:    3,
		RetryBase:      time.Second,
		RetryMax:       time.Minute,
		PublishTimeout: time.Second,
	}
}

func newRecord(t *testing.T, attempts int) *domain.OutboxRecord {
	t.Helper()
	record, err := domain.NewRecord("study_group", uuid.Must(uuid.NewV7()).String(), "GROUP_CREATED",
		map[string]string{"name": "Algo Study"})
	require.NoError(t, err)
	record.Attempts = attempts
	return record
}

func isNilTime(p *time.Time) bool { return p == nil }

func isSetTime(p *time.Time) bool { return p != nil }

func TestRelayUseCase_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_PublishesInOrder", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())
		r1, r2 := newRecord(t, 0), newRecord(t, 1)

		f.expectTx()
		f.repo.On("FetchUnpublished", mock.Anything, mock.AnythingOfType("time.Time"), 10).
			Return([]*domain.OutboxRecord{r1, r2}, nil).Once()

		var order []string
		f.publisher.On("Publish", mock.Anything, mock.AnythingOfType("publisher.Message")).
			Run(func(args mock.Arguments) {
				order = append(order, args.Get(1).(publisher.Message).ID)
			}).
			Return(nil).Twice()
		f.repo.On("MarkPublished", mock.Anything, r1.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()
		f.repo.On("MarkPublished", mock.Anything, r2.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()

		result, err := f.useCase.ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, &BatchResult{Fetched: 2, Published: 2}, result)
		assert.Equal(t, []string{r1.ID.String(), r2.ID.String()}, order)
	})

	t.Run("Success_EmptyBatch", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())

		f.expectTx()
		f.repo.On("FetchUnpublished", mock.Anything, mock.Anything, 10).
			Return([]*domain.OutboxRecord{}, nil).Once()

		result, err := f.useCase.ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Zero(t, result.Fetched)
	})

	t.Run("Failure_SchedulesRetry", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())
		record := newRecord(t, 1)
		before := time.Now().UTC()

		f.expectTx()
		f.repo.On("FetchUnpublished", mock.Anything, mock.Anything, 10).
			Return([]*domain.OutboxRecord{record}, nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
		f.repo.On("RecordFailure", mock.Anything, record.ID, "broker down",
			mock.MatchedBy(func(next time.Time) bool {
				// second attempt waits RetryBase * 2
				return !next.Before(before.Add(2*time.Second)) && next.Before(before.Add(3*time.Second))
			}),
			mock.MatchedBy(isNilTime),
		).Return(nil).Once()

		result, err := f.useCase.ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, &BatchResult{Fetched: 1, Failed: 1}, result)
	})

	t.Run("Failure_FlagsAfterMaxAttempts", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())
		record := newRecord(t, 2)

		f.expectTx()
		f.repo.On("FetchUnpublished", mock.Anything, mock.Anything, 10).
			Return([]*domain.OutboxRecord{record}, nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("rejected")).Once()
		f.repo.On("RecordFailure", mock.Anything, record.ID, "rejected", mock.Anything, mock.MatchedBy(isSetTime)).
			Return(nil).Once()

		result, err := f.useCase.ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, &BatchResult{Fetched: 1, Failed: 1, Flagged: 1}, result)
	})

	t.Run("Failure_OneBadRecordDoesNotBlockOthers", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())
		bad, good := newRecord(t, 0), newRecord(t, 0)

		f.expectTx()
		f.repo.On("FetchUnpublished", mock.Anything, mock.Anything, 10).
			Return([]*domain.OutboxRecord{bad, good}, nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(m publisher.Message) bool {
			return m.ID == bad.ID.String()
		})).Return(assert.AnError).Once()
		f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(m publisher.Message) bool {
			return m.ID == good.ID.String()
		})).Return(nil).Once()
		f.repo.On("RecordFailure", mock.Anything, bad.ID, assert.AnError.Error(), mock.Anything, mock.Anything).
			Return(nil).Once()
		f.repo.On("MarkPublished", mock.Anything, good.ID, mock.Anything).Return(nil).Once()

		result, err := f.useCase.ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, &BatchResult{Fetched: 2, Published: 1, Failed: 1}, result)
	})

	t.Run("Error_FetchFails", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())

		f.expectTx()
		f.repo.On("FetchUnpublished", mock.Anything, mock.Anything, 10).Return(nil, assert.AnError).Once()

		result, err := f.useCase.ProcessBatch(ctx)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("Error_MarkPublishedAbortsBatch", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())
		r1, r2 := newRecord(t, 0), newRecord(t, 0)

		f.expectTx()
		f.repo.On("FetchUnpublished", mock.Anything, mock.Anything, 10).
			Return([]*domain.OutboxRecord{r1, r2}, nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()
		f.repo.On("MarkPublished", mock.Anything, r1.ID, mock.Anything).Return(assert.AnError).Once()

		_, err := f.useCase.ProcessBatch(ctx)

		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("Error_TransactionFails", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())
		f.txManager.On("WithTx", mock.Anything, mock.Anything).Return(assert.AnError).Once()

		_, err := f.useCase.ProcessBatch(ctx)

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestRelayUseCase_RetryDelay(t *testing.T) {
	f := newRelayFixture(t, Config{RetryBase: time.Second, RetryMax: 10 * time.Second})

	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{9, 10 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, f.useCase.retryDelay(tt.attempts), "attempts=%d", tt.attempts)
	}
}

func TestRelayUseCase_Start(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newRelayFixture(t, defaultConfig())
	f.expectTx()

	ctx, cancel := context.WithCancel(context.Background())
	f.repo.On("FetchUnpublished", mock.Anything, mock.Anything, 10).
		Run(func(mock.Arguments) { cancel() }).
		Return([]*domain.OutboxRecord{}, nil).Once()

	done := make(chan error, 1)
	go func() { done <- f.useCase.Start(ctx) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestRelayUseCase_Cleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Delete", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())
		before := time.Now().UTC().Add(-time.Hour)

		f.repo.On("DeletePublished", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
			return !cutoff.Before(before) && cutoff.Before(before.Add(time.Minute))
		})).Return(int64(4), nil).Once()

		count, err := f.useCase.Cleanup(ctx, time.Hour, false)

		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
	})

	t.Run("Success_DryRunOnlyCounts", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())
		f.repo.On("CountPublished", mock.Anything, mock.Anything).Return(int64(9), nil).Once()

		count, err := f.useCase.Cleanup(ctx, time.Hour, true)

		require.NoError(t, err)
		assert.Equal(t, int64(9), count)
		f.repo.AssertNotCalled(t, "DeletePublished", mock.Anything, mock.Anything)
	})

	t.Run("Error_Repository", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())
		f.repo.On("DeletePublished", mock.Anything, mock.Anything).Return(int64(0), assert.AnError).Once()

		_, err := f.useCase.Cleanup(ctx, time.Hour, false)

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestRelayUseCase_Requeue(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_FlaggedRecord", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())
		record := newRecord(t, 3)
		flagged := time.Now().UTC()
		record.FlaggedAt = &flagged

		f.repo.On("GetByID", mock.Anything, record.ID).Return(record, nil).Once()
		f.repo.On("Requeue", mock.Anything, record.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()

		require.NoError(t, f.useCase.Requeue(ctx, record.ID))
	})

	t.Run("Error_NotFlagged", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())
		record := newRecord(t, 1)

		f.repo.On("GetByID", mock.Anything, record.ID).Return(record, nil).Once()

		err := f.useCase.Requeue(ctx, record.ID)

		assert.ErrorIs(t, err, domain.ErrRecordNotFlagged)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())
		id := uuid.Must(uuid.NewV7())

		f.repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrRecordNotFound).Once()

		assert.ErrorIs(t, f.useCase.Requeue(ctx, id), domain.ErrRecordNotFound)
	})

	t.Run("Error_NilID", func(t *testing.T) {
		f := newRelayFixture(t, defaultConfig())

		err := f.useCase.Requeue(ctx, uuid.Nil)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestRelayUseCase_QueueSizeAndListFlagged(t *testing.T) {
	f := newRelayFixture(t, defaultConfig())
	record := newRecord(t, 3)

	f.repo.On("CountUnpublished", mock.Anything).Return(int64(17), nil).Once()
	f.repo.On("ListFlagged", mock.Anything, 0, 50).Return([]*domain.OutboxRecord{record}, nil).Once()

	size, err := f.useCase.QueueSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(17), size)

	records, err := f.useCase.ListFlagged(context.Background(), 0, 50)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
