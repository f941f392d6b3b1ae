package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	outboxUsecase "github.com/allisson/studygroups/internal/outbox/usecase"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// newCleanupScheduler builds a cron scheduler running relay.Cleanup on schedule. An empty
// schedule disables cleanup and returns a nil scheduler.
func newCleanupScheduler(
	ctx context.Context,
	relay outboxUsecase.RelayUseCase,
	logger *slog.Logger,
	schedule string,
	retention time.Duration,
) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}

	parsed, err := cronParser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid outbox cleanup schedule %q: %w", schedule, err)
	}

	c := cron.New(cron.WithParser(cronParser))
	c.Schedule(parsed, cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		count, err := relay.Cleanup(ctx, retention, false)
		if err != nil {
			logger.Error("scheduled outbox cleanup failed", slog.Any("error", err))
			return
		}
		logger.Info("scheduled outbox cleanup completed",
			slog.Int64("count", count),
			slog.Duration("retention", retention),
		)
	}))

	return c, nil
}

// runRelay runs the relay loop and the cleanup scheduler until ctx is cancelled.
func runRelay(
	ctx context.Context,
	relay outboxUsecase.RelayUseCase,
	logger *slog.Logger,
	schedule string,
	retention time.Duration,
) error {
	scheduler, err := newCleanupScheduler(ctx, relay, logger, schedule, retention)
	if err != nil {
		return err
	}
	if scheduler != nil {
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
	}

	if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("outbox relay error: %w", err)
	}
	return nil
}

// RunRelay runs the standalone outbox relay process until ctx is cancelled.
func RunRelay(
	ctx context.Context,
	relay outboxUsecase.RelayUseCase,
	logger *slog.Logger,
	schedule string,
	retention time.Duration,
) error {
	logger.Info("starting outbox relay process",
		slog.String("cleanup_schedule", schedule),
		slog.Duration("retention", retention),
	)
	return runRelay(ctx, relay, logger, schedule, retention)
}
