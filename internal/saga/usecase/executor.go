package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	apperrors "github.com/allisson/studygroups/internal/errors"
	"github.com/allisson/studygroups/internal/metrics"
	"github.com/allisson/studygroups/internal/saga/domain"
)

// ExecutorConfig bounds every step attempt and its retries.
type ExecutorConfig struct {
	// StepTimeout bounds a single attempt of a step, compensation or precondition lookup.
	StepTimeout time.Duration
	// MaxRetries is the number of retries after the first failed attempt.
	MaxRetries int
	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration
	// MaxInterval caps the backoff delay.
	MaxInterval time.Duration
}

// ErrorClassifier maps a step failure to the error code reported to callers.
type ErrorClassifier func(err error) domain.ErrorCode

// StepError is returned by Run when a step fails after its retry budget.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Executor runs saga steps in order and compensates committed steps in reverse order
// when a later step fails.
type Executor struct {
	config      ExecutorConfig
	alerter     Alerter
	sagaMetrics metrics.SagaMetrics
	logger      *slog.Logger
}

// NewExecutor creates an Executor. Zero config values fall back to 5s step timeouts and
// 100ms..2s backoff.
func NewExecutor(
	config ExecutorConfig,
	alerter Alerter,
	sagaMetrics metrics.SagaMetrics,
	logger *slog.Logger,
) *Executor {
	if config.StepTimeout <= 0 {
		config.StepTimeout = 5 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.InitialInterval <= 0 {
		config.InitialInterval = 100 * time.Millisecond
	}
	if config.MaxInterval < config.InitialInterval {
		config.MaxInterval = config.InitialInterval * 20
	}

	return &Executor{
		config:      config,
		alerter:     alerter,
		sagaMetrics: sagaMetrics,
		logger:      logger,
	}
}

// Run executes steps sequentially against exec and leaves exec in a terminal status.
//
// When a step fails before anything committed, exec becomes FAILED and the StepError is
// returned. When committed steps exist, exec goes through COMPENSATING to COMPENSATED and
// the StepError is returned. A failed step implementing Abandoner is abandoned first,
// unless it was rejected with a business error. When an abandon or a compensation fails,
// exec ends in COMPENSATION_FAILED, the alerter fires, and the returned error also wraps
// domain.ErrCompensationFailed.
func (x *Executor) Run(ctx context.Context, exec *domain.Execution, steps []Step, classify ErrorClassifier) error {
	for _, step := range steps {
		err := x.retry(ctx, func(ctx context.Context) error {
			return step.Execute(ctx, exec)
		}, func(outcome string) {
			x.sagaMetrics.RecordStepAttempt(ctx, exec.Name, step.Name(), outcome)
		})
		if err == nil {
			exec.MarkStepCompleted(step.Name())
			continue
		}

		stepErr := &StepError{Step: step.Name(), Err: err}
		code := classify(err)

		var undoErr error
		if abandoner, ok := step.(Abandoner); ok && !apperrors.IsBusiness(err) {
			undoErr = x.abandon(ctx, exec, step.Name(), abandoner)
		}

		if undoErr == nil && !exec.HasCompletedSteps() {
			if tErr := exec.Fail(code, err.Error()); tErr != nil {
				return errors.Join(stepErr, tErr)
			}
			return stepErr
		}

		if tErr := exec.BeginCompensation(code, err.Error()); tErr != nil {
			return errors.Join(stepErr, tErr)
		}

		if undoErr == nil {
			undoErr = x.compensate(ctx, exec, steps)
		}
		if undoErr != nil {
			if tErr := exec.CompensationFailed(undoErr); tErr != nil {
				return errors.Join(stepErr, undoErr, tErr)
			}
			x.alerter.CompensationFailed(ctx, exec, undoErr)
			return errors.Join(stepErr, fmt.Errorf("%w: %w", domain.ErrCompensationFailed, undoErr))
		}

		if tErr := exec.Compensated(); tErr != nil {
			return errors.Join(stepErr, tErr)
		}
		return stepErr
	}

	return exec.Complete()
}

// Do runs fn under the step timeout and retry budget.
func (x *Executor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return x.retry(ctx, fn, nil)
}

// compensate undoes committed steps in reverse commit order. It stops at the first
// compensation that still fails after retries. Compensations survive cancellation of
// the caller's context.
func (x *Executor) compensate(ctx context.Context, exec *domain.Execution, steps []Step) error {
	byName := make(map[string]Step, len(steps))
	for _, step := range steps {
		byName[step.Name()] = step
	}

	compCtx := context.WithoutCancel(ctx)
	committed := append([]string(nil), exec.CompletedSteps...)

	for i := len(committed) - 1; i >= 0; i-- {
		name := committed[i]
		step, ok := byName[name]
		if !ok {
			return fmt.Errorf("no compensation registered for step %s", name)
		}

		err := x.retry(compCtx, func(ctx context.Context) error {
			return step.Compensate(ctx, exec)
		}, nil)
		if err != nil {
			x.sagaMetrics.RecordCompensation(compCtx, exec.Name, name, "error")
			return fmt.Errorf("compensate %s: %w", name, err)
		}

		x.sagaMetrics.RecordCompensation(compCtx, exec.Name, name, "success")
		exec.MarkStepCompensated(name)
		x.logger.Info("saga step compensated",
			slog.String("saga_id", exec.ID.String()),
			slog.String("step", name),
		)
	}
	return nil
}

// abandon removes whatever a failed step may have committed without acknowledging it.
func (x *Executor) abandon(ctx context.Context, exec *domain.Execution, name string, a Abandoner) error {
	compCtx := context.WithoutCancel(ctx)
	err := x.retry(compCtx, func(ctx context.Context) error {
		return a.Abandon(ctx, exec)
	}, nil)
	if err != nil {
		x.sagaMetrics.RecordCompensation(compCtx, exec.Name, name, "error")
		return fmt.Errorf("abandon %s: %w", name, err)
	}

	x.sagaMetrics.RecordCompensation(compCtx, exec.Name, name, "success")
	x.logger.Info("saga step abandoned",
		slog.String("saga_id", exec.ID.String()),
		slog.String("step", name),
	)
	return nil
}

// retry runs fn with a per-attempt timeout and exponential backoff. Business errors are
// permanent. observe, when set, receives "success", "rejected" or "error" per attempt.
func (x *Executor) retry(ctx context.Context, fn func(ctx context.Context) error, observe func(outcome string)) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = x.config.InitialInterval
	b.MaxInterval = x.config.MaxInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(x.config.MaxRetries)), ctx) //nolint:gosec // non-negative

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, x.config.StepTimeout)
		defer cancel()

		err := fn(attemptCtx)
		switch {
		case err == nil:
			x.observe(observe, "success")
			return nil
		case apperrors.IsBusiness(err):
			x.observe(observe, "rejected")
			return backoff.Permanent(err)
		default:
			x.observe(observe, "error")
			return err
		}
	}

	notify := func(err error, next time.Duration) {
		x.logger.Warn("saga attempt failed, retrying",
			slog.Any("error", err),
			slog.Duration("retry_in", next),
		)
	}

	return backoff.RetryNotify(operation, policy, notify)
}

func (x *Executor) observe(observe func(string), outcome string) {
	if observe != nil {
		observe(outcome)
	}
}
