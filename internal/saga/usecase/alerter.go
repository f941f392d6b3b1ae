package usecase

import (
	"context"
	"log/slog"

	"github.com/allisson/studygroups/internal/metrics"
	"github.com/allisson/studygroups/internal/saga/domain"
)

// LogAlerter reports compensation failures as error logs and an alert counter that
// monitoring rules can page on.
type LogAlerter struct {
	sagaMetrics metrics.SagaMetrics
	logger      *slog.Logger
}

// NewLogAlerter creates a LogAlerter.
func NewLogAlerter(sagaMetrics metrics.SagaMetrics, logger *slog.Logger) *LogAlerter {
	return &LogAlerter{sagaMetrics: sagaMetrics, logger: logger}
}

// CompensationFailed logs the execution left behind and increments the alert counter.
func (a *LogAlerter) CompensationFailed(ctx context.Context, exec *domain.Execution, err error) {
	attrs := []any{
		slog.String("saga_id", exec.ID.String()),
		slog.String("saga", exec.Name),
		slog.String("status", string(exec.Status)),
		slog.Any("surviving_steps", exec.CompletedSteps),
		slog.String("owner_id", exec.OwnerID.String()),
		slog.String("group_name", exec.GroupName),
		slog.Any("error", err),
	}
	if exec.GroupID != nil {
		attrs = append(attrs, slog.String("group_id", exec.GroupID.String()))
	}

	a.logger.Error("saga compensation failed, manual intervention required", attrs...)
	a.sagaMetrics.RecordCompensationAlert(ctx, exec.Name)
}
