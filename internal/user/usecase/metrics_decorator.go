package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/studygroups/internal/metrics"
	"github.com/allisson/studygroups/internal/user/domain"
)

// userUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// RegisterUser records metrics for user registration.
func (u *userUseCaseWithMetrics) RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.RegisterUser(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "users", "user_register", status)
	u.metrics.RecordDuration(ctx, "users", "user_register", time.Since(start), status)

	return user, err
}

// GetUserByID records metrics for user lookups.
func (u *userUseCaseWithMetrics) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.GetUserByID(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "users", "user_get", status)
	u.metrics.RecordDuration(ctx, "users", "user_get", time.Since(start), status)

	return user, err
}

func (u *userUseCaseWithMetrics) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	start := time.Now()
	exists, err := u.next.Exists(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "users", "user_exists", status)
	u.metrics.RecordDuration(ctx, "users", "user_exists", time.Since(start), status)

	return exists, err
}
