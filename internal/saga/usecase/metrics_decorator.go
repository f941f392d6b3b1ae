package usecase

import (
	"context"
	"time"

	"github.com/allisson/studygroups/internal/metrics"
	"github.com/allisson/studygroups/internal/saga/domain"
)

// createGroupUseCaseWithMetrics decorates CreateGroupUseCase with metrics instrumentation.
type createGroupUseCaseWithMetrics struct {
	next    CreateGroupUseCase
	metrics metrics.BusinessMetrics
}

// NewCreateGroupUseCaseWithMetrics wraps a CreateGroupUseCase with metrics recording.
// Business failures reported in the result count as success here; saga outcomes are
// recorded separately by metrics.SagaMetrics.
func NewCreateGroupUseCaseWithMetrics(useCase CreateGroupUseCase, m metrics.BusinessMetrics) CreateGroupUseCase {
	return &createGroupUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Start records metrics for saga starts.
func (c *createGroupUseCaseWithMetrics) Start(ctx context.Context, req CreateGroupRequest) (*domain.Result, error) {
	start := time.Now()
	result, err := c.next.Start(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "sagas", "create_group", status)
	c.metrics.RecordDuration(ctx, "sagas", "create_group", time.Since(start), status)

	return result, err
}
