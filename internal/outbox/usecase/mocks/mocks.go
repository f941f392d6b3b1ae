// Package mocks provides mock implementations of the outbox use case dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/studygroups/internal/outbox/domain"
	"github.com/allisson/studygroups/internal/outbox/publisher"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockOutboxRepository is a mock implementation of usecase.OutboxRepository.
type MockOutboxRepository struct {
	mock.Mock
}

// NewMockOutboxRepository creates a mock that asserts its expectations on cleanup.
func NewMockOutboxRepository(t testingT) *MockOutboxRepository {
	m := &MockOutboxRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockOutboxRepository) FetchUnpublished(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*domain.OutboxRecord, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OutboxRecord), args.Error(1)
}

func (m *MockOutboxRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OutboxRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutboxRecord), args.Error(1)
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	args := m.Called(ctx, id, publishedAt)
	return args.Error(0)
}

func (m *MockOutboxRepository) RecordFailure(
	ctx context.Context,
	id uuid.UUID,
	reason string,
	nextAttemptAt time.Time,
	flaggedAt *time.Time,
) error {
	args := m.Called(ctx, id, reason, nextAttemptAt, flaggedAt)
	return args.Error(0)
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxRepository) CountPublished(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxRepository) CountUnpublished(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxRepository) ListFlagged(
	ctx context.Context,
	offset, limit int,
) ([]*domain.OutboxRecord, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OutboxRecord), args.Error(1)
}

func (m *MockOutboxRepository) Requeue(ctx context.Context, id uuid.UUID, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

// MockPublisher is a mock implementation of publisher.Publisher.
type MockPublisher struct {
	mock.Mock
}

// NewMockPublisher creates a mock that asserts its expectations on cleanup.
func NewMockPublisher(t testingT) *MockPublisher {
	m := &MockPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPublisher) Publish(ctx context.Context, msg publisher.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
