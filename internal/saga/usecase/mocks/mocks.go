// Package mocks provides mock implementations of the saga use case dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	groupDomain "github.com/allisson/studygroups/internal/group/domain"
	outboxDomain "github.com/allisson/studygroups/internal/outbox/domain"
	"github.com/allisson/studygroups/internal/saga/domain"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(t testingT, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// MockUserLookup is a mock implementation of usecase.UserLookup.
type MockUserLookup struct {
	mock.Mock
}

// NewMockUserLookup creates a mock that asserts its expectations on cleanup.
func NewMockUserLookup(t testingT) *MockUserLookup {
	m := &MockUserLookup{}
	register(t, &m.Mock)
	return m
}

func (m *MockUserLookup) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockGroupStore is a mock implementation of usecase.GroupStore.
type MockGroupStore struct {
	mock.Mock
}

// NewMockGroupStore creates a mock that asserts its expectations on cleanup.
func NewMockGroupStore(t testingT) *MockGroupStore {
	m := &MockGroupStore{}
	register(t, &m.Mock)
	return m
}

func (m *MockGroupStore) Create(ctx context.Context, group *groupDomain.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGroupStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupStore) GetByID(ctx context.Context, id uuid.UUID) (*groupDomain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*groupDomain.Group), args.Error(1)
}

func (m *MockGroupStore) GetByIDIncludingPending(ctx context.Context, id uuid.UUID) (*groupDomain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*groupDomain.Group), args.Error(1)
}

func (m *MockGroupStore) AddMember(ctx context.Context, member *groupDomain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockGroupStore) HasMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupStore) Activate(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockOutboxAppender is a mock implementation of usecase.OutboxAppender.
type MockOutboxAppender struct {
	mock.Mock
}

// NewMockOutboxAppender creates a mock that asserts its expectations on cleanup.
func NewMockOutboxAppender(t testingT) *MockOutboxAppender {
	m := &MockOutboxAppender{}
	register(t, &m.Mock)
	return m
}

func (m *MockOutboxAppender) Append(ctx context.Context, record *outboxDomain.OutboxRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockExecutionRepository is a mock implementation of usecase.ExecutionRepository.
type MockExecutionRepository struct {
	mock.Mock
}

// NewMockExecutionRepository creates a mock that asserts its expectations on cleanup.
func NewMockExecutionRepository(t testingT) *MockExecutionRepository {
	m := &MockExecutionRepository{}
	register(t, &m.Mock)
	return m
}

func (m *MockExecutionRepository) Save(ctx context.Context, exec *domain.Execution) error {
	args := m.Called(ctx, exec)
	return args.Error(0)
}

func (m *MockExecutionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Execution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Execution), args.Error(1)
}

func (m *MockExecutionRepository) List(
	ctx context.Context,
	status domain.Status,
	offset, limit int,
) ([]*domain.Execution, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Execution), args.Error(1)
}

// MockAlerter is a mock implementation of usecase.Alerter.
type MockAlerter struct {
	mock.Mock
}

// NewMockAlerter creates a mock that asserts its expectations on cleanup.
func NewMockAlerter(t testingT) *MockAlerter {
	m := &MockAlerter{}
	register(t, &m.Mock)
	return m
}

func (m *MockAlerter) CompensationFailed(ctx context.Context, exec *domain.Execution, err error) {
	m.Called(ctx, exec, err)
}

// MockStep is a mock implementation of usecase.Step.
type MockStep struct {
	mock.Mock
	name string
}

// NewMockStep creates a named mock step that asserts its expectations on cleanup.
func NewMockStep(t testingT, name string) *MockStep {
	m := &MockStep{name: name}
	register(t, &m.Mock)
	return m
}

func (m *MockStep) Name() string {
	return m.name
}

func (m *MockStep) Execute(ctx context.Context, exec *domain.Execution) error {
	args := m.Called(ctx, exec)
	return args.Error(0)
}

func (m *MockStep) Compensate(ctx context.Context, exec *domain.Execution) error {
	args := m.Called(ctx, exec)
	return args.Error(0)
}
