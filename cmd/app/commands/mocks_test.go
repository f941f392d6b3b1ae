package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	groupDomain "github.com/allisson/studygroups/internal/group/domain"
	groupUsecase "github.com/allisson/studygroups/internal/group/usecase"
	outboxDomain "github.com/allisson/studygroups/internal/outbox/domain"
	outboxUsecase "github.com/allisson/studygroups/internal/outbox/usecase"
	sagaDomain "github.com/allisson/studygroups/internal/saga/domain"
	sagaUsecase "github.com/allisson/studygroups/internal/saga/usecase"
	userDomain "github.com/allisson/studygroups/internal/user/domain"
	userUsecase "github.com/allisson/studygroups/internal/user/usecase"
)

type mockUserUseCase struct {
	mock.Mock
}

func (m *mockUserUseCase) RegisterUser(
	ctx context.Context,
	input userUsecase.RegisterUserInput,
) (*userDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserUseCase) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockCreateGroupUseCase struct {
	mock.Mock
}

func (m *mockCreateGroupUseCase) Start(
	ctx context.Context,
	req sagaUsecase.CreateGroupRequest,
) (*sagaDomain.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sagaDomain.Result), args.Error(1)
}

type mockGroupUseCase struct {
	mock.Mock
}

func (m *mockGroupUseCase) GetByID(ctx context.Context, id uuid.UUID) (*groupDomain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*groupDomain.Group), args.Error(1)
}

func (m *mockGroupUseCase) ListMembers(
	ctx context.Context,
	groupID uuid.UUID,
	offset, limit int,
) ([]*groupDomain.Member, error) {
	args := m.Called(ctx, groupID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*groupDomain.Member), args.Error(1)
}

func (m *mockGroupUseCase) SweepStalePending(ctx context.Context, age time.Duration) (int64, error) {
	args := m.Called(ctx, age)
	return args.Get(0).(int64), args.Error(1)
}

type mockExecutionUseCase struct {
	mock.Mock
}

func (m *mockExecutionUseCase) GetExecution(ctx context.Context, id uuid.UUID) (*sagaDomain.Execution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sagaDomain.Execution), args.Error(1)
}

func (m *mockExecutionUseCase) ListExecutions(
	ctx context.Context,
	status sagaDomain.Status,
	offset, limit int,
) ([]*sagaDomain.Execution, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sagaDomain.Execution), args.Error(1)
}

type mockRelayUseCase struct {
	mock.Mock
}

func (m *mockRelayUseCase) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockRelayUseCase) ProcessBatch(ctx context.Context) (*outboxUsecase.BatchResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outboxUsecase.BatchResult), args.Error(1)
}

func (m *mockRelayUseCase) Cleanup(ctx context.Context, retention time.Duration, dryRun bool) (int64, error) {
	args := m.Called(ctx, retention, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRelayUseCase) ListFlagged(ctx context.Context, offset, limit int) ([]*outboxDomain.OutboxRecord, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outboxDomain.OutboxRecord), args.Error(1)
}

func (m *mockRelayUseCase) Requeue(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRelayUseCase) QueueSize(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var (
	_ userUsecase.UseCase            = (*mockUserUseCase)(nil)
	_ sagaUsecase.CreateGroupUseCase = (*mockCreateGroupUseCase)(nil)
	_ groupUsecase.UseCase           = (*mockGroupUseCase)(nil)
	_ sagaUsecase.ExecutionUseCase   = (*mockExecutionUseCase)(nil)
	_ outboxUsecase.RelayUseCase     = (*mockRelayUseCase)(nil)
)
