// Package usecase orchestrates sagas: multi-step business transactions whose steps
// commit independently and are undone by compensations when a later step fails.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	groupDomain "github.com/allisson/studygroups/internal/group/domain"
	outboxDomain "github.com/allisson/studygroups/internal/outbox/domain"
	"github.com/allisson/studygroups/internal/saga/domain"
)

// Step is one unit of a saga. Execute and Compensate each own their transaction boundary
// and must be safe to replay.
type Step interface {
	Name() string
	Execute(ctx context.Context, exec *domain.Execution) error
	Compensate(ctx context.Context, exec *domain.Execution) error
}

// Abandoner is implemented by steps whose write can commit while the attempt still reports
// an error, e.g. a lost reply after COMMIT. The executor calls Abandon after such a step
// exhausts its retries so the unacknowledged write does not outlive the saga.
type Abandoner interface {
	Abandon(ctx context.Context, exec *domain.Execution) error
}

// UserLookup resolves saga owners.
type UserLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// GroupStore is the group persistence used by the create group saga.
type GroupStore interface {
	Create(ctx context.Context, group *groupDomain.Group) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*groupDomain.Group, error)
	GetByIDIncludingPending(ctx context.Context, id uuid.UUID) (*groupDomain.Group, error)
	AddMember(ctx context.Context, member *groupDomain.Member) error
	HasMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	Activate(ctx context.Context, id uuid.UUID, at time.Time) error
}

// OutboxAppender persists outbox records within the caller's transaction.
type OutboxAppender interface {
	Append(ctx context.Context, record *outboxDomain.OutboxRecord) error
}

// ExecutionRepository is the operator-facing saga execution log.
type ExecutionRepository interface {
	Save(ctx context.Context, exec *domain.Execution) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Execution, error)
	List(ctx context.Context, status domain.Status, offset, limit int) ([]*domain.Execution, error)
}

// Alerter raises operator-visible alerts for executions that could not be compensated.
type Alerter interface {
	CompensationFailed(ctx context.Context, exec *domain.Execution, err error)
}

// CreateGroupRequest is the input of the create group saga.
type CreateGroupRequest struct {
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateGroupUseCase starts create group sagas.
type CreateGroupUseCase interface {
	// Start runs the saga to a terminal state. The result is never nil. Business failures
	// are reported in the result with a nil error; infrastructure faults also return an
	// error wrapping domain.ErrSagaAborted or domain.ErrCompensationFailed.
	Start(ctx context.Context, req CreateGroupRequest) (*domain.Result, error)
}

// ExecutionUseCase reads the saga execution log.
type ExecutionUseCase interface {
	GetExecution(ctx context.Context, id uuid.UUID) (*domain.Execution, error)
	ListExecutions(ctx context.Context, status domain.Status, offset, limit int) ([]*domain.Execution, error)
}
