// Package usecase implements access to study groups. Group creation is driven by the
// create-group saga in the saga package.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/studygroups/internal/group/domain"
)

// GroupReader is the read side of the group store.
type GroupReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	ListMembers(ctx context.Context, groupID uuid.UUID, offset, limit int) ([]*domain.Member, error)
}

// GroupRepository adds the maintenance writes the use case performs on the group store.
type GroupRepository interface {
	GroupReader
	DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error)
}

// UseCase defines the group operations exposed to transports and the CLI.
type UseCase interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	ListMembers(ctx context.Context, groupID uuid.UUID, offset, limit int) ([]*domain.Member, error)
	SweepStalePending(ctx context.Context, age time.Duration) (int64, error)
}
