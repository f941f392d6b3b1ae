package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/studygroups/internal/group/domain"
)

// GroupUseCase serves active study groups and their memberships.
type GroupUseCase struct {
	groupRepo GroupRepository
}

// NewGroupUseCase creates a new GroupUseCase.
func NewGroupUseCase(groupRepo GroupRepository) UseCase {
	return &GroupUseCase{groupRepo: groupRepo}
}

// GetByID returns an active group. Groups still being created are reported as not found.
func (uc *GroupUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	return uc.groupRepo.GetByID(ctx, id)
}

// ListMembers lists the members of an active group.
func (uc *GroupUseCase) ListMembers(
	ctx context.Context,
	groupID uuid.UUID,
	offset, limit int,
) ([]*domain.Member, error) {
	if _, err := uc.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return uc.groupRepo.ListMembers(ctx, groupID, offset, limit)
}

// SweepStalePending deletes groups that have stayed pending for longer than age. A saga
// that stops between inserting its group and recording a terminal state leaves such a row
// behind, and it would otherwise hold its name forever.
func (uc *GroupUseCase) SweepStalePending(ctx context.Context, age time.Duration) (int64, error) {
	if age <= 0 {
		return 0, fmt.Errorf("age must be positive, got: %s", age)
	}
	return uc.groupRepo.DeleteStalePending(ctx, time.Now().UTC().Add(-age))
}
