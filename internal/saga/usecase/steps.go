package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/allisson/studygroups/internal/database"
	apperrors "github.com/allisson/studygroups/internal/errors"
	groupDomain "github.com/allisson/studygroups/internal/group/domain"
	outboxDomain "github.com/allisson/studygroups/internal/outbox/domain"
	"github.com/allisson/studygroups/internal/saga/domain"
)

// Step names of the create group saga.
const (
	StepCreateGroup    = "create_group"
	StepAddOwnerMember = "add_owner_member"
)

// errGroupNotCreated means add_owner_member ran before create_group committed.
var errGroupNotCreated = errors.New("group has not been created")

var _ Abandoner = (*CreateGroupStep)(nil)

// CreateGroupStep inserts the group as pending under the execution's reserved ID.
type CreateGroupStep struct {
	groups GroupStore
}

// NewCreateGroupStep creates a CreateGroupStep.
func NewCreateGroupStep(groups GroupStore) *CreateGroupStep {
	return &CreateGroupStep{groups: groups}
}

func (s *CreateGroupStep) Name() string {
	return StepCreateGroup
}

// Execute inserts the pending group. A replay that finds the row it created before
// adopts it instead of inserting again.
func (s *CreateGroupStep) Execute(ctx context.Context, exec *domain.Execution) error {
	existing, err := s.groups.GetByIDIncludingPending(ctx, exec.ReservedGroupID)
	switch {
	case err == nil:
		if existing.OwnerID != exec.OwnerID || existing.Name != exec.GroupName {
			return apperrors.Wrap(apperrors.ErrConflict, "reserved group id belongs to another group")
		}
		id := existing.ID
		exec.GroupID = &id
		return nil
	case !errors.Is(err, groupDomain.ErrGroupNotFound):
		return err
	}

	now := time.Now().UTC()
	group := &groupDomain.Group{
		ID:          exec.ReservedGroupID,
		OwnerID:     exec.OwnerID,
		Name:        exec.GroupName,
		Description: exec.Description,
		MemberCount: 0,
		Status:      groupDomain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return err
	}

	id := group.ID
	exec.GroupID = &id
	return nil
}

// Compensate deletes the group. Deleting a group that is already gone succeeds.
func (s *CreateGroupStep) Compensate(ctx context.Context, exec *domain.Execution) error {
	if exec.GroupID == nil {
		return nil
	}
	if err := s.groups.Delete(ctx, *exec.GroupID); err != nil {
		return err
	}
	exec.GroupID = nil
	return nil
}

// Abandon deletes the row reserved for this execution. A failed Execute may have committed
// the insert before its reply was lost; the reserved ID is private to the execution, so the
// delete never touches another saga's group.
func (s *CreateGroupStep) Abandon(ctx context.Context, exec *domain.Execution) error {
	if err := s.groups.Delete(ctx, exec.ReservedGroupID); err != nil {
		return err
	}
	exec.GroupID = nil
	return nil
}

// AddOwnerMemberStep adds the owner membership, activates the group and appends the
// GROUP_CREATED outbox record in one transaction.
type AddOwnerMemberStep struct {
	txManager database.TxManager
	groups    GroupStore
	outbox    OutboxAppender
}

// NewAddOwnerMemberStep creates an AddOwnerMemberStep.
func NewAddOwnerMemberStep(txManager database.TxManager, groups GroupStore, outbox OutboxAppender) *AddOwnerMemberStep {
	return &AddOwnerMemberStep{txManager: txManager, groups: groups, outbox: outbox}
}

func (s *AddOwnerMemberStep) Name() string {
	return StepAddOwnerMember
}

// Execute is a no-op when the owner is already a member, since membership, activation
// and the outbox record always commit together.
func (s *AddOwnerMemberStep) Execute(ctx context.Context, exec *domain.Execution) error {
	if exec.GroupID == nil {
		return errGroupNotCreated
	}
	groupID := *exec.GroupID

	return s.txManager.WithTx(ctx, func(ctx context.Context) error {
		isMember, err := s.groups.HasMember(ctx, groupID, exec.OwnerID)
		if err != nil {
			return err
		}
		if isMember {
			return nil
		}

		now := time.Now().UTC()
		member := &groupDomain.Member{
			GroupID:   groupID,
			UserID:    exec.OwnerID,
			Role:      groupDomain.RoleOwner,
			CreatedAt: now,
		}
		if err := s.groups.AddMember(ctx, member); err != nil {
			return err
		}

		if err := s.groups.Activate(ctx, groupID, now); err != nil {
			return err
		}

		group, err := s.groups.GetByIDIncludingPending(ctx, groupID)
		if err != nil {
			return err
		}

		record, err := outboxDomain.NewRecord(
			groupDomain.AggregateType,
			groupID.String(),
			groupDomain.EventTypeGroupCreated,
			groupDomain.GroupCreatedPayload{
				GroupID:     group.ID,
				OwnerID:     group.OwnerID,
				Name:        group.Name,
				Description: group.Description,
				MemberCount: group.MemberCount,
				SagaID:      exec.ID,
				CreatedAt:   group.CreatedAt,
			},
		)
		if err != nil {
			return err
		}

		if err := s.outbox.Append(ctx, record); err != nil {
			return apperrors.Wrap(err, "failed to append group created event")
		}
		return nil
	})
}

// Compensate does nothing: the step's transaction either committed fully or not at all,
// and deleting the group cascades to its memberships.
func (s *AddOwnerMemberStep) Compensate(context.Context, *domain.Execution) error {
	return nil
}
