// Package domain defines study groups, their memberships and the events they emit.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/studygroups/internal/errors"
)

// Outbox identifiers for study group events.
const (
	AggregateType = "study_group"

	EventTypeGroupCreated = "GROUP_CREATED"
)

// Status is the lifecycle state of a study group.
type Status string

const (
	// StatusPending marks a group whose creation workflow has not finished. Pending groups
	// reserve their name but are not visible through GetByID.
	StatusPending Status = "pending"
	// StatusActive marks a fully created group with its owner membership.
	StatusActive Status = "active"
)

// Role is a member's role within a group.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Group is a study group. Name is globally unique.
type Group struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	MemberCount int
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether the group finished its creation workflow.
func (g *Group) IsActive() bool {
	return g.Status == StatusActive
}

// Member is a user's membership in a group.
type Member struct {
	GroupID   uuid.UUID
	UserID    uuid.UUID
	Role      Role
	CreatedAt time.Time
}

// GroupCreatedPayload is the outbox payload emitted once a group becomes active.
type GroupCreatedPayload struct {
	GroupID     uuid.UUID `json:"group_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MemberCount int       `json:"member_count"`
	SagaID      uuid.UUID `json:"saga_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Domain-specific errors for group operations.
var (
	// ErrGroupNotFound indicates the group does not exist or is not active yet.
	ErrGroupNotFound = apperrors.Wrap(apperrors.ErrNotFound, "study group not found")

	// ErrDuplicateGroupName indicates another group already uses the name.
	ErrDuplicateGroupName = apperrors.Wrap(apperrors.ErrConflict, "study group name already exists")

	// ErrMemberAlreadyExists indicates the user is already a member of the group.
	ErrMemberAlreadyExists = apperrors.Wrap(apperrors.ErrConflict, "user is already a member of the group")
)
