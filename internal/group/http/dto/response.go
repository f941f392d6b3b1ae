package dto

import (
	"time"

	"github.com/google/uuid"
)

// GroupResponse represents the API response for a study group
type GroupResponse struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MemberResponse represents a group membership
type MemberResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ListMembersResponse represents a page of memberships
type ListMembersResponse struct {
	Data []MemberResponse `json:"data"`
}

// CreateGroupResponse reports the outcome of a create group saga
type CreateGroupResponse struct {
	SagaID         uuid.UUID  `json:"saga_id"`
	Status         string     `json:"status"`
	GroupID        *uuid.UUID `json:"group_id,omitempty"`
	ErrorCode      string     `json:"error_code,omitempty"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	CompletedSteps []string   `json:"completed_steps"`
}
