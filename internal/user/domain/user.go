// Package domain defines the core user domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/studygroups/internal/errors"
)

// Outbox identifiers for user events.
const (
	AggregateType = "user"

	EventTypeUserRegistered = "USER_REGISTERED"
)

// User represents a registered member of the platform, linked to a competitive
// programming account through JudgeHandle.
type User struct {
	ID          uuid.UUID
	Name        string
	Email       string
	JudgeHandle string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserRegisteredPayload is the outbox payload emitted when a user registers.
type UserRegisteredPayload struct {
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	JudgeHandle string    `json:"judge_handle"`
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.Wrap(apperrors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email or judge handle already exists.
	ErrUserAlreadyExists = apperrors.Wrap(apperrors.ErrConflict, "user already exists")
)
