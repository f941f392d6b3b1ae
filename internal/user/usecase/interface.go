// Package usecase implements the user business logic and orchestrates user domain operations.
package usecase

import (
	"context"

	"github.com/google/uuid"

	outboxDomain "github.com/allisson/studygroups/internal/outbox/domain"
	"github.com/allisson/studygroups/internal/user/domain"
)

// RegisterUserInput contains the input data for user registration
type RegisterUserInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	JudgeHandle string `json:"judge_handle"`
}

// UseCase defines the interface for user business logic operations
type UseCase interface {
	RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserRepository interface defines user repository operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// OutboxAppender persists outbox records within the caller's transaction.
type OutboxAppender interface {
	Append(ctx context.Context, record *outboxDomain.OutboxRecord) error
}
