package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/studygroups/internal/database"
	apperrors "github.com/allisson/studygroups/internal/errors"
	outboxDomain "github.com/allisson/studygroups/internal/outbox/domain"
	"github.com/allisson/studygroups/internal/user/domain"
	appValidation "github.com/allisson/studygroups/internal/validation"
)

// UserUseCase handles user-related business logic
type UserUseCase struct {
	txManager  database.TxManager
	userRepo   UserRepository
	outboxRepo OutboxAppender
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	outboxRepo OutboxAppender,
) UseCase {
	return &UserUseCase{
		txManager:  txManager,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
	}
}

func (uc *UserUseCase) validateRegisterUserInput(input RegisterUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.JudgeHandle,
			validation.Required.Error("judge_handle is required"),
			appValidation.JudgeHandle,
		),
	)
	return appValidation.WrapValidationError(err)
}

// RegisterUser stores a new user and appends a USER_REGISTERED outbox record in the same
// transaction. Downstream consumers (settings bootstrap, welcome email) react to the event.
func (uc *UserUseCase) RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	if err := uc.validateRegisterUserInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        strings.TrimSpace(input.Name),
		Email:       strings.TrimSpace(strings.ToLower(input.Email)),
		JudgeHandle: input.JudgeHandle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return err
		}

		record, err := outboxDomain.NewRecord(
			domain.AggregateType,
			user.ID.String(),
			domain.EventTypeUserRegistered,
			domain.UserRegisteredPayload{
				UserID:      user.ID,
				Name:        user.Name,
				Email:       user.Email,
				JudgeHandle: user.JudgeHandle,
			},
		)
		if err != nil {
			return err
		}

		if err := uc.outboxRepo.Append(ctx, record); err != nil {
			return apperrors.Wrap(err, "failed to append user registered event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (uc *UserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// Exists reports whether a user with the given ID is registered.
func (uc *UserUseCase) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return uc.userRepo.Exists(ctx, id)
}
