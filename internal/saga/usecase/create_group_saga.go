package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/studygroups/internal/database"
	apperrors "github.com/allisson/studygroups/internal/errors"
	groupDomain "github.com/allisson/studygroups/internal/group/domain"
	"github.com/allisson/studygroups/internal/metrics"
	"github.com/allisson/studygroups/internal/saga/domain"
	appValidation "github.com/allisson/studygroups/internal/validation"
)

const saveExecutionTimeout = 5 * time.Second

// CreateGroupSaga creates a study group with its owner membership and GROUP_CREATED event,
// or leaves no trace of the group.
type CreateGroupSaga struct {
	users       UserLookup
	groups      GroupStore
	executions  ExecutionRepository
	executor    *Executor
	steps       []Step
	sagaMetrics metrics.SagaMetrics
	logger      *slog.Logger
}

// NewCreateGroupSaga wires the create group saga. executions may be nil to skip the
// execution log.
func NewCreateGroupSaga(
	txManager database.TxManager,
	users UserLookup,
	groups GroupStore,
	outbox OutboxAppender,
	executions ExecutionRepository,
	executor *Executor,
	sagaMetrics metrics.SagaMetrics,
	logger *slog.Logger,
) *CreateGroupSaga {
	return &CreateGroupSaga{
		users:      users,
		groups:     groups,
		executions: executions,
		executor:   executor,
		steps: []Step{
			NewCreateGroupStep(groups),
			NewAddOwnerMemberStep(txManager, groups, outbox),
		},
		sagaMetrics: sagaMetrics,
		logger:      logger,
	}
}

// ValidateCreateGroupRequest checks the request shape.
func ValidateCreateGroupRequest(req CreateGroupRequest) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.OwnerID,
			validation.Required.Error("owner_id is required"),
			appValidation.UUIDString,
		),
		validation.Field(&req.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.RuneLength(1, 100).Error("name must be between 1 and 100 characters"),
		),
		validation.Field(&req.Description,
			validation.RuneLength(0, 1000).Error("description must be at most 1000 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Start runs the saga to a terminal state.
func (s *CreateGroupSaga) Start(ctx context.Context, req CreateGroupRequest) (*domain.Result, error) {
	if err := ValidateCreateGroupRequest(req); err != nil {
		exec := domain.NewCreateGroupExecution(uuid.Nil, req.Name, req.Description)
		if tErr := exec.Fail(domain.ErrorCodeInvalidRequest, err.Error()); tErr != nil {
			return exec.Result(), tErr
		}
		s.logger.Warn("create group request rejected",
			slog.String("saga_id", exec.ID.String()),
			slog.Any("error", err),
		)
		s.sagaMetrics.RecordSagaFinished(ctx, exec.Name, string(exec.Status), string(exec.ErrorCode), exec.Duration())
		return exec.Result(), nil
	}

	ownerID := uuid.MustParse(req.OwnerID)
	exec := domain.NewCreateGroupExecution(ownerID, strings.TrimSpace(req.Name), req.Description)

	s.logger.Info("saga started",
		slog.String("saga_id", exec.ID.String()),
		slog.String("saga", exec.Name),
		slog.String("owner_id", ownerID.String()),
		slog.String("group_name", exec.GroupName),
	)

	var exists bool
	err := s.executor.Do(ctx, func(ctx context.Context) error {
		var lookupErr error
		exists, lookupErr = s.users.Exists(ctx, ownerID)
		return lookupErr
	})
	if err != nil {
		return s.abort(ctx, exec, apperrors.Wrap(err, "failed to look up owner"))
	}
	if !exists {
		return s.reject(ctx, exec, domain.ErrorCodeUserNotFound, fmt.Sprintf("user %s not found", ownerID))
	}

	var taken bool
	err = s.executor.Do(ctx, func(ctx context.Context) error {
		var lookupErr error
		taken, lookupErr = s.groups.ExistsByName(ctx, exec.GroupName)
		return lookupErr
	})
	if err != nil {
		return s.abort(ctx, exec, apperrors.Wrap(err, "failed to check group name"))
	}
	if taken {
		return s.reject(ctx, exec, domain.ErrorCodeDuplicateGroupName,
			fmt.Sprintf("study group name %q already exists", exec.GroupName))
	}

	runErr := s.executor.Run(ctx, exec, s.steps, classifyCreateGroupError)
	switch {
	case runErr == nil:
		return s.finish(ctx, exec, nil)
	case errors.Is(runErr, domain.ErrCompensationFailed):
		return s.finish(ctx, exec, runErr)
	case apperrors.IsBusiness(runErr):
		return s.finish(ctx, exec, nil)
	default:
		return s.finish(ctx, exec, fmt.Errorf("%w: %w", domain.ErrSagaAborted, runErr))
	}
}

func classifyCreateGroupError(err error) domain.ErrorCode {
	if errors.Is(err, groupDomain.ErrDuplicateGroupName) {
		return domain.ErrorCodeDuplicateGroupName
	}
	return domain.ErrorCodeInternal
}

func (s *CreateGroupSaga) reject(
	ctx context.Context,
	exec *domain.Execution,
	code domain.ErrorCode,
	message string,
) (*domain.Result, error) {
	if err := exec.Fail(code, message); err != nil {
		return s.finish(ctx, exec, err)
	}
	return s.finish(ctx, exec, nil)
}

func (s *CreateGroupSaga) abort(ctx context.Context, exec *domain.Execution, cause error) (*domain.Result, error) {
	if err := exec.Fail(domain.ErrorCodeInternal, cause.Error()); err != nil {
		return s.finish(ctx, exec, errors.Join(cause, err))
	}
	return s.finish(ctx, exec, fmt.Errorf("%w: %w", domain.ErrSagaAborted, cause))
}

// finish records the outcome and writes the execution log. A log write failure never
// changes the result.
func (s *CreateGroupSaga) finish(ctx context.Context, exec *domain.Execution, err error) (*domain.Result, error) {
	s.sagaMetrics.RecordSagaFinished(ctx, exec.Name, string(exec.Status), string(exec.ErrorCode), exec.Duration())

	attrs := []any{
		slog.String("saga_id", exec.ID.String()),
		slog.String("saga", exec.Name),
		slog.String("status", string(exec.Status)),
		slog.Any("completed_steps", exec.CompletedSteps),
		slog.Duration("duration", exec.Duration()),
	}
	if exec.ErrorCode != domain.ErrorCodeNone {
		attrs = append(attrs, slog.String("error_code", string(exec.ErrorCode)))
	}
	if exec.GroupID != nil {
		attrs = append(attrs, slog.String("group_id", exec.GroupID.String()))
	}

	switch {
	case err != nil:
		s.logger.Error("saga finished with error", append(attrs, slog.Any("error", err))...)
	case exec.Status == domain.StatusCompleted:
		s.logger.Info("saga completed", attrs...)
	default:
		s.logger.Warn("saga failed", attrs...)
	}

	if s.executions != nil {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveExecutionTimeout)
		defer cancel()
		if saveErr := s.executions.Save(saveCtx, exec); saveErr != nil {
			s.logger.Error("failed to save saga execution",
				slog.String("saga_id", exec.ID.String()),
				slog.Any("error", saveErr),
			)
		}
	}

	return exec.Result(), err
}
