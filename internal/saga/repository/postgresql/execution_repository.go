// Package postgresql implements saga execution log persistence for PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/studygroups/internal/database"
	apperrors "github.com/allisson/studygroups/internal/errors"
	"github.com/allisson/studygroups/internal/saga/domain"
)

const executionColumns = `id, name, status, completed_steps, error_code, error_message,
	owner_id, group_name, group_id, started_at, finished_at`

// ExecutionRepository handles saga execution persistence for PostgreSQL.
type ExecutionRepository struct {
	db *sql.DB
}

// NewExecutionRepository creates a new ExecutionRepository.
func NewExecutionRepository(db *sql.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// Save inserts the execution or overwrites its mutable columns.
func (r *ExecutionRepository) Save(ctx context.Context, exec *domain.Execution) error {
	querier := database.GetTx(ctx, r.db)

	steps, err := json.Marshal(exec.CompletedSteps)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal completed steps")
	}

	var groupID uuid.NullUUID
	if exec.GroupID != nil {
		groupID = uuid.NullUUID{UUID: *exec.GroupID, Valid: true}
	}

	query := `INSERT INTO saga_executions (` + executionColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  ON CONFLICT (id) DO UPDATE SET
			  status = EXCLUDED.status,
			  completed_steps = EXCLUDED.completed_steps,
			  error_code = EXCLUDED.error_code,
			  error_message = EXCLUDED.error_message,
			  group_id = EXCLUDED.group_id,
			  finished_at = EXCLUDED.finished_at`

	_, err = querier.ExecContext(ctx, query,
		exec.ID,
		exec.Name,
		string(exec.Status),
		string(steps),
		string(exec.ErrorCode),
		exec.ErrorMessage,
		exec.OwnerID,
		exec.GroupName,
		groupID,
		exec.StartedAt,
		exec.FinishedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to save saga execution")
	}
	return nil
}

// GetByID retrieves an execution by ID.
func (r *ExecutionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Execution, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + executionColumns + ` FROM saga_executions WHERE id = $1`

	exec, err := scanExecution(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExecutionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get saga execution")
	}
	return exec, nil
}

// List returns executions newest first. An empty status matches every execution.
func (r *ExecutionRepository) List(
	ctx context.Context,
	status domain.Status,
	offset, limit int,
) ([]*domain.Execution, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + executionColumns + `
			  FROM saga_executions
			  WHERE ($1 = '' OR status = $1)
			  ORDER BY started_at DESC, id DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list saga executions")
	}
	defer rows.Close() //nolint:errcheck

	executions := make([]*domain.Execution, 0)
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan saga execution")
		}
		executions = append(executions, exec)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate saga executions")
	}

	return executions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExecution(row scanner) (*domain.Execution, error) {
	var exec domain.Execution
	var status, errorCode, steps string
	var groupID uuid.NullUUID

	err := row.Scan(
		&exec.ID,
		&exec.Name,
		&status,
		&steps,
		&errorCode,
		&exec.ErrorMessage,
		&exec.OwnerID,
		&exec.GroupName,
		&groupID,
		&exec.StartedAt,
		&exec.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	exec.Status = domain.Status(status)
	exec.ErrorCode = domain.ErrorCode(errorCode)
	if groupID.Valid {
		id := groupID.UUID
		exec.GroupID = &id
	}
	if err := json.Unmarshal([]byte(steps), &exec.CompletedSteps); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal completed steps")
	}
	return &exec, nil
}
