// Package mysql implements saga execution log persistence for MySQL.
package mysql

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

// ExecutionRepository handles saga execution persistence for MySQL. IDs are stored as BINARY(16).
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

	idBytes, err := exec.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal saga execution id")
	}
	ownerBytes, err := exec.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner id")
	}
	var groupBytes []byte
	if exec.GroupID != nil {
		if groupBytes, err = exec.GroupID.MarshalBinary(); err != nil {
			return apperrors.Wrap(err, "failed to marshal group id")
		}
	}

	steps, err := json.Marshal(exec.CompletedSteps)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal completed steps")
	}

	query := `INSERT INTO saga_executions (` + executionColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  status = VALUES(status),
			  completed_steps = VALUES(completed_steps),
			  error_code = VALUES(error_code),
			  error_message = VALUES(error_message),
			  group_id = VALUES(group_id),
			  finished_at = VALUES(finished_at)`

	_, err = querier.ExecContext(ctx, query,
		idBytes,
		exec.Name,
		string(exec.Status),
		string(steps),
		string(exec.ErrorCode),
		exec.ErrorMessage,
		ownerBytes,
		exec.GroupName,
		groupBytes,
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

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal saga execution id")
	}

	query := `SELECT ` + executionColumns + ` FROM saga_executions WHERE id = ?`

	exec, err := scanExecution(querier.QueryRowContext(ctx, query, idBytes))
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
			  WHERE (? = '' OR status = ?)
			  ORDER BY started_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, string(status), string(status), limit, offset)
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
	var idBytes, ownerBytes, groupBytes []byte
	var status, errorCode, steps string

	err := row.Scan(
		&idBytes,
		&exec.Name,
		&status,
		&steps,
		&errorCode,
		&exec.ErrorMessage,
		&ownerBytes,
		&exec.GroupName,
		&groupBytes,
		&exec.StartedAt,
		&exec.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := exec.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, err
	}
	if err := exec.OwnerID.UnmarshalBinary(ownerBytes); err != nil {
		return nil, err
	}
	if groupBytes != nil {
		var groupID uuid.UUID
		if err := groupID.UnmarshalBinary(groupBytes); err != nil {
			return nil, err
		}
		exec.GroupID = &groupID
	}

	exec.Status = domain.Status(status)
	exec.ErrorCode = domain.ErrorCode(errorCode)
	if err := json.Unmarshal([]byte(steps), &exec.CompletedSteps); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal completed steps")
	}
	return &exec, nil
}
