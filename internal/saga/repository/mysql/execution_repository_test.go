package mysql

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/studygroups/internal/saga/domain"
)

var columns = []string{
	"id", "name", "status", "completed_steps", "error_code", "error_message",
	"owner_id", "group_name", "group_id", "started_at", "finished_at",
}

func setupRepo(t *testing.T) (*ExecutionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewExecutionRepository(db), mock
}

func idBytes(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	b, err := id.MarshalBinary()
	require.NoError(t, err)
	return b
}

func TestExecutionRepository_Save(t *testing.T) {
	repo, mock := setupRepo(t)
	exec := domain.NewCreateGroupExecution(uuid.Must(uuid.NewV7()), "Algo Study", "")
	require.NoError(t, exec.Fail(domain.ErrorCodeUserNotFound, "user not found"))

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WithArgs(idBytes(t, exec.ID), "create_group", "FAILED", `[]`, "USER_NOT_FOUND",
			sqlmock.AnyArg(), idBytes(t, exec.OwnerID), "Algo Study", sqlmock.AnyArg(),
			exec.StartedAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), exec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionRepository_GetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		repo, mock := setupRepo(t)
		id := uuid.Must(uuid.NewV7())
		ownerID := uuid.Must(uuid.NewV7())
		groupID := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta("FROM saga_executions WHERE id = ?")).
			WithArgs(idBytes(t, id)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				idBytes(t, id), "create_group", "COMPLETED", `["create_group","add_owner_member"]`, "", nil,
				idBytes(t, ownerID), "Algo Study", idBytes(t, groupID), now, now,
			))

		exec, err := repo.GetByID(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, id, exec.ID)
		assert.Equal(t, ownerID, exec.OwnerID)
		require.NotNil(t, exec.GroupID)
		assert.Equal(t, groupID, *exec.GroupID)
		assert.Equal(t, domain.StatusCompleted, exec.Status)
	})

	t.Run("Not found", func(t *testing.T) {
		repo, mock := setupRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM saga_executions")).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, domain.ErrExecutionNotFound)
	})

	t.Run("Invalid id bytes", func(t *testing.T) {
		repo, mock := setupRepo(t)
		now := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta("FROM saga_executions")).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				[]byte{1, 2}, "create_group", "COMPLETED", `[]`, "", nil,
				idBytes(t, uuid.Must(uuid.NewV7())), "Algo Study", nil, now, now,
			))

		_, err := repo.GetByID(context.Background(), uuid.Must(uuid.NewV7()))
		assert.Error(t, err)
	})
}

func TestExecutionRepository_List(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY started_at DESC")).
		WithArgs("FAILED", "FAILED", 20, 40).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(idBytes(t, uuid.Must(uuid.NewV7())), "create_group", "FAILED", `[]`, "DUPLICATE_GROUP_NAME",
				"taken", idBytes(t, uuid.Must(uuid.NewV7())), "Algo Study", nil, now, now).
			AddRow(idBytes(t, uuid.Must(uuid.NewV7())), "create_group", "FAILED", `[]`, "USER_NOT_FOUND",
				"missing", idBytes(t, uuid.Must(uuid.NewV7())), "Graphs", nil, now, now))

	execs, err := repo.List(context.Background(), domain.StatusFailed, 40, 20)

	require.NoError(t, err)
	require.Len(t, execs, 2)
	assert.Equal(t, domain.ErrorCodeDuplicateGroupName, execs[0].ErrorCode)
	assert.Equal(t, domain.ErrorCodeUserNotFound, execs[1].ErrorCode)
}
