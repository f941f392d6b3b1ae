package postgresql

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/studygroups/internal/group/domain"
)

var groupRowColumns = []string{
	"id", "owner_id", "name", "description", "member_count", "status", "created_at", "updated_at",
}

func setupRepo(t *testing.T) (*GroupRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewGroupRepository(db), mock
}

func pendingGroup() *domain.Group {
	now := time.Now().UTC()
	return &domain.Group{
		ID:          uuid.Must(uuid.NewV7()),
		OwnerID:     uuid.Must(uuid.NewV7()),
		Name:        "Algo Study",
		Description: "graphs on tuesdays",
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestGroupRepository_Create(t *testing.T) {
	repo, mock := setupRepo(t)
	group := pendingGroup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO study_groups")).
		WithArgs(group.ID, group.OwnerID, "Algo Study", "graphs on tuesdays", 0, "pending",
			group.CreatedAt, group.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), group))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepository_Create_DuplicateName(t *testing.T) {
	repo, mock := setupRepo(t)
	mock.ExpectExec("INSERT INTO study_groups").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_study_groups_name"})

	err := repo.Create(context.Background(), pendingGroup())
	assert.ErrorIs(t, err, domain.ErrDuplicateGroupName)
}

func TestGroupRepository_Delete(t *testing.T) {
	repo, mock := setupRepo(t)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM study_groups WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), id))
}

func TestGroupRepository_DeleteStalePending(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mock := setupRepo(t)
		cutoff := time.Now().UTC().Add(-15 * time.Minute)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM study_groups WHERE status = 'pending' AND created_at <= $1")).
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 2))

		count, err := repo.DeleteStalePending(context.Background(), cutoff)

		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectExec("DELETE FROM study_groups").WillReturnError(sql.ErrConnDone)

		count, err := repo.DeleteStalePending(context.Background(), time.Now().UTC())

		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Zero(t, count)
	})
}

func TestGroupRepository_ExistsByName(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM study_groups WHERE name = $1)")).
		WithArgs("Algo Study").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByName(context.Background(), "Algo Study")

	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGroupRepository_GetByID(t *testing.T) {
	t.Run("Active", func(t *testing.T) {
		repo, mock := setupRepo(t)
		group := pendingGroup()

		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND status = 'active'")).
			WithArgs(group.ID).
			WillReturnRows(sqlmock.NewRows(groupRowColumns).AddRow(
				group.ID.String(), group.OwnerID.String(), group.Name, group.Description, 1, "active",
				group.CreatedAt, group.UpdatedAt,
			))

		got, err := repo.GetByID(context.Background(), group.ID)

		require.NoError(t, err)
		assert.Equal(t, group.ID, got.ID)
		assert.Equal(t, group.OwnerID, got.OwnerID)
		assert.Equal(t, 1, got.MemberCount)
		assert.True(t, got.IsActive())
	})

	t.Run("Pending is hidden", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("status = 'active'")).WillReturnError(sql.ErrNoRows)

		got, err := repo.GetByID(context.Background(), uuid.Must(uuid.NewV7()))

		assert.Nil(t, got)
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})
}

func TestGroupRepository_GetByIDIncludingPending(t *testing.T) {
	repo, mock := setupRepo(t)
	group := pendingGroup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM study_groups WHERE id = $1")).
		WithArgs(group.ID).
		WillReturnRows(sqlmock.NewRows(groupRowColumns).AddRow(
			group.ID.String(), group.OwnerID.String(), group.Name, group.Description, 0, "pending",
			group.CreatedAt, group.UpdatedAt,
		))

	got, err := repo.GetByIDIncludingPending(context.Background(), group.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestGroupRepository_AddMember(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mock := setupRepo(t)
		member := &domain.Member{
			GroupID:   uuid.Must(uuid.NewV7()),
			UserID:    uuid.Must(uuid.NewV7()),
			Role:      domain.RoleOwner,
			CreatedAt: time.Now().UTC(),
		}

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO group_members")).
			WithArgs(member.GroupID, member.UserID, "owner", member.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.AddMember(context.Background(), member))
	})

	t.Run("Duplicate", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectExec("INSERT INTO group_members").WillReturnError(&pq.Error{Code: "23505"})

		err := repo.AddMember(context.Background(), &domain.Member{Role: domain.RoleOwner})
		assert.ErrorIs(t, err, domain.ErrMemberAlreadyExists)
	})
}

func TestGroupRepository_HasMember(t *testing.T) {
	repo, mock := setupRepo(t)
	groupID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(regexp.QuoteMeta("FROM group_members WHERE group_id = $1 AND user_id = $2")).
		WithArgs(groupID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.HasMember(context.Background(), groupID, userID)

	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGroupRepository_Activate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mock := setupRepo(t)
		id := uuid.Must(uuid.NewV7())
		at := time.Now().UTC()

		mock.ExpectExec(regexp.QuoteMeta("member_count = (SELECT COUNT(*) FROM group_members WHERE group_id = $1)")).
			WithArgs(id, at).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Activate(context.Background(), id, at))
	})

	t.Run("Missing group", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectExec("UPDATE study_groups").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Activate(context.Background(), uuid.Must(uuid.NewV7()), time.Now())
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})
}

func TestGroupRepository_ListMembers(t *testing.T) {
	repo, mock := setupRepo(t)
	groupID := uuid.Must(uuid.NewV7())
	owner := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2 OFFSET $3")).
		WithArgs(groupID, 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"group_id", "user_id", "role", "created_at"}).
			AddRow(groupID.String(), owner.String(), "owner", now))

	members, err := repo.ListMembers(context.Background(), groupID, 0, 50)

	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, owner, members[0].UserID)
	assert.Equal(t, domain.RoleOwner, members[0].Role)
}
