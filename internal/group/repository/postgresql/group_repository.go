// Package postgresql implements study group persistence for PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/studygroups/internal/database"
	apperrors "github.com/allisson/studygroups/internal/errors"
	"github.com/allisson/studygroups/internal/group/domain"
)

const groupColumns = `id, owner_id, name, description, member_count, status, created_at, updated_at`

// GroupRepository handles study group and membership persistence for PostgreSQL.
type GroupRepository struct {
	db *sql.DB
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a group. The unique constraint on name is authoritative for duplicates.
func (r *GroupRepository) Create(ctx context.Context, group *domain.Group) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO study_groups (id, owner_id, name, description, member_count, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(ctx, query, group.ID, group.OwnerID, group.Name, group.Description,
		group.MemberCount, string(group.Status), group.CreatedAt, group.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrDuplicateGroupName
		}
		return apperrors.Wrap(err, "failed to create study group")
	}
	return nil
}

// Delete removes a group and, through the foreign key cascade, its memberships.
// Deleting a missing group is not an error.
func (r *GroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM study_groups WHERE id = $1`, id); err != nil {
		return apperrors.Wrap(err, "failed to delete study group")
	}
	return nil
}

// DeleteStalePending removes groups still pending that were created at or before olderThan,
// together with their memberships.
func (r *GroupRepository) DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM study_groups WHERE status = 'pending' AND created_at <= $1`

	result, err := querier.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete stale pending groups")
	}
	return result.RowsAffected()
}

// ExistsByName reports whether any group, pending or active, uses the name.
func (r *GroupRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	querier := database.GetTx(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM study_groups WHERE name = $1)`
	if err := querier.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check study group name")
	}
	return exists, nil
}

// GetByID returns an active group.
func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM study_groups WHERE id = $1 AND status = 'active'`
	return r.getOne(ctx, query, id)
}

// GetByIDIncludingPending returns a group regardless of its status.
func (r *GroupRepository) GetByIDIncludingPending(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM study_groups WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// AddMember inserts a membership row.
func (r *GroupRepository) AddMember(ctx context.Context, member *domain.Member) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO group_members (group_id, user_id, role, created_at) VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(ctx, query, member.GroupID, member.UserID, string(member.Role), member.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrMemberAlreadyExists
		}
		return apperrors.Wrap(err, "failed to add group member")
	}
	return nil
}

// HasMember reports whether the user is a member of the group.
func (r *GroupRepository) HasMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var exists bool
	querier := database.GetTx(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`
	if err := querier.QueryRowContext(ctx, query, groupID, userID).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check group membership")
	}
	return exists, nil
}

// Activate marks the group active and recomputes member_count from the membership rows
// visible to the current transaction.
func (r *GroupRepository) Activate(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE study_groups
			  SET status = 'active',
			      member_count = (SELECT COUNT(*) FROM group_members WHERE group_id = $1),
			      updated_at = $2
			  WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id, at)
	if err != nil {
		return apperrors.Wrap(err, "failed to activate study group")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to activate study group")
	}
	if rows == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

// ListMembers returns the memberships of a group ordered by join time.
func (r *GroupRepository) ListMembers(
	ctx context.Context,
	groupID uuid.UUID,
	offset, limit int,
) ([]*domain.Member, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT group_id, user_id, role, created_at
			  FROM group_members
			  WHERE group_id = $1
			  ORDER BY created_at ASC, user_id ASC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list group members")
	}
	defer rows.Close() //nolint:errcheck

	members := make([]*domain.Member, 0)
	for rows.Next() {
		var member domain.Member
		var role string
		if err := rows.Scan(&member.GroupID, &member.UserID, &role, &member.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group member")
		}
		member.Role = domain.Role(role)
		members = append(members, &member)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate group members")
	}
	return members, nil
}

func (r *GroupRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.Group, error) {
	var group domain.Group
	var status string
	querier := database.GetTx(ctx, r.db)

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&group.ID, &group.OwnerID, &group.Name, &group.Description,
		&group.MemberCount, &status, &group.CreatedAt, &group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get study group")
	}

	group.Status = domain.Status(status)
	return &group, nil
}
