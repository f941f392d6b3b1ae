// Package mysql implements study group persistence for MySQL.
package mysql

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

// GroupRepository handles study group and membership persistence for MySQL.
// UUIDs are stored as BINARY(16).
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

	id, err := group.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}
	ownerID, err := group.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `INSERT INTO study_groups (id, owner_id, name, description, member_count, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, ownerID, group.Name, group.Description,
		group.MemberCount, string(group.Status), group.CreatedAt, group.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrDuplicateGroupName
		}
		return apperrors.Wrap(err, "failed to create study group")
	}
	return nil
}

// Delete removes a group and its memberships. Deleting a missing group is not an error.
func (r *GroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM study_groups WHERE id = ?`, idBytes); err != nil {
		return apperrors.Wrap(err, "failed to delete study group")
	}
	return nil
}

// DeleteStalePending removes groups still pending that were created at or before olderThan,
// together with their memberships.
func (r *GroupRepository) DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM study_groups WHERE status = 'pending' AND created_at <= ?`

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

	query := `SELECT EXISTS (SELECT 1 FROM study_groups WHERE name = ?)`
	if err := querier.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check study group name")
	}
	return exists, nil
}

// GetByID returns an active group.
func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM study_groups WHERE id = ? AND status = 'active'`
	return r.getOne(ctx, query, id)
}

// GetByIDIncludingPending returns a group regardless of its status.
func (r *GroupRepository) GetByIDIncludingPending(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM study_groups WHERE id = ?`
	return r.getOne(ctx, query, id)
}

// AddMember inserts a membership row.
func (r *GroupRepository) AddMember(ctx context.Context, member *domain.Member) error {
	querier := database.GetTx(ctx, r.db)

	groupID, err := member.GroupID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}
	userID, err := member.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO group_members (group_id, user_id, role, created_at) VALUES (?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, groupID, userID, string(member.Role), member.CreatedAt)
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
	querier := database.GetTx(ctx, r.db)

	groupIDBytes, err := groupID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal group id")
	}
	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal user id")
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?)`
	if err := querier.QueryRowContext(ctx, query, groupIDBytes, userIDBytes).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check group membership")
	}
	return exists, nil
}

// Activate marks the group active and recomputes member_count from its membership rows.
func (r *GroupRepository) Activate(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}

	query := `UPDATE study_groups
			  SET status = 'active',
			      member_count = (SELECT COUNT(*) FROM group_members WHERE group_id = ?),
			      updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, idBytes, at, idBytes)
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

	groupIDBytes, err := groupID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal group id")
	}

	query := `SELECT group_id, user_id, role, created_at
			  FROM group_members
			  WHERE group_id = ?
			  ORDER BY created_at ASC, user_id ASC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, groupIDBytes, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list group members")
	}
	defer rows.Close() //nolint:errcheck

	members := make([]*domain.Member, 0)
	for rows.Next() {
		var member domain.Member
		var gid, uid []byte
		var role string
		if err := rows.Scan(&gid, &uid, &role, &member.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group member")
		}
		if err := member.GroupID.UnmarshalBinary(gid); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal group id")
		}
		if err := member.UserID.UnmarshalBinary(uid); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal user id")
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
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal group id")
	}

	var group domain.Group
	var gid, ownerID []byte
	var status string

	err = querier.QueryRowContext(ctx, query, idBytes).Scan(
		&gid, &ownerID, &group.Name, &group.Description,
		&group.MemberCount, &status, &group.CreatedAt, &group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get study group")
	}

	if err := group.ID.UnmarshalBinary(gid); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal group id")
	}
	if err := group.OwnerID.UnmarshalBinary(ownerID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal owner id")
	}
	group.Status = domain.Status(status)
	return &group, nil
}
