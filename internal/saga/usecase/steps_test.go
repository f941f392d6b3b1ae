package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	databaseMocks "github.com/allisson/studygroups/internal/database/mocks"
	apperrors "github.com/allisson/studygroups/internal/errors"
	groupDomain "github.com/allisson/studygroups/internal/group/domain"
	outboxDomain "github.com/allisson/studygroups/internal/outbox/domain"
	sagaMocks "github.com/allisson/studygroups/internal/saga/usecase/mocks"
)

func TestCreateGroupStep_Execute(t *testing.T) {
	t.Run("Inserts pending group", func(t *testing.T) {
		groups := sagaMocks.NewMockGroupStore(t)
		step := NewCreateGroupStep(groups)
		exec := newTestExecution()

		groups.On("GetByIDIncludingPending", mock.Anything, exec.ReservedGroupID).
			Return(nil, groupDomain.ErrGroupNotFound).Once()
		groups.On("Create", mock.Anything, mock.MatchedBy(func(g *groupDomain.Group) bool {
			return g.ID == exec.ReservedGroupID &&
				g.OwnerID == exec.OwnerID &&
				g.Name == "Algo Study" &&
				g.MemberCount == 0 &&
				g.Status == groupDomain.StatusPending
		})).Return(nil).Once()

		require.NoError(t, step.Execute(context.Background(), exec))
		require.NotNil(t, exec.GroupID)
		assert.Equal(t, exec.ReservedGroupID, *exec.GroupID)
		assert.Equal(t, StepCreateGroup, step.Name())
	})

	t.Run("Replay adopts existing row", func(t *testing.T) {
		groups := sagaMocks.NewMockGroupStore(t)
		step := NewCreateGroupStep(groups)
		exec := newTestExecution()

		groups.On("GetByIDIncludingPending", mock.Anything, exec.ReservedGroupID).Return(&groupDomain.Group{
			ID:      exec.ReservedGroupID,
			OwnerID: exec.OwnerID,
			Name:    exec.GroupName,
			Status:  groupDomain.StatusPending,
		}, nil).Once()

		require.NoError(t, step.Execute(context.Background(), exec))
		require.NotNil(t, exec.GroupID)
		groups.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Reserved id owned by another group", func(t *testing.T) {
		groups := sagaMocks.NewMockGroupStore(t)
		step := NewCreateGroupStep(groups)
		exec := newTestExecution()

		groups.On("GetByIDIncludingPending", mock.Anything, exec.ReservedGroupID).Return(&groupDomain.Group{
			ID:      exec.ReservedGroupID,
			OwnerID: uuid.Must(uuid.NewV7()),
			Name:    "Other",
		}, nil).Once()

		err := step.Execute(context.Background(), exec)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Nil(t, exec.GroupID)
	})

	t.Run("Duplicate name", func(t *testing.T) {
		groups := sagaMocks.NewMockGroupStore(t)
		step := NewCreateGroupStep(groups)
		exec := newTestExecution()

		groups.On("GetByIDIncludingPending", mock.Anything, mock.Anything).Return(nil, groupDomain.ErrGroupNotFound).Once()
		groups.On("Create", mock.Anything, mock.Anything).Return(groupDomain.ErrDuplicateGroupName).Once()

		err := step.Execute(context.Background(), exec)
		assert.ErrorIs(t, err, groupDomain.ErrDuplicateGroupName)
		assert.Nil(t, exec.GroupID)
	})

	t.Run("Lookup error", func(t *testing.T) {
		groups := sagaMocks.NewMockGroupStore(t)
		step := NewCreateGroupStep(groups)

		groups.On("GetByIDIncludingPending", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

		assert.ErrorIs(t, step.Execute(context.Background(), newTestExecution()), assert.AnError)
	})
}

func TestCreateGroupStep_Compensate(t *testing.T) {
	t.Run("Deletes group", func(t *testing.T) {
		groups := sagaMocks.NewMockGroupStore(t)
		step := NewCreateGroupStep(groups)
		exec := newTestExecution()
		id := exec.ReservedGroupID
		exec.GroupID = &id

		groups.On("Delete", mock.Anything, id).Return(nil).Once()

		require.NoError(t, step.Compensate(context.Background(), exec))
		assert.Nil(t, exec.GroupID)
	})

	t.Run("Nothing to delete", func(t *testing.T) {
		groups := sagaMocks.NewMockGroupStore(t)
		step := NewCreateGroupStep(groups)

		assert.NoError(t, step.Compensate(context.Background(), newTestExecution()))
	})

	t.Run("Delete error keeps group id", func(t *testing.T) {
		groups := sagaMocks.NewMockGroupStore(t)
		step := NewCreateGroupStep(groups)
		exec := newTestExecution()
		id := exec.ReservedGroupID
		exec.GroupID = &id

		groups.On("Delete", mock.Anything, id).Return(assert.AnError).Once()

		assert.ErrorIs(t, step.Compensate(context.Background(), exec), assert.AnError)
		assert.NotNil(t, exec.GroupID)
	})
}

type addOwnerMemberDeps struct {
	txManager *databaseMocks.MockTxManager
	groups    *sagaMocks.MockGroupStore
	outbox    *sagaMocks.MockOutboxAppender
}

func newAddOwnerMemberStep(t *testing.T) (*AddOwnerMemberStep, addOwnerMemberDeps) {
	t.Helper()
	deps := addOwnerMemberDeps{
		txManager: databaseMocks.NewMockTxManager(t),
		groups:    sagaMocks.NewMockGroupStore(t),
		outbox:    sagaMocks.NewMockOutboxAppender(t),
	}
	return NewAddOwnerMemberStep(deps.txManager, deps.groups, deps.outbox), deps
}

func TestAddOwnerMemberStep_Execute(t *testing.T) {
	t.Run("Adds owner, activates and appends event", func(t *testing.T) {
		step, deps := newAddOwnerMemberStep(t)
		exec := newTestExecution()
		groupID := exec.ReservedGroupID
		exec.GroupID = &groupID
		createdAt := time.Now().UTC()

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.groups.On("HasMember", mock.Anything, groupID, exec.OwnerID).Return(false, nil).Once()
		deps.groups.On("AddMember", mock.Anything, mock.MatchedBy(func(m *groupDomain.Member) bool {
			return m.GroupID == groupID && m.UserID == exec.OwnerID && m.Role == groupDomain.RoleOwner
		})).Return(nil).Once()
		deps.groups.On("Activate", mock.Anything, groupID, mock.AnythingOfType("time.Time")).Return(nil).Once()
		deps.groups.On("GetByIDIncludingPending", mock.Anything, groupID).Return(&groupDomain.Group{
			ID:          groupID,
			OwnerID:     exec.OwnerID,
			Name:        exec.GroupName,
			Description: exec.Description,
			MemberCount: 1,
			Status:      groupDomain.StatusActive,
			CreatedAt:   createdAt,
		}, nil).Once()

		var record *outboxDomain.OutboxRecord
		deps.outbox.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			record = args.Get(1).(*outboxDomain.OutboxRecord)
		}).Return(nil).Once()

		require.NoError(t, step.Execute(context.Background(), exec))

		require.NotNil(t, record)
		assert.Equal(t, groupDomain.EventTypeGroupCreated, record.EventType)
		assert.Equal(t, groupDomain.AggregateType, record.AggregateType)
		assert.Equal(t, groupID.String(), record.AggregateID)

		var payload groupDomain.GroupCreatedPayload
		require.NoError(t, json.Unmarshal([]byte(record.Payload), &payload))
		assert.Equal(t, 1, payload.MemberCount)
		assert.Equal(t, exec.OwnerID, payload.OwnerID)
		assert.Equal(t, exec.ID, payload.SagaID)
	})

	t.Run("Replay after commit writes nothing", func(t *testing.T) {
		step, deps := newAddOwnerMemberStep(t)
		exec := newTestExecution()
		groupID := exec.ReservedGroupID
		exec.GroupID = &groupID

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.groups.On("HasMember", mock.Anything, groupID, exec.OwnerID).Return(true, nil).Once()

		require.NoError(t, step.Execute(context.Background(), exec))
		deps.groups.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything)
		deps.outbox.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("Outbox failure fails the step", func(t *testing.T) {
		step, deps := newAddOwnerMemberStep(t)
		exec := newTestExecution()
		groupID := exec.ReservedGroupID
		exec.GroupID = &groupID

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.groups.On("HasMember", mock.Anything, groupID, exec.OwnerID).Return(false, nil).Once()
		deps.groups.On("AddMember", mock.Anything, mock.Anything).Return(nil).Once()
		deps.groups.On("Activate", mock.Anything, groupID, mock.Anything).Return(nil).Once()
		deps.groups.On("GetByIDIncludingPending", mock.Anything, groupID).
			Return(&groupDomain.Group{ID: groupID, MemberCount: 1}, nil).Once()
		deps.outbox.On("Append", mock.Anything, mock.Anything).Return(assert.AnError).Once()

		assert.ErrorIs(t, step.Execute(context.Background(), exec), assert.AnError)
	})

	t.Run("Group not created", func(t *testing.T) {
		step, _ := newAddOwnerMemberStep(t)

		err := step.Execute(context.Background(), newTestExecution())
		assert.ErrorIs(t, err, errGroupNotCreated)
	})
}

func TestAddOwnerMemberStep_Compensate(t *testing.T) {
	step, _ := newAddOwnerMemberStep(t)

	assert.NoError(t, step.Compensate(context.Background(), newTestExecution()))
	assert.Equal(t, StepAddOwnerMember, step.Name())
}
