package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/events"
)

func newNotificationEnv(t *testing.T) (*testEnv, *NotificationService, events.Dispatcher) {
	t.Helper()
	env := newTestEnv()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := NewNotificationService(NotificationDependencies{Repos: env.repos})
	notifications.RegisterHandlers(dispatcher)
	return env, notifications, dispatcher
}

func TestNotifyOwnerOnStatusChange(t *testing.T) {
	ctx := context.Background()
	env, notifications, dispatcher := newNotificationEnv(t)
	owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
	actingSuper := env.addUser("acting", domain.RoleAdmin, domain.AdminLevelSuper)
	peerSuper := env.addUser("peer", domain.RoleAdmin, domain.AdminLevelSuper)

	err := dispatcher.Publish(ctx, events.Event{
		ID:          "evt-1",
		Type:        events.EventStatusChanged,
		ComplaintID: "c-1",
		ActorID:     actingSuper.ID,
		Payload: events.StatusChangedPayload{
			OwnerID:   owner.ID,
			OldStatus: domain.StatusAssigned,
			NewStatus: domain.StatusInProgress,
		},
	})
	require.NoError(t, err)

	stored, err := notifications.List(ctx, owner.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Complaint status updated", stored[0].Title)
	assert.Contains(t, stored[0].Message, `"Assigned"`)
	assert.Contains(t, stored[0].Message, `"In Progress"`)
	assert.Equal(t, string(events.EventStatusChanged), stored[0].EventKind)
	assert.False(t, stored[0].IsRead)

	// Super admin peers hear about the change, the acting admin does not.
	peerStored, err := notifications.List(ctx, peerSuper.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, peerStored, 1)
	assert.Contains(t, peerStored[0].Message, "A complaint moved")

	actorStored, err := notifications.List(ctx, actingSuper.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, actorStored)
}

func TestNotifySuperAdminsOnSubmission(t *testing.T) {
	ctx := context.Background()
	env, notifications, dispatcher := newNotificationEnv(t)
	owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
	superOne := env.addUser("super1", domain.RoleAdmin, domain.AdminLevelSuper)
	superTwo := env.addUser("super2", domain.RoleAdmin, domain.AdminLevelSuper)
	regular := env.addUser("admin", domain.RoleAdmin, domain.AdminLevelAdmin)

	err := dispatcher.Publish(ctx, events.Event{
		Type:        events.EventComplaintSubmitted,
		ComplaintID: "c-1",
		ActorID:     owner.ID,
		Payload: events.SubmittedPayload{
			OwnerID:  owner.ID,
			Subject:  "Wrong invoice",
			Priority: domain.PriorityHigh,
		},
	})
	require.NoError(t, err)

	for _, super := range []*domain.User{superOne, superTwo} {
		stored, err := notifications.List(ctx, super.ID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, stored, 1, "super admin %s", super.FullName)
	}
	stored, err := notifications.List(ctx, regular.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, stored, "regular admins are not in the review fan-out")
}

func TestReassignmentNotifiesAllThreeParties(t *testing.T) {
	ctx := context.Background()
	env, notifications, dispatcher := newNotificationEnv(t)
	owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
	oldAdmin := env.addUser("old", domain.RoleAdmin, domain.AdminLevelAdmin)
	newAdmin := env.addUser("new", domain.RoleAdmin, domain.AdminLevelAdmin)

	oldID := oldAdmin.ID
	err := dispatcher.Publish(ctx, events.Event{
		Type:        events.EventComplaintAssigned,
		ComplaintID: "c-1",
		ActorID:     "super-1",
		Payload: events.AssignedPayload{
			OwnerID:        owner.ID,
			OldAdminID:     &oldID,
			NewAdminID:     newAdmin.ID,
			IsReassignment: true,
			Reason:         "load balancing",
		},
	})
	require.NoError(t, err)

	for _, userID := range []string{owner.ID, oldAdmin.ID, newAdmin.ID} {
		stored, err := notifications.List(ctx, userID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, stored, 1, "user %s", userID)
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	ctx := context.Background()
	env, notifications, dispatcher := newNotificationEnv(t)
	owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)

	for i := 0; i < 3; i++ {
		err := dispatcher.Publish(ctx, events.Event{
			Type:        events.EventStatusChanged,
			ComplaintID: "c-1",
			Payload: events.StatusChangedPayload{
				OwnerID:   owner.ID,
				OldStatus: domain.StatusPending,
				NewStatus: domain.StatusAssigned,
			},
		})
		require.NoError(t, err)
	}

	count, err := notifications.UnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	stored, err := notifications.List(ctx, owner.ID, 10, 0)
	require.NoError(t, err)
	require.NoError(t, notifications.MarkRead(ctx, owner.ID, stored[0].ID))

	count, err = notifications.UnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, notifications.MarkAllRead(ctx, owner.ID))
	count, err = notifications.UnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
