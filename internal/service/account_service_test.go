package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

func TestDeleteAccountCascades(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	accounts := NewAccountService(env.uow, nil)

	owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
	super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
	admin := env.addUser("admin", domain.RoleAdmin, domain.AdminLevelAdmin)

	other := env.addUser("other", domain.RoleUser, domain.AdminLevelNone)

	complaint := env.submitComplaint(owner)
	_, err := env.approvals.Approve(ctx, super.Actor(), complaint.ID)
	require.NoError(t, err)
	_, err = env.assignments.Assign(ctx, super.Actor(), complaint.ID, admin.ID, "")
	require.NoError(t, err)
	_, err = env.complaints.AddComment(ctx, owner.Actor(), false, complaint.ID, "any update?")
	require.NoError(t, err)

	// Admin-facing notifications reference the owner's complaint and must go
	// with it; notifications about other complaints stay.
	otherComplaint := env.submitComplaint(other)
	complaintID := complaint.ID
	otherComplaintID := otherComplaint.ID
	require.NoError(t, env.repos.Notifications.Create(ctx, &domain.Notification{
		UserID:      admin.ID,
		ComplaintID: &complaintID,
		Title:       "Complaint assigned to you",
	}))
	require.NoError(t, env.repos.Notifications.Create(ctx, &domain.Notification{
		UserID:      admin.ID,
		ComplaintID: &otherComplaintID,
		Title:       "New complaint submitted",
	}))

	require.NoError(t, accounts.DeleteAccount(ctx, owner.ID))

	_, err = env.repos.Users.GetByID(ctx, owner.ID)
	assert.Error(t, err)
	_, err = env.repos.Complaints.GetByID(ctx, complaint.ID)
	assert.Error(t, err)

	remaining, err := env.repos.Notifications.ListByUser(ctx, admin.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, otherComplaintID, *remaining[0].ComplaintID)

	err = accounts.DeleteAccount(ctx, owner.ID)
	require.Error(t, err, "deleting a missing account reports not found")
}
