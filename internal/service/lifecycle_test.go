package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

func TestApprovalWorkflow(t *testing.T) {
	ctx := context.Background()

	t.Run("approve requires super admin", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		complaint := env.submitComplaint(owner)

		_, err := env.approvals.Approve(ctx, domain.Actor{ID: "admin"}, complaint.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only a super admin")
	})

	t.Run("approve resets status to pending and records decision", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
		complaint := env.submitComplaint(owner)

		updated, err := env.approvals.Approve(ctx, super.Actor(), complaint.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalApproved, updated.ApprovalStatus)
		assert.Equal(t, domain.StatusPending, updated.Status)
		assert.Equal(t, super.ID, *updated.ReviewedBy)
		assert.Nil(t, updated.RejectionReason)

		_, err = env.approvals.Approve(ctx, super.Actor(), complaint.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already been approved")

		decisions, err := env.approvals.Decisions(ctx, complaint.ID)
		require.NoError(t, err)
		require.Len(t, decisions, 1)
		assert.Equal(t, domain.ActionApproved, decisions[0].Action)
	})

	t.Run("reject requires a reason and closes the complaint", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
		complaint := env.submitComplaint(owner)

		_, err := env.approvals.Reject(ctx, super.Actor(), complaint.ID, "  ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reason is required")

		updated, err := env.approvals.Reject(ctx, super.Actor(), complaint.ID, "duplicate report")
		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalRejected, updated.ApprovalStatus)
		assert.Equal(t, domain.StatusClosed, updated.Status)
		assert.Equal(t, "duplicate report", *updated.RejectionReason)
	})

	t.Run("request changes leaves lifecycle status untouched", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
		complaint := env.submitComplaint(owner)

		updated, err := env.approvals.RequestChanges(ctx, super.Actor(), complaint.ID, "add the invoice number")
		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalChangesRequested, updated.ApprovalStatus)
		assert.Equal(t, domain.StatusPending, updated.Status)
		assert.Equal(t, "add the invoice number", *updated.RejectionReason)
	})

	t.Run("resubmit returns to the review queue", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
		complaint := env.submitComplaint(owner)

		_, err := env.approvals.Resubmit(ctx, owner.ID, complaint.ID)
		require.Error(t, err, "resubmitting while pending review is rejected")

		_, err = env.approvals.RequestChanges(ctx, super.Actor(), complaint.ID, "more detail")
		require.NoError(t, err)

		_, err = env.approvals.Resubmit(ctx, "someone-else", complaint.ID)
		require.Error(t, err)

		updated, err := env.approvals.Resubmit(ctx, owner.ID, complaint.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalPendingReview, updated.ApprovalStatus)
		assert.Equal(t, 1, updated.ResubmissionCount)
		assert.Nil(t, updated.ReviewedBy)
		assert.Nil(t, updated.RejectionReason)
	})
}

func TestAssignment(t *testing.T) {
	ctx := context.Background()

	t.Run("unapproved complaint cannot be assigned", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
		admin := env.addUser("admin", domain.RoleAdmin, domain.AdminLevelAdmin)
		complaint := env.submitComplaint(owner)

		_, err := env.assignments.Assign(ctx, super.Actor(), complaint.ID, admin.ID, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be approved")
	})

	t.Run("first assignment needs no reason, reassignment does", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
		admin := env.addUser("admin", domain.RoleAdmin, domain.AdminLevelAdmin)
		other := env.addUser("other", domain.RoleAdmin, domain.AdminLevelAdmin)
		complaint := env.submitComplaint(owner)

		_, err := env.approvals.Approve(ctx, super.Actor(), complaint.ID)
		require.NoError(t, err)

		updated, err := env.assignments.Assign(ctx, super.Actor(), complaint.ID, admin.ID, "")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAssigned, updated.Status)
		assert.Equal(t, admin.ID, *updated.AssignedTo)
		assert.NotNil(t, updated.AssignedAt)
		assert.Equal(t, 0, updated.ReassignmentCount)

		_, err = env.assignments.Assign(ctx, super.Actor(), complaint.ID, other.ID, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reason is required when reassigning")

		updated, err = env.assignments.Assign(ctx, super.Actor(), complaint.ID, other.ID, "admin on leave")
		require.NoError(t, err)
		assert.Equal(t, other.ID, *updated.AssignedTo)
		assert.Equal(t, 1, updated.ReassignmentCount)

		records, err := env.assignments.ReassignmentHistory(ctx, complaint.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, admin.ID, *records[0].OldAdminID)
		assert.Equal(t, other.ID, records[0].NewAdminID)
		assert.Equal(t, "admin on leave", records[0].Reason)
	})

	t.Run("only super admins assign", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		admin := env.addUser("admin", domain.RoleAdmin, domain.AdminLevelAdmin)
		complaint := env.submitComplaint(owner)

		_, err := env.assignments.Assign(ctx, admin.Actor(), complaint.ID, admin.ID, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only a super admin can assign")
	})

	t.Run("workload excludes closed and resolved", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
		admin := env.addUser("admin", domain.RoleAdmin, domain.AdminLevelAdmin)

		first := env.submitComplaint(owner)
		second := env.submitComplaint(owner)
		for _, id := range []string{first.ID, second.ID} {
			_, err := env.approvals.Approve(ctx, super.Actor(), id)
			require.NoError(t, err)
			_, err = env.assignments.Assign(ctx, super.Actor(), id, admin.ID, "")
			require.NoError(t, err)
		}

		_, err := env.complaints.ChangeStatus(ctx, admin.Actor(), first.ID, domain.StatusInProgress, "")
		require.NoError(t, err)
		_, err = env.complaints.ChangeStatus(ctx, admin.Actor(), first.ID, domain.StatusResolved, "fixed")
		require.NoError(t, err)

		count, err := env.assignments.Workload(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestStatusChangeScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
	super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
	admin := env.addUser("admin", domain.RoleAdmin, domain.AdminLevelAdmin)
	other := env.addUser("other", domain.RoleAdmin, domain.AdminLevelAdmin)

	complaint := env.submitComplaint(owner)
	_, err := env.approvals.Approve(ctx, super.Actor(), complaint.ID)
	require.NoError(t, err)
	_, err = env.assignments.Assign(ctx, super.Actor(), complaint.ID, admin.ID, "")
	require.NoError(t, err)

	// The assignee moves the complaint forward.
	updated, err := env.complaints.ChangeStatus(ctx, admin.Actor(), complaint.ID, domain.StatusInProgress, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)

	// Another admin cannot touch it.
	_, err = env.complaints.ChangeStatus(ctx, other.Actor(), complaint.ID, domain.StatusOnHold, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assigned to another admin")

	// A lock blocks even the assignee.
	_, err = env.locks.Lock(ctx, super.Actor(), complaint.ID, "under legal review")
	require.NoError(t, err)
	_, err = env.complaints.ChangeStatus(ctx, admin.Actor(), complaint.ID, domain.StatusResolved, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked by a super admin")

	// Unlock restores normal handling.
	_, err = env.locks.Unlock(ctx, super.Actor(), complaint.ID, "")
	require.NoError(t, err)
	updated, err = env.complaints.ChangeStatus(ctx, admin.Actor(), complaint.ID, domain.StatusResolved, "replaced the part")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, updated.Status)
	assert.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, "replaced the part", *updated.AdminResponse)

	// The owner confirms and the complaint closes.
	updated, err = env.complaints.ConfirmResolution(ctx, owner.ID, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, updated.Status)
	assert.True(t, updated.UserConfirmedResolved)

	// Closed means frozen for everyone, including the super admin.
	_, err = env.complaints.ChangeStatus(ctx, super.Actor(), complaint.ID, domain.StatusInProgress, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed and cannot be modified")

	history, err := env.complaints.History(ctx, complaint.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, history)
}

func TestLocking(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
	super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
	admin := env.addUser("admin", domain.RoleAdmin, domain.AdminLevelAdmin)
	complaint := env.submitComplaint(owner)

	_, err := env.locks.Lock(ctx, admin.Actor(), complaint.ID, "why not")
	require.Error(t, err, "regular admins cannot lock")

	_, err = env.locks.Lock(ctx, super.Actor(), complaint.ID, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock reason is required")

	locked, err := env.locks.Lock(ctx, super.Actor(), complaint.ID, "dispute escalated")
	require.NoError(t, err)
	assert.True(t, locked.IsLocked)
	assert.Equal(t, super.ID, *locked.LockedBy)
	assert.Equal(t, "dispute escalated", *locked.LockReason)

	_, err = env.locks.Lock(ctx, super.Actor(), complaint.ID, "again")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already locked")

	unlocked, err := env.locks.Unlock(ctx, super.Actor(), complaint.ID, "resolved dispute")
	require.NoError(t, err)
	assert.False(t, unlocked.IsLocked)
	assert.Nil(t, unlocked.LockedBy)
	assert.Nil(t, unlocked.LockReason)

	_, err = env.locks.Unlock(ctx, super.Actor(), complaint.ID, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not locked")
}

// setupClosed walks a fresh complaint through approval, assignment, handling
// and owner confirmation so it ends up Closed.
func setupClosed(t *testing.T, env *testEnv, owner, super, admin *domain.User) *domain.Complaint {
	t.Helper()
	ctx := context.Background()
	complaint := env.submitComplaint(owner)
	_, err := env.approvals.Approve(ctx, super.Actor(), complaint.ID)
	require.NoError(t, err)
	_, err = env.assignments.Assign(ctx, super.Actor(), complaint.ID, admin.ID, "")
	require.NoError(t, err)
	_, err = env.complaints.ChangeStatus(ctx, admin.Actor(), complaint.ID, domain.StatusInProgress, "")
	require.NoError(t, err)
	_, err = env.complaints.ChangeStatus(ctx, admin.Actor(), complaint.ID, domain.StatusResolved, "")
	require.NoError(t, err)
	updated, err := env.complaints.ConfirmResolution(ctx, owner.ID, complaint.ID)
	require.NoError(t, err)
	return updated
}

func TestReopenWorkflow(t *testing.T) {
	ctx := context.Background()

	t.Run("single pending request per complaint", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
		admin := env.addUser("admin", domain.RoleAdmin, domain.AdminLevelAdmin)
		complaint := setupClosed(t, env, owner, super, admin)

		_, err := env.reopens.Request(ctx, owner.ID, complaint.ID, "issue came back")
		require.NoError(t, err)

		_, err = env.reopens.Request(ctx, owner.ID, complaint.ID, "still broken")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already pending")
	})

	t.Run("approval reopens the complaint", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
		admin := env.addUser("admin", domain.RoleAdmin, domain.AdminLevelAdmin)
		complaint := setupClosed(t, env, owner, super, admin)

		request, err := env.reopens.Request(ctx, owner.ID, complaint.ID, "issue came back")
		require.NoError(t, err)

		decided, err := env.reopens.Approve(ctx, super.Actor(), request.ID, "verified")
		require.NoError(t, err)
		assert.Equal(t, domain.ReopenApproved, decided.Status)

		reopened, err := env.complaints.GetForAdmin(ctx, complaint.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, reopened.Status)
		assert.False(t, reopened.UserConfirmedResolved)
		assert.Nil(t, reopened.ResolvedAt)
	})

	t.Run("rejection needs a review note", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
		admin := env.addUser("admin", domain.RoleAdmin, domain.AdminLevelAdmin)
		complaint := setupClosed(t, env, owner, super, admin)

		request, err := env.reopens.Request(ctx, owner.ID, complaint.ID, "issue came back")
		require.NoError(t, err)

		_, err = env.reopens.Reject(ctx, super.Actor(), request.ID, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "review note is required")

		decided, err := env.reopens.Reject(ctx, super.Actor(), request.ID, "could not reproduce")
		require.NoError(t, err)
		assert.Equal(t, domain.ReopenRejected, decided.Status)

		still, err := env.complaints.GetForAdmin(ctx, complaint.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusClosed, still.Status)

		_, err = env.reopens.Reject(ctx, super.Actor(), request.ID, "again")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already been reviewed")
	})

	t.Run("only closed complaints can be reopened", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		complaint := env.submitComplaint(owner)

		_, err := env.reopens.Request(ctx, owner.ID, complaint.ID, "reopen please")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only a closed complaint")
	})
}

func TestLockFreezesReviewWorkflows(t *testing.T) {
	ctx := context.Background()

	t.Run("approval decisions are blocked while locked", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
		complaint := env.submitComplaint(owner)

		_, err := env.locks.Lock(ctx, super.Actor(), complaint.ID, "under legal review")
		require.NoError(t, err)

		_, err = env.approvals.Approve(ctx, super.Actor(), complaint.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locked by a super admin")

		_, err = env.approvals.Reject(ctx, super.Actor(), complaint.ID, "duplicate report")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locked by a super admin")

		_, err = env.approvals.RequestChanges(ctx, super.Actor(), complaint.ID, "more detail")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locked by a super admin")

		still, err := env.complaints.GetForAdmin(ctx, complaint.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalPendingReview, still.ApprovalStatus)
	})

	t.Run("resubmission is blocked while locked", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
		complaint := env.submitComplaint(owner)

		_, err := env.approvals.RequestChanges(ctx, super.Actor(), complaint.ID, "more detail")
		require.NoError(t, err)
		_, err = env.locks.Lock(ctx, super.Actor(), complaint.ID, "under legal review")
		require.NoError(t, err)

		_, err = env.approvals.Resubmit(ctx, owner.ID, complaint.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locked by a super admin")
	})

	t.Run("reopen requests and decisions are blocked while locked", func(t *testing.T) {
		env := newTestEnv()
		owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
		super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
		admin := env.addUser("admin", domain.RoleAdmin, domain.AdminLevelAdmin)
		complaint := setupClosed(t, env, owner, super, admin)

		request, err := env.reopens.Request(ctx, owner.ID, complaint.ID, "issue came back")
		require.NoError(t, err)
		_, err = env.locks.Lock(ctx, super.Actor(), complaint.ID, "under legal review")
		require.NoError(t, err)

		_, err = env.reopens.Approve(ctx, super.Actor(), request.ID, "verified")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locked by a super admin")

		_, err = env.reopens.Request(ctx, owner.ID, complaint.ID, "still broken")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locked by a super admin")

		still, err := env.complaints.GetForAdmin(ctx, complaint.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusClosed, still.Status)
	})
}

func TestRating(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
	super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
	admin := env.addUser("admin", domain.RoleAdmin, domain.AdminLevelAdmin)

	complaint := env.submitComplaint(owner)
	_, err := env.complaints.SubmitRating(ctx, owner.ID, complaint.ID, 5, "")
	require.Error(t, err, "open complaints cannot be rated")

	_, err = env.approvals.Approve(ctx, super.Actor(), complaint.ID)
	require.NoError(t, err)
	_, err = env.assignments.Assign(ctx, super.Actor(), complaint.ID, admin.ID, "")
	require.NoError(t, err)
	_, err = env.complaints.ChangeStatus(ctx, admin.Actor(), complaint.ID, domain.StatusInProgress, "")
	require.NoError(t, err)
	_, err = env.complaints.ChangeStatus(ctx, admin.Actor(), complaint.ID, domain.StatusResolved, "")
	require.NoError(t, err)
	_, err = env.complaints.ConfirmResolution(ctx, owner.ID, complaint.ID)
	require.NoError(t, err)

	_, err = env.complaints.SubmitRating(ctx, owner.ID, complaint.ID, 6, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid rating")

	rated, err := env.complaints.SubmitRating(ctx, owner.ID, complaint.ID, 4, "quick turnaround")
	require.NoError(t, err)
	assert.Equal(t, 4, *rated.UserRating)
	assert.Equal(t, "quick turnaround", *rated.UserFeedback)

	_, err = env.complaints.SubmitRating(ctx, owner.ID, complaint.ID, 3, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already been rated")
}

func TestOwnerEdit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	owner := env.addUser("owner", domain.RoleUser, domain.AdminLevelNone)
	super := env.addUser("super", domain.RoleAdmin, domain.AdminLevelSuper)
	complaint := env.submitComplaint(owner)

	edited, err := env.complaints.Edit(ctx, owner.ID, complaint.ID, EditInput{
		Subject:     "Broken invoice, March",
		Description: "The March invoice total is wrong.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Broken invoice, March", edited.Subject)

	_, err = env.complaints.Edit(ctx, "someone-else", complaint.ID, EditInput{
		Subject:     "x",
		Description: "y",
	})
	require.Error(t, err)

	_, err = env.approvals.Approve(ctx, super.Actor(), complaint.ID)
	require.NoError(t, err)

	_, err = env.complaints.Edit(ctx, owner.ID, complaint.ID, EditInput{
		Subject:     "too late",
		Description: "too late",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no longer be edited")
}
