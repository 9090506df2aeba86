package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/events"
	"github.com/spec-kit/complaint-portal/internal/repository"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

// ApprovalService handles the pre-assignment review workflow. Only super
// admins decide; the owner can resubmit after a rejection or a change
// request.
type ApprovalService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
	publisher
}

// ApprovalDependencies bundles requirements for the service.
type ApprovalDependencies struct {
	Repos      repository.Repositories
	UnitOfWork repository.UnitOfWork
	Dispatcher events.Dispatcher
}

// NewApprovalService constructs the service.
func NewApprovalService(deps ApprovalDependencies) *ApprovalService {
	return &ApprovalService{
		repos:     deps.Repos,
		uow:       deps.UnitOfWork,
		publisher: publisher{dispatcher: deps.Dispatcher},
	}
}

// Approve accepts a complaint for handling. The status is forced back to
// Pending so assignment starts from a clean slate.
func (s *ApprovalService) Approve(ctx context.Context, actor domain.Actor, complaintID string) (*domain.Complaint, error) {
	if !actor.IsSuperAdmin {
		return nil, apperrors.NewForbidden("Only a super admin can review complaints.")
	}

	var (
		updated *domain.Complaint
		evts    []events.Event
	)
	err := s.uow.WithinTx(ctx, func(tx repository.Repositories) error {
		complaint, err := tx.Complaints.GetByIDForUpdate(ctx, complaintID)
		if err != nil {
			return notFoundOr(err, "complaint")
		}
		if err := requireUnlocked(complaint); err != nil {
			return err
		}
		if complaint.ApprovalStatus == domain.ApprovalApproved {
			return apperrors.NewConflict("This complaint has already been approved.", nil)
		}

		now := time.Now()
		complaint.ApprovalStatus = domain.ApprovalApproved
		complaint.ReviewedBy = &actor.ID
		complaint.ReviewedAt = &now
		complaint.RejectionReason = nil
		complaint.Status = domain.StatusPending
		if err := tx.Complaints.Update(ctx, complaint); err != nil {
			return apperrors.MapError(err)
		}

		if err := tx.Approvals.Create(ctx, &domain.ApprovalDecisionRecord{
			ComplaintID: complaint.ID,
			ReviewedBy:  actor.ID,
			Action:      domain.ActionApproved,
		}); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.History.Create(ctx, &domain.ComplaintHistoryEntry{
			ComplaintID: complaint.ID,
			ChangedBy:   actor.ID,
			Comment:     "Complaint approved by super admin",
		}); err != nil {
			return apperrors.MapError(err)
		}

		updated = complaint
		evts = append(evts, events.Event{
			Type:        events.EventApprovalDecided,
			ComplaintID: complaint.ID,
			ActorID:     actor.ID,
			Payload: events.ApprovalDecidedPayload{
				OwnerID: complaint.UserID,
				Subject: complaint.Subject,
				Action:  domain.ActionApproved,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evts...)
	return updated, nil
}

// Reject refuses a complaint with a mandatory reason and closes it. The
// owner may edit and resubmit.
func (s *ApprovalService) Reject(ctx context.Context, actor domain.Actor, complaintID, reason string) (*domain.Complaint, error) {
	if !actor.IsSuperAdmin {
		return nil, apperrors.NewForbidden("Only a super admin can review complaints.")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("A rejection reason is required.", nil)
	}

	var (
		updated *domain.Complaint
		evts    []events.Event
	)
	err := s.uow.WithinTx(ctx, func(tx repository.Repositories) error {
		complaint, err := tx.Complaints.GetByIDForUpdate(ctx, complaintID)
		if err != nil {
			return notFoundOr(err, "complaint")
		}
		if err := requireUnlocked(complaint); err != nil {
			return err
		}
		if complaint.ApprovalStatus == domain.ApprovalRejected {
			return apperrors.NewConflict("This complaint has already been rejected.", nil)
		}

		oldStatus := complaint.Status
		newStatus := domain.StatusClosed
		now := time.Now()
		complaint.ApprovalStatus = domain.ApprovalRejected
		complaint.ReviewedBy = &actor.ID
		complaint.ReviewedAt = &now
		complaint.RejectionReason = &reason
		complaint.Status = newStatus
		if err := tx.Complaints.Update(ctx, complaint); err != nil {
			return apperrors.MapError(err)
		}

		if err := tx.Approvals.Create(ctx, &domain.ApprovalDecisionRecord{
			ComplaintID: complaint.ID,
			ReviewedBy:  actor.ID,
			Action:      domain.ActionRejected,
			Reason:      &reason,
		}); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.History.Create(ctx, &domain.ComplaintHistoryEntry{
			ComplaintID: complaint.ID,
			ChangedBy:   actor.ID,
			OldStatus:   &oldStatus,
			NewStatus:   &newStatus,
			Comment:     fmt.Sprintf("Complaint rejected: %s", reason),
		}); err != nil {
			return apperrors.MapError(err)
		}

		updated = complaint
		evts = append(evts, events.Event{
			Type:        events.EventApprovalDecided,
			ComplaintID: complaint.ID,
			ActorID:     actor.ID,
			Payload: events.ApprovalDecidedPayload{
				OwnerID: complaint.UserID,
				Subject: complaint.Subject,
				Action:  domain.ActionRejected,
				Reason:  reason,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evts...)
	return updated, nil
}

// RequestChanges sends the complaint back to the owner with a description of
// what needs fixing. The lifecycle status is left untouched.
func (s *ApprovalService) RequestChanges(ctx context.Context, actor domain.Actor, complaintID, description string) (*domain.Complaint, error) {
	if !actor.IsSuperAdmin {
		return nil, apperrors.NewForbidden("Only a super admin can review complaints.")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperrors.NewValidationError("Please describe the changes you need.", nil)
	}

	var (
		updated *domain.Complaint
		evts    []events.Event
	)
	err := s.uow.WithinTx(ctx, func(tx repository.Repositories) error {
		complaint, err := tx.Complaints.GetByIDForUpdate(ctx, complaintID)
		if err != nil {
			return notFoundOr(err, "complaint")
		}
		if err := requireUnlocked(complaint); err != nil {
			return err
		}
		if complaint.ApprovalStatus == domain.ApprovalApproved {
			return apperrors.NewConflict("This complaint has already been approved.", nil)
		}

		now := time.Now()
		complaint.ApprovalStatus = domain.ApprovalChangesRequested
		complaint.ReviewedBy = &actor.ID
		complaint.ReviewedAt = &now
		complaint.RejectionReason = &description
		if err := tx.Complaints.Update(ctx, complaint); err != nil {
			return apperrors.MapError(err)
		}

		if err := tx.Approvals.Create(ctx, &domain.ApprovalDecisionRecord{
			ComplaintID: complaint.ID,
			ReviewedBy:  actor.ID,
			Action:      domain.ActionChangesRequested,
			Reason:      &description,
		}); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.History.Create(ctx, &domain.ComplaintHistoryEntry{
			ComplaintID: complaint.ID,
			ChangedBy:   actor.ID,
			Comment:     fmt.Sprintf("Changes requested: %s", description),
		}); err != nil {
			return apperrors.MapError(err)
		}

		updated = complaint
		evts = append(evts, events.Event{
			Type:        events.EventApprovalDecided,
			ComplaintID: complaint.ID,
			ActorID:     actor.ID,
			Payload: events.ApprovalDecidedPayload{
				OwnerID: complaint.UserID,
				Subject: complaint.Subject,
				Action:  domain.ActionChangesRequested,
				Reason:  description,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evts...)
	return updated, nil
}

// Resubmit puts an edited complaint back into the review queue. Only the
// owner may resubmit, and only after a rejection or a change request.
func (s *ApprovalService) Resubmit(ctx context.Context, userID, complaintID string) (*domain.Complaint, error) {
	var (
		updated *domain.Complaint
		evts    []events.Event
	)
	err := s.uow.WithinTx(ctx, func(tx repository.Repositories) error {
		complaint, err := tx.Complaints.GetByIDForUpdate(ctx, complaintID)
		if err != nil {
			return notFoundOr(err, "complaint")
		}
		if complaint.UserID != userID {
			return apperrors.NewForbidden("access denied")
		}
		if err := requireUnlocked(complaint); err != nil {
			return err
		}
		switch complaint.ApprovalStatus {
		case domain.ApprovalRejected, domain.ApprovalChangesRequested:
		default:
			return apperrors.NewConflict("Only a rejected complaint or one with requested changes can be resubmitted.", nil)
		}

		complaint.ApprovalStatus = domain.ApprovalPendingReview
		complaint.Status = domain.StatusPending
		complaint.ResubmissionCount++
		complaint.SubmittedAt = time.Now()
		complaint.ReviewedBy = nil
		complaint.ReviewedAt = nil
		complaint.RejectionReason = nil
		if err := tx.Complaints.Update(ctx, complaint); err != nil {
			return apperrors.MapError(err)
		}

		if err := tx.History.Create(ctx, &domain.ComplaintHistoryEntry{
			ComplaintID: complaint.ID,
			ChangedBy:   userID,
			Comment:     fmt.Sprintf("Resubmission #%d", complaint.ResubmissionCount),
		}); err != nil {
			return apperrors.MapError(err)
		}

		updated = complaint
		evts = append(evts, events.Event{
			Type:        events.EventComplaintResubmitted,
			ComplaintID: complaint.ID,
			ActorID:     userID,
			Payload: events.ResubmittedPayload{
				OwnerID:      complaint.UserID,
				Resubmission: complaint.ResubmissionCount,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evts...)
	return updated, nil
}

// Decisions lists the review decision log for a complaint.
func (s *ApprovalService) Decisions(ctx context.Context, complaintID string) ([]domain.ApprovalDecisionRecord, error) {
	return s.repos.Approvals.ListByComplaint(ctx, complaintID)
}

// Stats summarizes review decisions by action.
func (s *ApprovalService) Stats(ctx context.Context) (map[domain.ApprovalAction]int, error) {
	return s.repos.Approvals.CountByAction(ctx)
}
