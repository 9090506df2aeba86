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

// AssignmentService routes complaints to admins. Only super admins assign.
// A second assignment is a reassignment and requires a reason so the audit
// trail explains every handover.
type AssignmentService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
	publisher
}

// AssignmentDependencies bundles requirements for the service.
type AssignmentDependencies struct {
	Repos      repository.Repositories
	UnitOfWork repository.UnitOfWork
	Dispatcher events.Dispatcher
}

// NewAssignmentService constructs the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		repos:     deps.Repos,
		uow:       deps.UnitOfWork,
		publisher: publisher{dispatcher: deps.Dispatcher},
	}
}

// Assign hands a complaint to an admin. The first assignment needs no
// reason; moving it off an existing assignee does.
func (s *AssignmentService) Assign(ctx context.Context, actor domain.Actor, complaintID, adminID, reason string) (*domain.Complaint, error) {
	if !actor.IsSuperAdmin {
		return nil, apperrors.NewForbidden("Only a super admin can assign complaints.")
	}
	if strings.TrimSpace(adminID) == "" {
		return nil, apperrors.NewValidationError("Please select an admin to assign.", nil)
	}
	reason = strings.TrimSpace(reason)

	var (
		updated *domain.Complaint
		evts    []events.Event
	)
	err := s.uow.WithinTx(ctx, func(tx repository.Repositories) error {
		complaint, err := tx.Complaints.GetByIDForUpdate(ctx, complaintID)
		if err != nil {
			return notFoundOr(err, "complaint")
		}
		if complaint.IsLocked {
			return apperrors.NewForbidden("This complaint is locked by a super admin. No modifications allowed until unlocked.")
		}
		if complaint.Status == domain.StatusClosed {
			return apperrors.NewConflict("This complaint is closed and cannot be modified. The user has confirmed the resolution.", nil)
		}
		if complaint.ApprovalStatus != domain.ApprovalApproved {
			return apperrors.NewConflict("This complaint must be approved before it can be assigned.", nil)
		}

		admin, err := tx.Users.GetByID(ctx, adminID)
		if err != nil {
			return notFoundOr(err, "admin")
		}
		if !admin.IsAdmin() || admin.Status != domain.UserStatusActive {
			return apperrors.NewValidationError("The selected account is not an active admin.", nil)
		}

		oldAdminID := complaint.AssignedTo
		isReassignment := oldAdminID != nil
		if isReassignment {
			if *oldAdminID == adminID {
				return apperrors.NewConflict("This complaint is already assigned to that admin.", nil)
			}
			if reason == "" {
				return apperrors.NewValidationError("A reason is required when reassigning a complaint.", nil)
			}
		}

		oldStatus := complaint.Status
		newStatus := domain.StatusAssigned
		now := time.Now()
		complaint.AssignedTo = &adminID
		complaint.AssignedAt = &now
		complaint.Status = newStatus
		if isReassignment {
			complaint.ReassignmentCount++
		}
		if err := tx.Complaints.Update(ctx, complaint); err != nil {
			return apperrors.MapError(err)
		}

		comment := fmt.Sprintf("Assigned to %s", admin.FullName)
		if isReassignment {
			comment = fmt.Sprintf("Reassigned to %s: %s", admin.FullName, reason)
			if err := tx.Reassignments.Create(ctx, &domain.ReassignmentRecord{
				ComplaintID:  complaint.ID,
				OldAdminID:   oldAdminID,
				NewAdminID:   adminID,
				ReassignedBy: actor.ID,
				Reason:       reason,
			}); err != nil {
				return apperrors.MapError(err)
			}
		}
		if err := tx.History.Create(ctx, &domain.ComplaintHistoryEntry{
			ComplaintID: complaint.ID,
			ChangedBy:   actor.ID,
			OldStatus:   &oldStatus,
			NewStatus:   &newStatus,
			Comment:     comment,
		}); err != nil {
			return apperrors.MapError(err)
		}

		updated = complaint
		evts = append(evts, events.Event{
			Type:        events.EventComplaintAssigned,
			ComplaintID: complaint.ID,
			ActorID:     actor.ID,
			Payload: events.AssignedPayload{
				OwnerID:        complaint.UserID,
				OldAdminID:     oldAdminID,
				NewAdminID:     adminID,
				IsReassignment: isReassignment,
				Reason:         reason,
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

// Workload counts the complaints an admin is actively handling. Closed and
// resolved complaints do not count against the load.
func (s *AssignmentService) Workload(ctx context.Context, adminID string) (int, error) {
	count, err := s.repos.Complaints.CountActiveByAssignee(ctx, adminID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// AdminsWithWorkload lists active admins ordered by current load, for the
// assignment picker.
func (s *AssignmentService) AdminsWithWorkload(ctx context.Context) ([]repository.AdminWorkload, error) {
	admins, err := s.repos.Users.ListAdminsWithWorkload(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return admins, nil
}

// ReassignmentHistory lists the handover audit trail for a complaint.
func (s *AssignmentService) ReassignmentHistory(ctx context.Context, complaintID string) ([]domain.ReassignmentRecord, error) {
	return s.repos.Reassignments.ListByComplaint(ctx, complaintID)
}
