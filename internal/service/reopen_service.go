package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/events"
	"github.com/spec-kit/complaint-portal/internal/repository"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

// ReopenService runs the post-closure reopen workflow: the owner files a
// request, a super admin decides, and an approval pulls the complaint back
// into handling.
type ReopenService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
	publisher
}

// ReopenDependencies bundles requirements for the service.
type ReopenDependencies struct {
	Repos      repository.Repositories
	UnitOfWork repository.UnitOfWork
	Dispatcher events.Dispatcher
}

// NewReopenService constructs the service.
func NewReopenService(deps ReopenDependencies) *ReopenService {
	return &ReopenService{
		repos:     deps.Repos,
		uow:       deps.UnitOfWork,
		publisher: publisher{dispatcher: deps.Dispatcher},
	}
}

// Request files a reopen request for a closed complaint. At most one pending
// request may exist per complaint.
func (s *ReopenService) Request(ctx context.Context, userID, complaintID, reason string) (*domain.ReopenRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("Please explain why the complaint should be reopened.", nil)
	}

	var (
		request *domain.ReopenRequest
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
		if complaint.Status != domain.StatusClosed {
			return apperrors.NewConflict("Only a closed complaint can be reopened.", nil)
		}

		if _, err := tx.Reopens.GetPendingByComplaint(ctx, complaintID); err == nil {
			return apperrors.NewConflict("A reopen request is already pending for this complaint.", nil)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.MapError(err)
		}

		request = &domain.ReopenRequest{
			ComplaintID: complaintID,
			RequestedBy: userID,
			Reason:      reason,
			Status:      domain.ReopenPending,
		}
		if err := tx.Reopens.Create(ctx, request); err != nil {
			return apperrors.MapError(err)
		}

		evts = append(evts, events.Event{
			Type:        events.EventReopenRequested,
			ComplaintID: complaintID,
			ActorID:     userID,
			Payload: events.ReopenRequestedPayload{
				RequestID:  request.ID,
				OwnerID:    complaint.UserID,
				AssigneeID: complaint.AssignedTo,
				Reason:     reason,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evts...)
	return request, nil
}

// Approve grants a pending reopen request and moves the complaint back into
// In Progress, clearing the owner's resolution confirmation.
func (s *ReopenService) Approve(ctx context.Context, actor domain.Actor, requestID, note string) (*domain.ReopenRequest, error) {
	if !actor.IsSuperAdmin {
		return nil, apperrors.NewForbidden("Only a super admin can review reopen requests.")
	}
	return s.decide(ctx, actor, requestID, domain.ReopenApproved, strings.TrimSpace(note))
}

// Reject refuses a pending reopen request. A review note is mandatory so the
// owner learns why.
func (s *ReopenService) Reject(ctx context.Context, actor domain.Actor, requestID, note string) (*domain.ReopenRequest, error) {
	if !actor.IsSuperAdmin {
		return nil, apperrors.NewForbidden("Only a super admin can review reopen requests.")
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperrors.NewValidationError("A review note is required when rejecting a reopen request.", nil)
	}
	return s.decide(ctx, actor, requestID, domain.ReopenRejected, note)
}

func (s *ReopenService) decide(ctx context.Context, actor domain.Actor, requestID string, decision domain.ReopenStatus, note string) (*domain.ReopenRequest, error) {
	var (
		request *domain.ReopenRequest
		evts    []events.Event
	)
	err := s.uow.WithinTx(ctx, func(tx repository.Repositories) error {
		req, err := tx.Reopens.GetByID(ctx, requestID)
		if err != nil {
			return notFoundOr(err, "reopen request")
		}
		if req.Status != domain.ReopenPending {
			return apperrors.NewConflict("This reopen request has already been reviewed.", nil)
		}

		complaint, err := tx.Complaints.GetByIDForUpdate(ctx, req.ComplaintID)
		if err != nil {
			return notFoundOr(err, "complaint")
		}
		if err := requireUnlocked(complaint); err != nil {
			return err
		}

		now := time.Now()
		req.Status = decision
		req.ReviewedBy = &actor.ID
		req.ReviewedAt = &now
		if note != "" {
			req.ReviewNote = &note
		}
		if err := tx.Reopens.Update(ctx, req); err != nil {
			return apperrors.MapError(err)
		}

		if decision == domain.ReopenApproved {
			oldStatus := complaint.Status
			newStatus := domain.StatusInProgress
			complaint.Status = newStatus
			complaint.UserConfirmedResolved = false
			complaint.ResolvedAt = nil
			if err := tx.Complaints.Update(ctx, complaint); err != nil {
				return apperrors.MapError(err)
			}
			if err := tx.History.Create(ctx, &domain.ComplaintHistoryEntry{
				ComplaintID: complaint.ID,
				ChangedBy:   actor.ID,
				OldStatus:   &oldStatus,
				NewStatus:   &newStatus,
				Comment:     fmt.Sprintf("Complaint reopened: %q", req.Reason),
			}); err != nil {
				return apperrors.MapError(err)
			}
		}

		request = req
		evts = append(evts, events.Event{
			Type:        events.EventReopenDecided,
			ComplaintID: complaint.ID,
			ActorID:     actor.ID,
			Payload: events.ReopenDecidedPayload{
				RequestID: req.ID,
				OwnerID:   complaint.UserID,
				Status:    decision,
				Note:      note,
				Reason:    req.Reason,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evts...)
	return request, nil
}

// List returns the reopen requests filed against a complaint.
func (s *ReopenService) List(ctx context.Context, complaintID string) ([]domain.ReopenRequest, error) {
	return s.repos.Reopens.ListByComplaint(ctx, complaintID)
}
