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

// LockService manages the exclusive freeze a super admin can place on a
// complaint. While locked, every mutation path is denied, including for the
// assigned admin and for super admins themselves.
type LockService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
	publisher
}

// LockDependencies bundles requirements for the service.
type LockDependencies struct {
	Repos      repository.Repositories
	UnitOfWork repository.UnitOfWork
	Dispatcher events.Dispatcher
}

// NewLockService constructs the service.
func NewLockService(deps LockDependencies) *LockService {
	return &LockService{
		repos:     deps.Repos,
		uow:       deps.UnitOfWork,
		publisher: publisher{dispatcher: deps.Dispatcher},
	}
}

// Lock freezes a complaint. A reason is mandatory.
func (s *LockService) Lock(ctx context.Context, actor domain.Actor, complaintID, reason string) (*domain.Complaint, error) {
	if !actor.IsSuperAdmin {
		return nil, apperrors.NewForbidden("Only a super admin can lock complaints.")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("A lock reason is required.", nil)
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
		if complaint.IsLocked {
			return apperrors.NewConflict("This complaint is already locked.", nil)
		}

		now := time.Now()
		complaint.IsLocked = true
		complaint.LockedBy = &actor.ID
		complaint.LockReason = &reason
		complaint.LockedAt = &now
		if err := tx.Complaints.Update(ctx, complaint); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.History.Create(ctx, &domain.ComplaintHistoryEntry{
			ComplaintID: complaint.ID,
			ChangedBy:   actor.ID,
			Comment:     fmt.Sprintf("Complaint locked: %q", reason),
		}); err != nil {
			return apperrors.MapError(err)
		}

		updated = complaint
		evts = append(evts, events.Event{
			Type:        events.EventComplaintLocked,
			ComplaintID: complaint.ID,
			ActorID:     actor.ID,
			Payload: events.LockPayload{
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
	return updated, nil
}

// Unlock releases the freeze. The reason is optional here.
func (s *LockService) Unlock(ctx context.Context, actor domain.Actor, complaintID, reason string) (*domain.Complaint, error) {
	if !actor.IsSuperAdmin {
		return nil, apperrors.NewForbidden("Only a super admin can unlock complaints.")
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
		if !complaint.IsLocked {
			return apperrors.NewConflict("This complaint is not locked.", nil)
		}

		complaint.IsLocked = false
		complaint.LockedBy = nil
		complaint.LockReason = nil
		complaint.LockedAt = nil
		if err := tx.Complaints.Update(ctx, complaint); err != nil {
			return apperrors.MapError(err)
		}

		comment := "Complaint unlocked"
		reason = strings.TrimSpace(reason)
		if reason != "" {
			comment = fmt.Sprintf("Complaint unlocked: %q", reason)
		}
		if err := tx.History.Create(ctx, &domain.ComplaintHistoryEntry{
			ComplaintID: complaint.ID,
			ChangedBy:   actor.ID,
			Comment:     comment,
		}); err != nil {
			return apperrors.MapError(err)
		}

		updated = complaint
		evts = append(evts, events.Event{
			Type:        events.EventComplaintUnlocked,
			ComplaintID: complaint.ID,
			ActorID:     actor.ID,
			Payload: events.LockPayload{
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
	return updated, nil
}
