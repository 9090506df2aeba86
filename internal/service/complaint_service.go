package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/events"
	"github.com/spec-kit/complaint-portal/internal/repository"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

// ComplaintService coordinates complaint submission and the status state
// machine. Every mutation re-fetches the complaint inside its transaction
// and re-runs the authorization gate against that snapshot.
type ComplaintService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
	rules domain.RuleSet
	publisher
}

// ComplaintDependencies bundles requirements for the service.
type ComplaintDependencies struct {
	Repos      repository.Repositories
	UnitOfWork repository.UnitOfWork
	Rules      domain.RuleSet
	Dispatcher events.Dispatcher
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	rules := deps.Rules
	if rules == nil {
		rules = domain.DefaultRules()
	}
	return &ComplaintService{
		repos:     deps.Repos,
		uow:       deps.UnitOfWork,
		rules:     rules,
		publisher: publisher{dispatcher: deps.Dispatcher},
	}
}

// SubmitInput describes a new complaint.
type SubmitInput struct {
	CategoryID  *string
	Subject     string
	Description string
	Priority    domain.ComplaintPriority
}

// Submit creates a complaint in Pending / pending_review.
func (s *ComplaintService) Submit(ctx context.Context, userID string, input SubmitInput) (*domain.Complaint, error) {
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" || description == "" {
		return nil, apperrors.NewValidationError("subject and description are required", nil)
	}
	if input.CategoryID != nil {
		category, err := s.repos.Categories.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, notFoundOr(err, "category")
		}
		if !category.IsActive {
			return nil, apperrors.NewConflict("category inactive", nil)
		}
	}

	complaint := &domain.Complaint{
		UserID:         userID,
		CategoryID:     input.CategoryID,
		Subject:        subject,
		Description:    description,
		Priority:       input.Priority,
		Status:         domain.StatusPending,
		ApprovalStatus: domain.ApprovalPendingReview,
	}
	if complaint.Priority == "" {
		complaint.Priority = domain.PriorityMedium
	}
	if err := s.repos.Complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:        events.EventComplaintSubmitted,
		ComplaintID: complaint.ID,
		ActorID:     userID,
		Payload: events.SubmittedPayload{
			OwnerID:  userID,
			Subject:  complaint.Subject,
			Priority: complaint.Priority,
		},
	})
	return complaint, nil
}

// ChangeStatus moves a complaint along the progression rules. The gate and
// the rule table are both consulted against the row locked for update.
func (s *ComplaintService) ChangeStatus(ctx context.Context, actor domain.Actor, complaintID string, newStatus domain.ComplaintStatus, response string) (*domain.Complaint, error) {
	var (
		updated *domain.Complaint
		evts    []events.Event
	)
	err := s.uow.WithinTx(ctx, func(tx repository.Repositories) error {
		complaint, err := tx.Complaints.GetByIDForUpdate(ctx, complaintID)
		if err != nil {
			return notFoundOr(err, "complaint")
		}
		if err := CanModify(complaint, actor); err != nil {
			return err
		}
		if err := s.rules.Validate(complaint.Status, newStatus, actor.IsSuperAdmin); err != nil {
			return err
		}

		oldStatus := complaint.Status
		complaint.Status = newStatus
		if strings.TrimSpace(response) != "" {
			complaint.AdminResponse = strPtr(strings.TrimSpace(response))
		}
		if newStatus.IsTerminalResolving() {
			now := time.Now()
			complaint.ResolvedAt = &now
		}
		if err := tx.Complaints.Update(ctx, complaint); err != nil {
			return apperrors.MapError(err)
		}

		comment := "Status updated by admin"
		if complaint.AdminResponse != nil {
			comment += " with response"
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
			Type:        events.EventStatusChanged,
			ComplaintID: complaint.ID,
			ActorID:     actor.ID,
			Payload: events.StatusChangedPayload{
				OwnerID:    complaint.UserID,
				AssigneeID: complaint.AssignedTo,
				OldStatus:  oldStatus,
				NewStatus:  newStatus,
				Response:   response,
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

// CanModifyQuery exposes the gate decision for a given admin and complaint.
func (s *ComplaintService) CanModifyQuery(ctx context.Context, actor domain.Actor, complaintID string) (ModifyDecision, error) {
	complaint, err := s.repos.Complaints.GetByID(ctx, complaintID)
	if err != nil {
		return ModifyDecision{}, notFoundOr(err, "complaint")
	}
	return DecideModify(complaint, actor), nil
}

// AllowedNextStatuses lists forward transitions from a complaint's status.
func (s *ComplaintService) AllowedNextStatuses(ctx context.Context, complaintID string) ([]domain.RuleEdge, error) {
	complaint, err := s.repos.Complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFoundOr(err, "complaint")
	}
	return s.rules.AllowedNext(complaint.Status), nil
}

// GetForUser fetches a complaint ensuring ownership.
func (s *ComplaintService) GetForUser(ctx context.Context, userID, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.repos.Complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFoundOr(err, "complaint")
	}
	if complaint.UserID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return complaint, nil
}

// GetForAdmin fetches a complaint for any admin viewer.
func (s *ComplaintService) GetForAdmin(ctx context.Context, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.repos.Complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFoundOr(err, "complaint")
	}
	return complaint, nil
}

// ListForUser returns the user's own complaints.
func (s *ComplaintService) ListForUser(ctx context.Context, userID string, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	filter.UserID = &userID
	return s.repos.Complaints.ListWithFilter(ctx, filter)
}

// ListForAdmin returns complaints matching the filter.
func (s *ComplaintService) ListForAdmin(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	return s.repos.Complaints.ListWithFilter(ctx, filter)
}

// Categories lists the active complaint categories for the submit form.
func (s *ComplaintService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.repos.Categories.ListActive(ctx)
}

// History returns the full audit timeline of a complaint.
func (s *ComplaintService) History(ctx context.Context, complaintID string) ([]domain.ComplaintHistoryEntry, error) {
	return s.repos.History.ListByComplaint(ctx, complaintID)
}

// EditInput describes an owner edit of a complaint under review.
type EditInput struct {
	CategoryID  *string
	Subject     string
	Description string
	Priority    domain.ComplaintPriority
}

// Edit lets the owner update a complaint that has not passed review yet.
func (s *ComplaintService) Edit(ctx context.Context, userID, complaintID string, input EditInput) (*domain.Complaint, error) {
	var updated *domain.Complaint
	err := s.uow.WithinTx(ctx, func(tx repository.Repositories) error {
		complaint, err := tx.Complaints.GetByIDForUpdate(ctx, complaintID)
		if err != nil {
			return notFoundOr(err, "complaint")
		}
		if complaint.UserID != userID {
			return apperrors.NewForbidden("access denied")
		}
		if complaint.IsLocked {
			return apperrors.NewForbidden("This complaint is locked by a super admin. No modifications allowed until unlocked.")
		}
		switch complaint.ApprovalStatus {
		case domain.ApprovalPendingReview, domain.ApprovalChangesRequested, domain.ApprovalRejected:
		default:
			return apperrors.NewConflict("This complaint has been approved and can no longer be edited.", nil)
		}

		subject := strings.TrimSpace(input.Subject)
		description := strings.TrimSpace(input.Description)
		if subject == "" || description == "" {
			return apperrors.NewValidationError("subject and description are required", nil)
		}
		complaint.Subject = subject
		complaint.Description = description
		complaint.CategoryID = input.CategoryID
		if input.Priority != "" {
			complaint.Priority = input.Priority
		}
		if err := tx.Complaints.Update(ctx, complaint); err != nil {
			return apperrors.MapError(err)
		}
		updated = complaint
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddComment appends a comment. Admin comments are gated by CanModify since
// they are part of handling the complaint; the owner may always comment on
// an open complaint.
func (s *ComplaintService) AddComment(ctx context.Context, author domain.Actor, authorIsAdmin bool, complaintID, body string) (*domain.ComplaintComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment body is required", nil)
	}

	var (
		comment *domain.ComplaintComment
		evts    []events.Event
	)
	err := s.uow.WithinTx(ctx, func(tx repository.Repositories) error {
		complaint, err := tx.Complaints.GetByIDForUpdate(ctx, complaintID)
		if err != nil {
			return notFoundOr(err, "complaint")
		}
		if authorIsAdmin {
			if err := CanModify(complaint, author); err != nil {
				return err
			}
		} else {
			if complaint.UserID != author.ID {
				return apperrors.NewForbidden("access denied")
			}
			if complaint.Status == domain.StatusClosed {
				return apperrors.NewConflict("This complaint is closed and cannot be modified. The user has confirmed the resolution.", nil)
			}
		}

		comment = &domain.ComplaintComment{
			ComplaintID:   complaint.ID,
			AuthorID:      author.ID,
			AuthorIsAdmin: authorIsAdmin,
			Body:          body,
		}
		if err := tx.Comments.Create(ctx, comment); err != nil {
			return apperrors.MapError(err)
		}
		evts = append(evts, events.Event{
			Type:        events.EventCommentAdded,
			ComplaintID: complaint.ID,
			ActorID:     author.ID,
			Payload: events.CommentAddedPayload{
				OwnerID:       complaint.UserID,
				AssigneeID:    complaint.AssignedTo,
				AuthorIsAdmin: authorIsAdmin,
				BodyPreview:   stringPreview(body, 120),
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evts...)
	return comment, nil
}

// Comments lists a complaint's comments.
func (s *ComplaintService) Comments(ctx context.Context, complaintID string) ([]domain.ComplaintComment, error) {
	return s.repos.Comments.ListByComplaint(ctx, complaintID)
}

// ConfirmResolution lets the owner confirm a resolved complaint, closing it.
func (s *ComplaintService) ConfirmResolution(ctx context.Context, userID, complaintID string) (*domain.Complaint, error) {
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
		if complaint.Status != domain.StatusResolved {
			return apperrors.NewConflict("Only a resolved complaint can be confirmed as closed.", nil)
		}

		oldStatus := complaint.Status
		newStatus := domain.StatusClosed
		now := time.Now()
		complaint.Status = newStatus
		complaint.UserConfirmedResolved = true
		complaint.ResolvedAt = &now
		if err := tx.Complaints.Update(ctx, complaint); err != nil {
			return apperrors.MapError(err)
		}
		if err := tx.History.Create(ctx, &domain.ComplaintHistoryEntry{
			ComplaintID: complaint.ID,
			ChangedBy:   userID,
			OldStatus:   &oldStatus,
			NewStatus:   &newStatus,
			Comment:     "User confirmed resolution",
		}); err != nil {
			return apperrors.MapError(err)
		}

		updated = complaint
		evts = append(evts, events.Event{
			Type:        events.EventResolutionConfirmed,
			ComplaintID: complaint.ID,
			ActorID:     userID,
			Payload: events.ResolutionConfirmedPayload{
				OwnerID:    complaint.UserID,
				AssigneeID: complaint.AssignedTo,
				Rating:     complaint.UserRating,
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

// SubmitRating records the post-closure satisfaction rating.
func (s *ComplaintService) SubmitRating(ctx context.Context, userID, complaintID string, rating int, feedback string) (*domain.Complaint, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("Please select a valid rating (1-5 stars).", nil)
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
		if complaint.UserID != userID {
			return apperrors.NewForbidden("access denied")
		}
		if complaint.Status != domain.StatusClosed || complaint.ApprovalStatus != domain.ApprovalApproved {
			return apperrors.NewConflict("A rating can only be submitted once the complaint is closed.", nil)
		}
		if complaint.UserRating != nil {
			return apperrors.NewConflict("This complaint has already been rated.", nil)
		}

		complaint.UserRating = &rating
		if strings.TrimSpace(feedback) != "" {
			complaint.UserFeedback = strPtr(strings.TrimSpace(feedback))
		}
		if err := tx.Complaints.Update(ctx, complaint); err != nil {
			return apperrors.MapError(err)
		}

		updated = complaint
		evts = append(evts, events.Event{
			Type:        events.EventRatingSubmitted,
			ComplaintID: complaint.ID,
			ActorID:     userID,
			Payload: events.RatingSubmittedPayload{
				AssigneeID: complaint.AssignedTo,
				Rating:     rating,
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
