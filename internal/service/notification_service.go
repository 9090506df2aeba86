package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/events"
	"github.com/spec-kit/complaint-portal/internal/repository"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

// NotificationService turns lifecycle events into stored notification rows
// and queues them for out-of-band delivery. Storage failures are logged, not
// surfaced: the mutation that produced the event has already committed.
type NotificationService struct {
	repos    repository.Repositories
	redis    *redis.Client
	queueKey string
	logger   *zap.Logger
}

// NotificationDependencies bundles requirements for the service.
type NotificationDependencies struct {
	Repos    repository.Repositories
	Redis    *redis.Client
	QueueKey string
	Logger   *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		repos:    deps.Repos,
		redis:    deps.Redis,
		queueKey: deps.QueueKey,
		logger:   logger,
	}
}

// RegisterHandlers subscribes the service to every lifecycle event.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventComplaintSubmitted,
		events.EventStatusChanged,
		events.EventApprovalDecided,
		events.EventComplaintResubmitted,
		events.EventComplaintAssigned,
		events.EventComplaintLocked,
		events.EventComplaintUnlocked,
		events.EventReopenRequested,
		events.EventReopenDecided,
		events.EventResolutionConfirmed,
		events.EventCommentAdded,
		events.EventRatingSubmitted,
	} {
		dispatcher.Subscribe(eventType, s.handleEvent)
	}
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	notifications, err := s.buildNotifications(ctx, event)
	if err != nil {
		s.logger.Error("building notifications failed",
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_id", event.ComplaintID),
			zap.Error(err),
		)
		return err
	}
	for i := range notifications {
		s.deliver(ctx, &notifications[i])
	}
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, n *domain.Notification) {
	if err := s.repos.Notifications.Create(ctx, n); err != nil {
		s.logger.Error("storing notification failed",
			zap.String("user_id", n.UserID),
			zap.String("event_kind", n.EventKind),
			zap.Error(err),
		)
		return
	}
	s.invalidateUnreadCache(ctx, n.UserID)

	if s.redis == nil || s.queueKey == "" {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		s.logger.Error("encoding notification failed", zap.Error(err))
		return
	}
	if err := s.redis.LPush(ctx, s.queueKey, payload).Err(); err != nil {
		s.logger.Warn("queueing notification failed",
			zap.String("queue", s.queueKey),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) buildNotifications(ctx context.Context, event events.Event) ([]domain.Notification, error) {
	switch payload := event.Payload.(type) {
	case events.SubmittedPayload:
		return s.fanOutToSuperAdmins(ctx, event, "New complaint submitted",
			fmt.Sprintf("A new complaint %q is awaiting review.", payload.Subject),
			domain.SeverityInfo)

	case events.StatusChangedPayload:
		message := fmt.Sprintf("Your complaint moved from %q to %q.", payload.OldStatus.Label(), payload.NewStatus.Label())
		if payload.Response != "" {
			message += fmt.Sprintf(" Admin response: %s", payload.Response)
		}
		notifications := []domain.Notification{
			s.forUser(payload.OwnerID, event, "Complaint status updated", message, domain.SeverityInfo),
		}
		admins, err := s.repos.Users.ListSuperAdmins(ctx)
		if err != nil {
			return nil, err
		}
		peerMessage := fmt.Sprintf("A complaint moved from %q to %q.", payload.OldStatus.Label(), payload.NewStatus.Label())
		for _, admin := range admins {
			if admin.ID == event.ActorID {
				continue
			}
			notifications = append(notifications, s.forAdmin(admin.ID, event, "Complaint status updated", peerMessage, domain.SeverityInfo))
		}
		return notifications, nil

	case events.ApprovalDecidedPayload:
		switch payload.Action {
		case domain.ActionApproved:
			return []domain.Notification{
				s.forUser(payload.OwnerID, event, "Complaint approved",
					fmt.Sprintf("Your complaint %q has been approved and will be assigned to an admin.", payload.Subject),
					domain.SeveritySuccess),
			}, nil
		case domain.ActionRejected:
			return []domain.Notification{
				s.forUser(payload.OwnerID, event, "Complaint rejected",
					fmt.Sprintf("Your complaint %q was rejected: %s. You may edit and resubmit it.", payload.Subject, payload.Reason),
					domain.SeverityDanger),
			}, nil
		default:
			return []domain.Notification{
				s.forUser(payload.OwnerID, event, "Changes requested",
					fmt.Sprintf("A reviewer requested changes to your complaint %q: %s", payload.Subject, payload.Reason),
					domain.SeverityWarning),
			}, nil
		}

	case events.ResubmittedPayload:
		return s.fanOutToSuperAdmins(ctx, event, "Complaint resubmitted",
			fmt.Sprintf("A complaint was resubmitted for review (resubmission #%d).", payload.Resubmission),
			domain.SeverityInfo)

	case events.AssignedPayload:
		notifications := []domain.Notification{
			s.forAdmin(payload.NewAdminID, event, "Complaint assigned to you",
				"A complaint has been assigned to you for handling.", domain.SeverityInfo),
			s.forUser(payload.OwnerID, event, "Complaint assigned",
				"Your complaint has been assigned to an admin.", domain.SeverityInfo),
		}
		if payload.IsReassignment && payload.OldAdminID != nil {
			notifications = append(notifications,
				s.forAdmin(*payload.OldAdminID, event, "Complaint reassigned",
					fmt.Sprintf("A complaint you were handling has been reassigned: %s", payload.Reason),
					domain.SeverityWarning))
		}
		return notifications, nil

	case events.LockPayload:
		if payload.AssigneeID == nil {
			return nil, nil
		}
		if event.Type == events.EventComplaintLocked {
			return []domain.Notification{
				s.forAdmin(*payload.AssigneeID, event, "Complaint locked",
					fmt.Sprintf("A complaint you are handling has been locked by a super admin: %s", payload.Reason),
					domain.SeverityWarning),
			}, nil
		}
		return []domain.Notification{
			s.forAdmin(*payload.AssigneeID, event, "Complaint unlocked",
				"A complaint you are handling has been unlocked.", domain.SeverityInfo),
		}, nil

	case events.ReopenRequestedPayload:
		notifications, err := s.fanOutToSuperAdmins(ctx, event, "Reopen requested",
			fmt.Sprintf("A user asked to reopen a closed complaint: %s", payload.Reason),
			domain.SeverityWarning)
		if err != nil {
			return nil, err
		}
		if payload.AssigneeID != nil {
			notifications = append(notifications,
				s.forAdmin(*payload.AssigneeID, event, "Reopen requested",
					fmt.Sprintf("The user asked to reopen a complaint you handled: %s", payload.Reason),
					domain.SeverityWarning))
		}
		return notifications, nil

	case events.ReopenDecidedPayload:
		if payload.Status == domain.ReopenApproved {
			return []domain.Notification{
				s.forUser(payload.OwnerID, event, "Complaint reopened",
					"Your reopen request was approved. The complaint is being handled again.",
					domain.SeveritySuccess),
			}, nil
		}
		return []domain.Notification{
			s.forUser(payload.OwnerID, event, "Reopen request rejected",
				fmt.Sprintf("Your reopen request was rejected: %s", payload.Note),
				domain.SeverityDanger),
		}, nil

	case events.ResolutionConfirmedPayload:
		notifications, err := s.fanOutToSuperAdmins(ctx, event, "Resolution confirmed",
			"The user confirmed the resolution. The complaint is now closed.",
			domain.SeveritySuccess)
		if err != nil {
			return nil, err
		}
		if payload.AssigneeID != nil {
			notifications = append(notifications,
				s.forAdmin(*payload.AssigneeID, event, "Resolution confirmed",
					"The user confirmed the resolution of a complaint you handled.",
					domain.SeveritySuccess))
		}
		return notifications, nil

	case events.CommentAddedPayload:
		if payload.AuthorIsAdmin {
			return []domain.Notification{
				s.forUser(payload.OwnerID, event, "New comment on your complaint",
					payload.BodyPreview, domain.SeverityInfo),
			}, nil
		}
		if payload.AssigneeID == nil {
			return nil, nil
		}
		return []domain.Notification{
			s.forAdmin(*payload.AssigneeID, event, "New comment from the user",
				payload.BodyPreview, domain.SeverityInfo),
		}, nil

	case events.RatingSubmittedPayload:
		if payload.AssigneeID == nil {
			return nil, nil
		}
		return []domain.Notification{
			s.forAdmin(*payload.AssigneeID, event, "Complaint rated",
				fmt.Sprintf("The user rated a complaint you handled %d/5.", payload.Rating),
				domain.SeverityInfo),
		}, nil
	}
	return nil, nil
}

func (s *NotificationService) fanOutToSuperAdmins(ctx context.Context, event events.Event, title, message string, severity domain.NotificationSeverity) ([]domain.Notification, error) {
	admins, err := s.repos.Users.ListSuperAdmins(ctx)
	if err != nil {
		return nil, err
	}
	notifications := make([]domain.Notification, 0, len(admins))
	for _, admin := range admins {
		notifications = append(notifications, s.forAdmin(admin.ID, event, title, message, severity))
	}
	return notifications, nil
}

func (s *NotificationService) forUser(userID string, event events.Event, title, message string, severity domain.NotificationSeverity) domain.Notification {
	return s.build(userID, event, title, message, severity, fmt.Sprintf("/complaints/%s", event.ComplaintID))
}

func (s *NotificationService) forAdmin(adminID string, event events.Event, title, message string, severity domain.NotificationSeverity) domain.Notification {
	return s.build(adminID, event, title, message, severity, fmt.Sprintf("/admin/complaints/%s", event.ComplaintID))
}

func (s *NotificationService) build(userID string, event events.Event, title, message string, severity domain.NotificationSeverity, actionURL string) domain.Notification {
	complaintID := event.ComplaintID
	return domain.Notification{
		UserID:      userID,
		ComplaintID: &complaintID,
		Title:       title,
		Message:     message,
		Severity:    severity,
		EventKind:   string(event.Type),
		ActionURL:   &actionURL,
		Metadata: map[string]any{
			"event_id": event.ID,
			"actor_id": event.ActorID,
		},
	}
}

func (s *NotificationService) unreadCacheKey(userID string) string {
	return "complaint-portal:unread:" + userID
}

func (s *NotificationService) invalidateUnreadCache(ctx context.Context, userID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.unreadCacheKey(userID)).Err(); err != nil {
		s.logger.Debug("unread cache invalidation failed", zap.Error(err))
	}
}

// List pages through a user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	notifications, err := s.repos.Notifications.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return notifications, nil
}

// UnreadCount returns the badge count, served from Redis when warm.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, s.unreadCacheKey(userID)).Int(); err == nil {
			return cached, nil
		}
	}
	count, err := s.repos.Notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if s.redis != nil {
		if err := s.redis.Set(ctx, s.unreadCacheKey(userID), count, time.Minute).Err(); err != nil {
			s.logger.Debug("unread cache write failed", zap.Error(err))
		}
	}
	return count, nil
}

// MarkRead marks one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.repos.Notifications.MarkRead(ctx, userID, notificationID); err != nil {
		return apperrors.MapError(err)
	}
	s.invalidateUnreadCache(ctx, userID)
	return nil
}

// MarkAllRead marks every notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repos.Notifications.MarkAllRead(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	s.invalidateUnreadCache(ctx, userID)
	return nil
}
