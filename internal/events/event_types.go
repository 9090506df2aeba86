package events

import (
	"time"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted   EventType = "complaint_submitted"
	EventStatusChanged        EventType = "complaint_status_changed"
	EventApprovalDecided      EventType = "complaint_approval_decided"
	EventComplaintResubmitted EventType = "complaint_resubmitted"
	EventComplaintAssigned    EventType = "complaint_assigned"
	EventComplaintLocked      EventType = "complaint_locked"
	EventComplaintUnlocked    EventType = "complaint_unlocked"
	EventReopenRequested      EventType = "reopen_requested"
	EventReopenDecided        EventType = "reopen_decided"
	EventResolutionConfirmed  EventType = "resolution_confirmed"
	EventCommentAdded         EventType = "comment_added"
	EventRatingSubmitted      EventType = "rating_submitted"
)

// Event represents a domain event emitted by the lifecycle services after a
// mutation has been committed.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	ActorID     string      `json:"actor_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OwnerID    string                 `json:"owner_id"`
	AssigneeID *string                `json:"assignee_id,omitempty"`
	OldStatus  domain.ComplaintStatus `json:"old_status"`
	NewStatus  domain.ComplaintStatus `json:"new_status"`
	Response   string                 `json:"response,omitempty"`
}

// ApprovalDecidedPayload payload.
type ApprovalDecidedPayload struct {
	OwnerID string                `json:"owner_id"`
	Subject string                `json:"subject"`
	Action  domain.ApprovalAction `json:"action"`
	Reason  string                `json:"reason,omitempty"`
}

// ResubmittedPayload payload.
type ResubmittedPayload struct {
	OwnerID      string `json:"owner_id"`
	Resubmission int    `json:"resubmission"`
}

// AssignedPayload payload.
type AssignedPayload struct {
	OwnerID        string  `json:"owner_id"`
	OldAdminID     *string `json:"old_admin_id,omitempty"`
	NewAdminID     string  `json:"new_admin_id"`
	IsReassignment bool    `json:"is_reassignment"`
	Reason         string  `json:"reason,omitempty"`
}

// LockPayload payload for lock/unlock events.
type LockPayload struct {
	AssigneeID *string `json:"assignee_id,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// ReopenRequestedPayload payload.
type ReopenRequestedPayload struct {
	RequestID  string  `json:"request_id"`
	OwnerID    string  `json:"owner_id"`
	AssigneeID *string `json:"assignee_id,omitempty"`
	Reason     string  `json:"reason"`
}

// ReopenDecidedPayload payload.
type ReopenDecidedPayload struct {
	RequestID string              `json:"request_id"`
	OwnerID   string              `json:"owner_id"`
	Status    domain.ReopenStatus `json:"status"`
	Note      string              `json:"note,omitempty"`
	Reason    string              `json:"reason"`
}

// ResolutionConfirmedPayload payload.
type ResolutionConfirmedPayload struct {
	OwnerID    string  `json:"owner_id"`
	AssigneeID *string `json:"assignee_id,omitempty"`
	Rating     *int    `json:"rating,omitempty"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	OwnerID       string  `json:"owner_id"`
	AssigneeID    *string `json:"assignee_id,omitempty"`
	AuthorIsAdmin bool    `json:"author_is_admin"`
	BodyPreview   string  `json:"body_preview"`
}

// RatingSubmittedPayload payload.
type RatingSubmittedPayload struct {
	AssigneeID *string `json:"assignee_id,omitempty"`
	Rating     int     `json:"rating"`
}

// SubmittedPayload payload for new complaints.
type SubmittedPayload struct {
	OwnerID  string                   `json:"owner_id"`
	Subject  string                   `json:"subject"`
	Priority domain.ComplaintPriority `json:"priority"`
}
