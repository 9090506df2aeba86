package dto

import (
	"time"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// NotificationResponse is one stored notification.
type NotificationResponse struct {
	ID          string         `json:"id"`
	ComplaintID *string        `json:"complaint_id,omitempty"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Severity    string         `json:"severity"`
	EventKind   string         `json:"event_kind"`
	ActionURL   *string        `json:"action_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	IsRead      bool           `json:"is_read"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewNotification projects one stored notification.
func NewNotification(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		ComplaintID: n.ComplaintID,
		Title:       n.Title,
		Message:     n.Message,
		Severity:    string(n.Severity),
		EventKind:   n.EventKind,
		ActionURL:   n.ActionURL,
		Metadata:    n.Metadata,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}
