package domain

import "time"

// NotificationSeverity matches the display styling of a notification.
type NotificationSeverity string

const (
	SeverityInfo    NotificationSeverity = "info"
	SeveritySuccess NotificationSeverity = "success"
	SeverityWarning NotificationSeverity = "warning"
	SeverityDanger  NotificationSeverity = "danger"
)

// Notification is the engine's contract with the delivery collaborator.
// The engine only decides that one must fire and with what payload.
type Notification struct {
	ID          string
	UserID      string
	ComplaintID *string
	Title       string
	Message     string
	Severity    NotificationSeverity
	EventKind   string
	ActionURL   *string
	Metadata    map[string]any
	IsRead      bool
	CreatedAt   time.Time
}
