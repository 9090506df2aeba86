package domain

import "time"

// ReassignmentRecord is an append-only audit row for assignment changes.
// OldAdminID is nil for the very first assignment.
type ReassignmentRecord struct {
	ID           string
	ComplaintID  string
	OldAdminID   *string
	NewAdminID   string
	ReassignedBy string
	Reason       string
	CreatedAt    time.Time
}
