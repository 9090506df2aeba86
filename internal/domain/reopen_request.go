package domain

import "time"

// ReopenStatus enumerates reopen request states.
type ReopenStatus string

const (
	ReopenPending  ReopenStatus = "pending"
	ReopenApproved ReopenStatus = "approved"
	ReopenRejected ReopenStatus = "rejected"
)

// ReopenRequest is a user petition to return a closed complaint to active
// status. At most one pending request may exist per complaint.
type ReopenRequest struct {
	ID          string
	ComplaintID string
	RequestedBy string
	Reason      string
	Status      ReopenStatus
	ReviewedBy  *string
	ReviewNote  *string
	ReviewedAt  *time.Time
	CreatedAt   time.Time
}
