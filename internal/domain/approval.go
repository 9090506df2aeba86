package domain

import "time"

// ApprovalAction enumerates review decisions.
type ApprovalAction string

const (
	ActionApproved         ApprovalAction = "approved"
	ActionRejected         ApprovalAction = "rejected"
	ActionChangesRequested ApprovalAction = "changes_requested"
)

// ApprovalDecisionRecord is an append-only audit row for review decisions.
type ApprovalDecisionRecord struct {
	ID          string
	ComplaintID string
	ReviewedBy  string
	Action      ApprovalAction
	Reason      *string
	CreatedAt   time.Time
}
