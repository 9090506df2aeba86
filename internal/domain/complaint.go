package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusAssigned   ComplaintStatus = "Assigned"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusOnHold     ComplaintStatus = "On Hold"
	StatusResolved   ComplaintStatus = "Resolved"
	StatusClosed     ComplaintStatus = "Closed"
)

// Label returns the display text for a status. The switch is exhaustive so
// a new status value shows up as a compile-visible gap here.
func (s ComplaintStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusAssigned:
		return "Assigned"
	case StatusInProgress:
		return "In Progress"
	case StatusOnHold:
		return "On Hold"
	case StatusResolved:
		return "Resolved"
	case StatusClosed:
		return "Closed"
	default:
		return string(s)
	}
}

// IsTerminalResolving reports whether entering the status stamps the
// resolution timestamp.
func (s ComplaintStatus) IsTerminalResolving() bool {
	return s == StatusResolved || s == StatusClosed
}

// ApprovalStatus enumerates the review gate states.
type ApprovalStatus string

const (
	ApprovalPendingReview    ApprovalStatus = "pending_review"
	ApprovalApproved         ApprovalStatus = "approved"
	ApprovalRejected         ApprovalStatus = "rejected"
	ApprovalChangesRequested ApprovalStatus = "changes_requested"
)

// Label returns the display text for an approval status.
func (a ApprovalStatus) Label() string {
	switch a {
	case ApprovalPendingReview:
		return "Pending Review"
	case ApprovalApproved:
		return "Approved"
	case ApprovalRejected:
		return "Rejected"
	case ApprovalChangesRequested:
		return "Changes Requested"
	default:
		return string(a)
	}
}

// ComplaintPriority enumerates urgency.
type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "Low"
	PriorityMedium ComplaintPriority = "Medium"
	PriorityHigh   ComplaintPriority = "High"
)

// Complaint is the aggregate for user complaints. It is mutated only through
// the lifecycle services; presentation code never writes fields directly.
type Complaint struct {
	ID          string
	UserID      string
	CategoryID  *string
	Subject     string
	Description string
	Priority    ComplaintPriority

	Status         ComplaintStatus
	ApprovalStatus ApprovalStatus

	AssignedTo *string
	AssignedAt *time.Time

	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	AdminResponse   *string

	IsLocked   bool
	LockedBy   *string
	LockReason *string
	LockedAt   *time.Time

	ReassignmentCount int
	ResubmissionCount int

	UserConfirmedResolved bool
	UserRating            *int
	UserFeedback          *string

	SubmittedAt time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
}
