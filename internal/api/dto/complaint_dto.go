package dto

import (
	"time"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// CreateComplaintRequest is the submit payload.
type CreateComplaintRequest struct {
	CategoryID  *string `json:"category_id,omitempty"`
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	Priority    string  `json:"priority,omitempty"`
}

// UpdateComplaintRequest is the owner's pre-approval edit payload.
type UpdateComplaintRequest struct {
	CategoryID  *string `json:"category_id,omitempty"`
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	Priority    string  `json:"priority,omitempty"`
}

// ChangeStatusRequest moves a complaint to a new status.
type ChangeStatusRequest struct {
	Status   string `json:"status"`
	Response string `json:"response,omitempty"`
}

// ReasonRequest carries a free-text reason or note.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// AssignRequest hands the complaint to an admin.
type AssignRequest struct {
	AdminID string `json:"admin_id"`
	Reason  string `json:"reason,omitempty"`
}

// CommentRequest adds a comment.
type CommentRequest struct {
	Body string `json:"body"`
}

// RatingRequest records post-closure satisfaction.
type RatingRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback,omitempty"`
}

// ComplaintSummary is the list-view projection.
type ComplaintSummary struct {
	ID             string     `json:"id"`
	Subject        string     `json:"subject"`
	Priority       string     `json:"priority"`
	Status         string     `json:"status"`
	ApprovalStatus string     `json:"approval_status"`
	AssignedTo     *string    `json:"assigned_to,omitempty"`
	IsLocked       bool       `json:"is_locked"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// ComplaintDetail is the full projection.
type ComplaintDetail struct {
	ComplaintSummary
	CategoryID            *string    `json:"category_id,omitempty"`
	Description           string     `json:"description"`
	RejectionReason       *string    `json:"rejection_reason,omitempty"`
	AdminResponse         *string    `json:"admin_response,omitempty"`
	LockReason            *string    `json:"lock_reason,omitempty"`
	LockedAt              *time.Time `json:"locked_at,omitempty"`
	AssignedAt            *time.Time `json:"assigned_at,omitempty"`
	ReassignmentCount     int        `json:"reassignment_count"`
	ResubmissionCount     int        `json:"resubmission_count"`
	UserConfirmedResolved bool       `json:"user_confirmed_resolved"`
	UserRating            *int       `json:"user_rating,omitempty"`
	UserFeedback          *string    `json:"user_feedback,omitempty"`
}

// HistoryEntryResponse is one audit timeline row.
type HistoryEntryResponse struct {
	ID        string    `json:"id"`
	ChangedBy string    `json:"changed_by"`
	OldStatus *string   `json:"old_status,omitempty"`
	NewStatus *string   `json:"new_status,omitempty"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentResponse is one comment row.
type CommentResponse struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	AuthorIsAdmin bool      `json:"author_is_admin"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReopenRequestResponse is one reopen request row.
type ReopenRequestResponse struct {
	ID          string     `json:"id"`
	ComplaintID string     `json:"complaint_id"`
	RequestedBy string     `json:"requested_by"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	ReviewedBy  *string    `json:"reviewed_by,omitempty"`
	ReviewNote  *string    `json:"review_note,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ReassignmentResponse is one handover audit row.
type ReassignmentResponse struct {
	ID           string    `json:"id"`
	OldAdminID   *string   `json:"old_admin_id,omitempty"`
	NewAdminID   string    `json:"new_admin_id"`
	ReassignedBy string    `json:"reassigned_by"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}

// ModifyDecisionResponse exposes the authorization gate verdict.
type ModifyDecisionResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// AllowedTransitionResponse is one forward edge of the rule table.
type AllowedTransitionResponse struct {
	Status     string `json:"status"`
	Reversible bool   `json:"reversible"`
}

// AdminWorkloadResponse summarizes one admin's load.
type AdminWorkloadResponse struct {
	AdminID          string `json:"admin_id"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	AdminLevel       string `json:"admin_level"`
	ActiveComplaints int    `json:"active_complaints"`
	TotalAssigned    int    `json:"total_assigned"`
}

// NewComplaintSummary projects a complaint for list views.
func NewComplaintSummary(c *domain.Complaint) ComplaintSummary {
	return ComplaintSummary{
		ID:             c.ID,
		Subject:        c.Subject,
		Priority:       string(c.Priority),
		Status:         string(c.Status),
		ApprovalStatus: string(c.ApprovalStatus),
		AssignedTo:     c.AssignedTo,
		IsLocked:       c.IsLocked,
		SubmittedAt:    c.SubmittedAt,
		UpdatedAt:      c.UpdatedAt,
		ResolvedAt:     c.ResolvedAt,
	}
}

// NewComplaintDetail projects the full complaint.
func NewComplaintDetail(c *domain.Complaint) ComplaintDetail {
	return ComplaintDetail{
		ComplaintSummary:      NewComplaintSummary(c),
		CategoryID:            c.CategoryID,
		Description:           c.Description,
		RejectionReason:       c.RejectionReason,
		AdminResponse:         c.AdminResponse,
		LockReason:            c.LockReason,
		LockedAt:              c.LockedAt,
		AssignedAt:            c.AssignedAt,
		ReassignmentCount:     c.ReassignmentCount,
		ResubmissionCount:     c.ResubmissionCount,
		UserConfirmedResolved: c.UserConfirmedResolved,
		UserRating:            c.UserRating,
		UserFeedback:          c.UserFeedback,
	}
}

// NewHistoryEntry projects one audit row.
func NewHistoryEntry(entry *domain.ComplaintHistoryEntry) HistoryEntryResponse {
	resp := HistoryEntryResponse{
		ID:        entry.ID,
		ChangedBy: entry.ChangedBy,
		Comment:   entry.Comment,
		CreatedAt: entry.CreatedAt,
	}
	if entry.OldStatus != nil {
		old := string(*entry.OldStatus)
		resp.OldStatus = &old
	}
	if entry.NewStatus != nil {
		next := string(*entry.NewStatus)
		resp.NewStatus = &next
	}
	return resp
}

// NewReopenRequest projects one reopen request.
func NewReopenRequest(req *domain.ReopenRequest) ReopenRequestResponse {
	return ReopenRequestResponse{
		ID:          req.ID,
		ComplaintID: req.ComplaintID,
		RequestedBy: req.RequestedBy,
		Reason:      req.Reason,
		Status:      string(req.Status),
		ReviewedBy:  req.ReviewedBy,
		ReviewNote:  req.ReviewNote,
		ReviewedAt:  req.ReviewedAt,
		CreatedAt:   req.CreatedAt,
	}
}

// NewComment projects one comment.
func NewComment(comment *domain.ComplaintComment) CommentResponse {
	return CommentResponse{
		ID:            comment.ID,
		AuthorID:      comment.AuthorID,
		AuthorIsAdmin: comment.AuthorIsAdmin,
		Body:          comment.Body,
		CreatedAt:     comment.CreatedAt,
	}
}

// NewReassignment projects one handover row.
func NewReassignment(record *domain.ReassignmentRecord) ReassignmentResponse {
	return ReassignmentResponse{
		ID:           record.ID,
		OldAdminID:   record.OldAdminID,
		NewAdminID:   record.NewAdminID,
		ReassignedBy: record.ReassignedBy,
		Reason:       record.Reason,
		CreatedAt:    record.CreatedAt,
	}
}
