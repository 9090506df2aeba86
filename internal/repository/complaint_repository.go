package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// ComplaintFilter captures listing parameters.
type ComplaintFilter struct {
	UserID           *string
	AssignedTo       *string
	CategoryID       *string
	Statuses         []domain.ComplaintStatus
	ApprovalStatuses []domain.ApprovalStatus
	Priorities       []domain.ComplaintPriority
	SearchTerm       *string
	Locked           *bool
	SubmittedFrom    *time.Time
	SubmittedTo      *time.Time
	Limit            int
	Offset           int
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	// GetByIDForUpdate locks the row for the duration of the surrounding
	// transaction so authorization is re-evaluated against current state.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Complaint, error)
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	CountActiveByAssignee(ctx context.Context, adminID string) (int, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type complaintRepository struct {
	db DBTX
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(db DBTX) ComplaintRepository {
	return &complaintRepository{db: db}
}

const complaintColumns = `id, user_id, category_id, subject, description, priority,
    status, approval_status, assigned_to, assigned_at,
    reviewed_by, reviewed_at, rejection_reason, admin_response,
    is_locked, locked_by, lock_reason, locked_at,
    reassignment_count, resubmission_count,
    user_confirmed_resolved, user_rating, user_feedback,
    submitted_at, updated_at, resolved_at`

func (r *complaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (user_id, category_id, subject, description, priority, status, approval_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, submitted_at, updated_at`
	return r.db.QueryRow(ctx, query,
		c.UserID,
		c.CategoryID,
		c.Subject,
		c.Description,
		c.Priority,
		c.Status,
		c.ApprovalStatus,
	).Scan(&c.ID, &c.SubmittedAt, &c.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, c *domain.Complaint) error {
	const query = `
        UPDATE complaints SET
            category_id=$1, subject=$2, description=$3, priority=$4,
            status=$5, approval_status=$6, assigned_to=$7, assigned_at=$8,
            reviewed_by=$9, reviewed_at=$10, rejection_reason=$11, admin_response=$12,
            is_locked=$13, locked_by=$14, lock_reason=$15, locked_at=$16,
            reassignment_count=$17, resubmission_count=$18,
            user_confirmed_resolved=$19, user_rating=$20, user_feedback=$21,
            submitted_at=$22, resolved_at=$23, updated_at=NOW()
        WHERE id=$24`
	cmd, err := r.db.Exec(ctx, query,
		c.CategoryID,
		c.Subject,
		c.Description,
		c.Priority,
		c.Status,
		c.ApprovalStatus,
		c.AssignedTo,
		c.AssignedAt,
		c.ReviewedBy,
		c.ReviewedAt,
		c.RejectionReason,
		c.AdminResponse,
		c.IsLocked,
		c.LockedBy,
		c.LockReason,
		c.LockedAt,
		c.ReassignmentCount,
		c.ResubmissionCount,
		c.UserConfirmedResolved,
		c.UserRating,
		c.UserFeedback,
		c.SubmittedAt,
		c.ResolvedAt,
		c.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE id=$1`, complaintColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *complaintRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE id=$1 FOR UPDATE`, complaintColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *complaintRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := scanComplaint(r.db.QueryRow(ctx, query, arg), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanComplaint(row pgx.Row, c *domain.Complaint) error {
	return row.Scan(
		&c.ID,
		&c.UserID,
		&c.CategoryID,
		&c.Subject,
		&c.Description,
		&c.Priority,
		&c.Status,
		&c.ApprovalStatus,
		&c.AssignedTo,
		&c.AssignedAt,
		&c.ReviewedBy,
		&c.ReviewedAt,
		&c.RejectionReason,
		&c.AdminResponse,
		&c.IsLocked,
		&c.LockedBy,
		&c.LockReason,
		&c.LockedAt,
		&c.ReassignmentCount,
		&c.ResubmissionCount,
		&c.UserConfirmedResolved,
		&c.UserRating,
		&c.UserFeedback,
		&c.SubmittedAt,
		&c.UpdatedAt,
		&c.ResolvedAt,
	)
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := fmt.Sprintf(`SELECT %s FROM complaints`, complaintColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.ApprovalStatuses) > 0 {
		placeholders := make([]string, len(filter.ApprovalStatuses))
		for i, st := range filter.ApprovalStatuses {
			args = append(args, st)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("approval_status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Locked != nil {
		args = append(args, *filter.Locked)
		clauses = append(clauses, fmt.Sprintf("is_locked=$%d", len(args)))
	}
	if filter.SubmittedFrom != nil {
		args = append(args, *filter.SubmittedFrom)
		clauses = append(clauses, fmt.Sprintf("submitted_at >= $%d", len(args)))
	}
	if filter.SubmittedTo != nil {
		args = append(args, *filter.SubmittedTo)
		clauses = append(clauses, fmt.Sprintf("submitted_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(subject) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Complaint
	for rows.Next() {
		var c domain.Complaint
		if err := scanComplaint(rows, &c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *complaintRepository) CountActiveByAssignee(ctx context.Context, adminID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM complaints
        WHERE assigned_to=$1 AND status NOT IN ('Closed','Resolved')`
	var count int
	if err := r.db.QueryRow(ctx, query, adminID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *complaintRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM complaints WHERE user_id=$1`, userID)
	return err
}
