package repository

import (
	"context"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// ApprovalRepository stores the append-only review decision log.
type ApprovalRepository interface {
	Create(ctx context.Context, record *domain.ApprovalDecisionRecord) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ApprovalDecisionRecord, error)
	CountByAction(ctx context.Context) (map[domain.ApprovalAction]int, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type approvalRepository struct {
	db DBTX
}

// NewApprovalRepository builds repository.
func NewApprovalRepository(db DBTX) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, record *domain.ApprovalDecisionRecord) error {
	const query = `
        INSERT INTO complaint_approvals (complaint_id, reviewed_by, action, reason)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		record.ComplaintID,
		record.ReviewedBy,
		record.Action,
		record.Reason,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *approvalRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ApprovalDecisionRecord, error) {
	const query = `
        SELECT id, complaint_id, reviewed_by, action, reason, created_at
        FROM complaint_approvals WHERE complaint_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ApprovalDecisionRecord
	for rows.Next() {
		var record domain.ApprovalDecisionRecord
		if err := rows.Scan(
			&record.ID,
			&record.ComplaintID,
			&record.ReviewedBy,
			&record.Action,
			&record.Reason,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func (r *approvalRepository) CountByAction(ctx context.Context) (map[domain.ApprovalAction]int, error) {
	const query = `SELECT action, COUNT(*) FROM complaint_approvals GROUP BY action`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[domain.ApprovalAction]int)
	for rows.Next() {
		var action domain.ApprovalAction
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		stats[action] = count
	}
	return stats, rows.Err()
}

func (r *approvalRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `
        DELETE FROM complaint_approvals
        WHERE complaint_id IN (SELECT id FROM complaints WHERE user_id=$1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
