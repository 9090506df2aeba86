package repository

import (
	"context"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// ReassignmentRepository stores the append-only reassignment audit trail.
type ReassignmentRepository interface {
	Create(ctx context.Context, record *domain.ReassignmentRecord) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ReassignmentRecord, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type reassignmentRepository struct {
	db DBTX
}

// NewReassignmentRepository builds repository.
func NewReassignmentRepository(db DBTX) ReassignmentRepository {
	return &reassignmentRepository{db: db}
}

func (r *reassignmentRepository) Create(ctx context.Context, record *domain.ReassignmentRecord) error {
	const query = `
        INSERT INTO reassignment_history (complaint_id, old_admin_id, new_admin_id, reassigned_by, reason)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		record.ComplaintID,
		record.OldAdminID,
		record.NewAdminID,
		record.ReassignedBy,
		record.Reason,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *reassignmentRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ReassignmentRecord, error) {
	const query = `
        SELECT id, complaint_id, old_admin_id, new_admin_id, reassigned_by, reason, created_at
        FROM reassignment_history WHERE complaint_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ReassignmentRecord
	for rows.Next() {
		var record domain.ReassignmentRecord
		if err := rows.Scan(
			&record.ID,
			&record.ComplaintID,
			&record.OldAdminID,
			&record.NewAdminID,
			&record.ReassignedBy,
			&record.Reason,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func (r *reassignmentRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `
        DELETE FROM reassignment_history
        WHERE complaint_id IN (SELECT id FROM complaints WHERE user_id=$1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
