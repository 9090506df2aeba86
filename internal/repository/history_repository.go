package repository

import (
	"context"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// HistoryRepository stores the append-only complaint audit trail.
type HistoryRepository interface {
	Create(ctx context.Context, entry *domain.ComplaintHistoryEntry) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintHistoryEntry, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type historyRepository struct {
	db DBTX
}

// NewHistoryRepository builds repository.
func NewHistoryRepository(db DBTX) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Create(ctx context.Context, entry *domain.ComplaintHistoryEntry) error {
	const query = `
        INSERT INTO complaint_history (complaint_id, changed_by, old_status, new_status, comment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.ComplaintID,
		entry.ChangedBy,
		entry.OldStatus,
		entry.NewStatus,
		entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *historyRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintHistoryEntry, error) {
	const query = `
        SELECT id, complaint_id, changed_by, old_status, new_status, comment, created_at
        FROM complaint_history WHERE complaint_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ComplaintHistoryEntry
	for rows.Next() {
		var entry domain.ComplaintHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ComplaintID,
			&entry.ChangedBy,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.Comment,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *historyRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `
        DELETE FROM complaint_history
        WHERE complaint_id IN (SELECT id FROM complaints WHERE user_id=$1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
