package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// ReopenRequestRepository manages reopen request persistence.
type ReopenRequestRepository interface {
	Create(ctx context.Context, request *domain.ReopenRequest) error
	Update(ctx context.Context, request *domain.ReopenRequest) error
	GetByID(ctx context.Context, id string) (*domain.ReopenRequest, error)
	// GetPendingByComplaint returns pgx.ErrNoRows when no pending request exists.
	GetPendingByComplaint(ctx context.Context, complaintID string) (*domain.ReopenRequest, error)
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ReopenRequest, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type reopenRequestRepository struct {
	db DBTX
}

// NewReopenRequestRepository builds repository.
func NewReopenRequestRepository(db DBTX) ReopenRequestRepository {
	return &reopenRequestRepository{db: db}
}

const reopenColumns = `id, complaint_id, requested_by, reason, status, reviewed_by, review_note, reviewed_at, created_at`

func (r *reopenRequestRepository) Create(ctx context.Context, request *domain.ReopenRequest) error {
	const query = `
        INSERT INTO reopen_requests (complaint_id, requested_by, reason, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		request.ComplaintID,
		request.RequestedBy,
		request.Reason,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt)
}

func (r *reopenRequestRepository) Update(ctx context.Context, request *domain.ReopenRequest) error {
	const query = `
        UPDATE reopen_requests
        SET status=$1, reviewed_by=$2, review_note=$3, reviewed_at=$4
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		request.Status,
		request.ReviewedBy,
		request.ReviewNote,
		request.ReviewedAt,
		request.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reopenRequestRepository) GetByID(ctx context.Context, id string) (*domain.ReopenRequest, error) {
	query := `SELECT ` + reopenColumns + ` FROM reopen_requests WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *reopenRequestRepository) GetPendingByComplaint(ctx context.Context, complaintID string) (*domain.ReopenRequest, error) {
	query := `SELECT ` + reopenColumns + ` FROM reopen_requests
        WHERE complaint_id=$1 AND status='pending'
        ORDER BY created_at DESC LIMIT 1`
	return r.fetchSingle(ctx, query, complaintID)
}

func (r *reopenRequestRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ReopenRequest, error) {
	var request domain.ReopenRequest
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&request.ID,
		&request.ComplaintID,
		&request.RequestedBy,
		&request.Reason,
		&request.Status,
		&request.ReviewedBy,
		&request.ReviewNote,
		&request.ReviewedAt,
		&request.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *reopenRequestRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ReopenRequest, error) {
	query := `SELECT ` + reopenColumns + ` FROM reopen_requests WHERE complaint_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ReopenRequest
	for rows.Next() {
		var request domain.ReopenRequest
		if err := rows.Scan(
			&request.ID,
			&request.ComplaintID,
			&request.RequestedBy,
			&request.Reason,
			&request.Status,
			&request.ReviewedBy,
			&request.ReviewNote,
			&request.ReviewedAt,
			&request.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}

func (r *reopenRequestRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `
        DELETE FROM reopen_requests
        WHERE requested_by=$1
           OR complaint_id IN (SELECT id FROM complaints WHERE user_id=$1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
