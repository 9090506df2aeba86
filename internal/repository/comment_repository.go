package repository

import (
	"context"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// CommentRepository manages complaint comment persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.ComplaintComment) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintComment, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type commentRepository struct {
	db DBTX
}

// NewCommentRepository builds repository.
func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.ComplaintComment) error {
	const query = `
        INSERT INTO complaint_comments (complaint_id, author_id, author_is_admin, body)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		comment.ComplaintID,
		comment.AuthorID,
		comment.AuthorIsAdmin,
		comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintComment, error) {
	const query = `
        SELECT id, complaint_id, author_id, author_is_admin, body, created_at
        FROM complaint_comments WHERE complaint_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ComplaintComment
	for rows.Next() {
		var comment domain.ComplaintComment
		if err := rows.Scan(
			&comment.ID,
			&comment.ComplaintID,
			&comment.AuthorID,
			&comment.AuthorIsAdmin,
			&comment.Body,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `
        DELETE FROM complaint_comments
        WHERE author_id=$1
           OR complaint_id IN (SELECT id FROM complaints WHERE user_id=$1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
