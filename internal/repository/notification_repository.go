package repository

import (
	"context"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// NotificationRepository manages stored notification records.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type notificationRepository struct {
	db DBTX
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_id, complaint_id, title, message, severity, event_kind, action_url, metadata)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		n.UserID,
		n.ComplaintID,
		n.Title,
		n.Message,
		n.Severity,
		n.EventKind,
		n.ActionURL,
		n.Metadata,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, user_id, complaint_id, title, message, severity, event_kind, action_url, metadata, is_read, created_at
        FROM notifications WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.ComplaintID,
			&n.Title,
			&n.Message,
			&n.Severity,
			&n.EventKind,
			&n.ActionURL,
			&n.Metadata,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND is_read=false`, userID).Scan(&count)
	return count, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	_, err := r.db.Exec(ctx, `UPDATE notifications SET is_read=true WHERE id=$1 AND user_id=$2`, notificationID, userID)
	return err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `UPDATE notifications SET is_read=true WHERE user_id=$1`, userID)
	return err
}

func (r *notificationRepository) DeleteByUser(ctx context.Context, userID string) error {
	// Admin-facing notifications reference the user's complaints, so they
	// must go before the complaints themselves can.
	const query = `
        DELETE FROM notifications
        WHERE user_id=$1
           OR complaint_id IN (SELECT id FROM complaints WHERE user_id=$1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
