package domain

import "time"

// ComplaintComment is a discussion entry on a complaint.
type ComplaintComment struct {
	ID          string
	ComplaintID string
	AuthorID    string
	AuthorIsAdmin bool
	Body        string
	CreatedAt   time.Time
}
