package domain

import "time"

// Category is a reference for classifying complaints. The engine keeps only
// the reference; no logic depends on it.
type Category struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
}
