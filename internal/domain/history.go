package domain

import "time"

// ComplaintHistoryEntry is an immutable audit record of one state-changing
// action. Entries are only ever appended.
type ComplaintHistoryEntry struct {
	ID          string
	ComplaintID string
	ChangedBy   string
	OldStatus   *ComplaintStatus
	NewStatus   *ComplaintStatus
	Comment     string
	CreatedAt   time.Time
}
