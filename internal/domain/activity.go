package domain

import "time"

// ActivityEntry is one line of the append-only audit trail. Entries are never
// mutated or deleted.
type ActivityEntry struct {
	ID        string
	Type      string
	Details   string
	Actor     string
	CreatedAt time.Time
}

// Notification is an admin-facing alert. The only permitted mutation is
// flipping Read.
type Notification struct {
	ID        string
	Type      string
	Message   string
	ItemID    string
	Read      bool
	CreatedAt time.Time
	ReadAt    *time.Time
}
