package domain

import (
	"context"
	"time"
)

// ItemRepository persists items together with their donor lists. Mutations
// that touch the donor list must keep Donated equal to the donor sum within
// a single transaction.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context) ([]Item, error)
	// Replace overwrites the item's fields and donor list wholesale (the
	// admin edit path). Donated is recomputed from the provided donors.
	Replace(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id string) error
}

// DonationFilter narrows donation listings for the admin dashboard.
type DonationFilter string

const (
	DonationsAll      DonationFilter = "all"
	DonationsPending  DonationFilter = "pending"
	DonationsVerified DonationFilter = "verified"
	DonationsRejected DonationFilter = "rejected"
)

// DonationRepository persists donation records and owns the atomic
// cross-entity transitions: Submit credits the item ledger in the same
// transaction that inserts the record, and Reject reverses that credit.
type DonationRepository interface {
	// Submit inserts rec as pending and applies its contribution to the
	// item: under a row lock it re-checks that rec.Amount fits the
	// remaining budget, appends the donor entry and recomputes the donated
	// total. Returns the updated item. Fails with ErrValidation when the
	// remaining budget no longer covers the amount, ErrNotFound when the
	// item is gone.
	Submit(ctx context.Context, rec *DonationRecord) (*Item, error)
	// Verify marks the record verified. ErrNotFound when missing,
	// ErrAlreadyVerified (state unchanged) when already verified.
	Verify(ctx context.Context, donationID, verifiedBy string, at time.Time) (*DonationRecord, error)
	// Reject marks the record rejected, removes the linked contribution
	// from the item and recomputes its donated total. A missing
	// contribution is not an error; the returned item is nil in that case
	// only if the whole item is gone.
	Reject(ctx context.Context, donationID string) (*DonationRecord, *Item, error)
	Get(ctx context.Context, id string) (*DonationRecord, error)
	List(ctx context.Context, filter DonationFilter) ([]DonationRecord, error)
	// PendingStatsByItem aggregates still-pending records per item id.
	PendingStatsByItem(ctx context.Context) (map[string]PendingStats, error)
}

// ActivityRepository is the append-only audit trail.
type ActivityRepository interface {
	Append(ctx context.Context, entry *ActivityEntry) error
	ListRecent(ctx context.Context, limit int) ([]ActivityEntry, error)
}

// NotificationRepository stores admin alerts.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	MarkRead(ctx context.Context, id string, at time.Time) error
	ListRecent(ctx context.Context, limit int) ([]Notification, error)
	UnreadCount(ctx context.Context) (int, error)
}

// SettingsRepository stores the single-row site settings.
type SettingsRepository interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

// AnalyticsRepository updates best-effort daily counters.
type AnalyticsRepository interface {
	IncrementCounters(ctx context.Context, day string, counters map[string]int64) error
	GetSummary(ctx context.Context) (*AnalyticsDaily, error)
}
