package domain

import "time"

// DonationStatus tracks a donation record through admin review.
type DonationStatus string

const (
	DonationPending  DonationStatus = "pending"
	DonationVerified DonationStatus = "verified"
	DonationRejected DonationStatus = "rejected"
)

// DonationRecord is a donor's submitted pledge. It is an audit trail
// independent from the item's donor list: the item is credited optimistically
// when the record is created, and verification is a review step that never
// credits a second time. Amount is immutable after creation.
type DonationRecord struct {
	ID             string
	ItemID         string
	DonorName      string
	DonorEmail     string
	DonorPhone     string
	Amount         Amount
	IsAnonymous    bool
	TransactionRef string
	ScreenshotURL  string
	Status         DonationStatus
	SubmittedAt    time.Time
	VerifiedAt     *time.Time
	VerifiedBy     string
}
