package domain

// DisplayStatus is the funding state shown to visitors. It is derived, never
// stored: an item can read as "pending" purely because unverified donations
// are counted in its donated total.
type DisplayStatus string

const (
	StatusAvailable DisplayStatus = "available"
	StatusPending   DisplayStatus = "pending"
	StatusFunded    DisplayStatus = "funded"
)

// PendingStats summarizes the still-unverified donation records of one item.
type PendingStats struct {
	Count  int
	Amount Amount
}

// VerifiedDonated is the donated total with unverified amounts backed out,
// floored at zero.
func VerifiedDonated(item *Item, pending PendingStats) Amount {
	v := item.Donated - pending.Amount
	if v < 0 {
		return 0
	}
	return v
}

// DeriveStatus computes the display state of an item from its ledger and its
// pending donation records:
//
//   - funded: verified donations alone reach the target and nothing is
//     awaiting verification
//   - pending: the target is reached only when counting unverified amounts,
//     or verified donations reach the target while records are still pending
//   - available: everything else
//
// Submission eligibility is enforced separately (remaining > 0 at submit
// time), not here.
func DeriveStatus(item *Item, pending PendingStats) DisplayStatus {
	verified := VerifiedDonated(item, pending)
	switch {
	case verified >= item.Target && pending.Count == 0:
		return StatusFunded
	case item.Donated >= item.Target && verified < item.Target:
		return StatusPending
	case verified >= item.Target && pending.Count > 0:
		return StatusPending
	default:
		return StatusAvailable
	}
}
