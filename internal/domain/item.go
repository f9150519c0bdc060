package domain

import (
	"strings"
	"time"
)

// ItemStatus is the stored coarse state of an item. The richer display state
// (which also knows about pending donations) is computed by DeriveStatus.
type ItemStatus string

const (
	ItemAvailable ItemStatus = "available"
	ItemFunded    ItemStatus = "funded"
)

// Item is a fundraising line with a target amount and a running donated
// total. DonatedAmount must equal the sum of the donor contributions after
// every mutation; repositories are responsible for keeping that true inside
// a single transaction.
type Item struct {
	ID          string
	Name        string
	Description string
	Target      Amount
	Donated     Amount
	Status      ItemStatus
	Donors      []DonorContribution
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DonorContribution is one entry in an item's donor list. It is owned by its
// parent item and loosely linked to the donation record that produced it.
type DonorContribution struct {
	ID          string
	Name        string
	Amount      Amount
	IsAnonymous bool
	DonationID  string
	CreatedAt   time.Time
}

// Remaining is the amount still needed, counting optimistically credited
// pending donations, floored at zero.
func (i *Item) Remaining() Amount {
	if i.Donated >= i.Target {
		return 0
	}
	return i.Target - i.Donated
}

// DonorSum recomputes the donated total from the donor list.
func (i *Item) DonorSum() Amount {
	var sum Amount
	for _, d := range i.Donors {
		sum += d.Amount
	}
	return sum
}

// NewItem validates and builds a fresh item with an empty ledger.
func NewItem(id, name, description string, target Amount) (*Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Validationf("item name is required")
	}
	if target < 100 {
		return nil, Validationf("target amount must be at least 1")
	}
	now := time.Now()
	return &Item{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(description),
		Target:      target,
		Donated:     0,
		Status:      ItemAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// DonorDisplay builds the "Donated by ..." line shown under an item card,
// collapsing anonymous donors into a count.
func (i *Item) DonorDisplay() string {
	if len(i.Donors) == 0 {
		return ""
	}
	var named []string
	anonymous := 0
	for _, d := range i.Donors {
		if d.IsAnonymous {
			anonymous++
			continue
		}
		named = append(named, d.Name)
	}
	switch {
	case len(named) == 0 && anonymous == 1:
		return "Donated by Anonymous"
	case len(named) == 0:
		return displayPrinter.Sprintf("Donated by %d Anonymous Donors", anonymous)
	case anonymous == 0:
		return "Donated by " + strings.Join(named, ", ")
	case anonymous == 1:
		return "Donated by " + strings.Join(named, ", ") + " and 1 anonymous donor"
	default:
		return displayPrinter.Sprintf("Donated by %s and %d anonymous donors", strings.Join(named, ", "), anonymous)
	}
}
