// Package ledger implements the funding ledger: items with donor
// contribution lists, donation records moving through admin review, and the
// reconciliation between the two. All amount mutations happen through the
// repositories' atomic transitions; this service layers validation, derived
// status views and post-commit side effects (audit trail, notifications,
// analytics, change events) on top.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shrusti-bit/project-shelter/internal/domain"
	"github.com/shrusti-bit/project-shelter/internal/event"
)

// Service is the application core shared by the HTTP handlers, the seed CLI
// and the background worker.
type Service struct {
	items     domain.ItemRepository
	donations domain.DonationRepository
	bus       *event.Bus
	sink      *event.Sink
	logger    zerolog.Logger
}

// NewService wires the ledger onto its collaborators.
func NewService(items domain.ItemRepository, donations domain.DonationRepository, bus *event.Bus, sink *event.Sink, logger zerolog.Logger) *Service {
	return &Service{items: items, donations: donations, bus: bus, sink: sink, logger: logger}
}

// ItemView is an item together with its derived funding state, recomputed for
// every render.
type ItemView struct {
	domain.Item
	Display  domain.DisplayStatus
	Verified domain.Amount
	Pending  domain.PendingStats
}

// CanDonate reports whether the public page should offer the donate button.
func (v ItemView) CanDonate() bool {
	return v.Display == domain.StatusAvailable && v.Remaining() > 0
}

// CreateItem adds a fundraising item with an empty ledger.
func (s *Service) CreateItem(ctx context.Context, name, description string, target domain.Amount, actor string) (*domain.Item, error) {
	item, err := domain.NewItem(uuid.NewString(), name, description, target)
	if err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}

	s.sink.Record(ctx, "item_added", "Added item: "+item.Name+" (₹"+item.Target.Display()+")", actor)
	s.sink.Notify(ctx, "item_added", "New item added: "+item.Name, item.ID)
	s.publishItem("item_added", item)
	return item, nil
}

// GetItem returns one item with its derived status.
func (s *Service) GetItem(ctx context.Context, id string) (*ItemView, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pending, err := s.donations.PendingStatsByItem(ctx)
	if err != nil {
		return nil, err
	}
	view := newItemView(*item, pending[item.ID])
	return &view, nil
}

// ListItems returns all items with derived statuses, optionally narrowed by
// the public page filter (all, available, funded).
func (s *Service) ListItems(ctx context.Context, filter string) ([]ItemView, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.donations.PendingStatsByItem(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		view := newItemView(item, pending[item.ID])
		switch filter {
		case "", "all":
		case "available":
			if view.Display != domain.StatusAvailable {
				continue
			}
		case "funded":
			if view.Display != domain.StatusFunded {
				continue
			}
		default:
			return nil, domain.Validationf("unknown filter " + filter)
		}
		views = append(views, view)
	}
	return views, nil
}

// EditItemInput is the admin edit payload: item fields plus a wholesale donor
// list replacement.
type EditItemInput struct {
	Name        string
	Description string
	Target      domain.Amount
	Status      domain.ItemStatus
	Donors      []domain.DonorContribution
}

// EditItem replaces the item's fields and donor list. The donated total is
// recomputed from the override list; a status override is honored except that
// a donated total at or above target always forces funded.
func (s *Service) EditItem(ctx context.Context, itemID string, in EditItemInput, actor string) (*domain.Item, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, domain.Validationf("item name is required")
	}
	if in.Target < 100 {
		return nil, domain.Validationf("target amount must be at least 1")
	}

	prev, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	item := &domain.Item{
		ID:          itemID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Target:      in.Target,
		Status:      in.Status,
		CreatedAt:   prev.CreatedAt,
		UpdatedAt:   now,
	}
	for _, d := range in.Donors {
		if d.Amount < 0 {
			return nil, domain.Validationf("donor amounts cannot be negative")
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		item.Donors = append(item.Donors, d)
	}
	item.Donated = item.DonorSum()
	if item.Status == "" {
		item.Status = domain.ItemAvailable
	}
	if item.Status != domain.ItemFunded && item.Status != domain.ItemAvailable {
		return nil, domain.Validationf("unknown status " + string(item.Status))
	}
	if item.Donated >= item.Target {
		item.Status = domain.ItemFunded
	}

	if err := s.items.Replace(ctx, item); err != nil {
		return nil, err
	}

	s.sink.Record(ctx, "item_updated", editChangeSummary(prev, item), actor)
	if prev.Donated < prev.Target && item.Donated >= item.Target {
		s.sink.Notify(ctx, "item_funded", "Item fully funded: "+item.Name, item.ID)
	}
	s.publishItem("item_updated", item)
	return item, nil
}

// DeleteItem removes the item and its donor list. Donation records that
// reference it are retained for audit and simply stop resolving.
func (s *Service) DeleteItem(ctx context.Context, itemID, actor string) error {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, itemID); err != nil {
		return err
	}
	s.sink.Record(ctx, "item_deleted", "Deleted item: "+item.Name, actor)
	s.bus.Publish(event.Event{Topic: event.TopicItems, Type: "item_deleted", ItemID: itemID})
	return nil
}

// SubmitInput is a donor's validated submission.
type SubmitInput struct {
	ItemID         string
	DonorName      string
	DonorEmail     string
	DonorPhone     string
	Amount         domain.Amount
	IsAnonymous    bool
	TransactionRef string
	ScreenshotURL  string
}

// Submit records a pending donation and credits the item optimistically in
// one atomic store transition. Verification is a later audit step, never a
// second credit; the remaining-budget check is repeated under the item row
// lock so two concurrent submissions cannot jointly overshoot the target.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*domain.DonationRecord, *domain.Item, error) {
	if len(strings.TrimSpace(in.DonorName)) < 2 {
		return nil, nil, domain.Validationf("name must be at least 2 characters")
	}
	if in.Amount < 100 {
		return nil, nil, domain.Validationf("amount must be at least ₹1")
	}

	rec := &domain.DonationRecord{
		ID:             uuid.NewString(),
		ItemID:         in.ItemID,
		DonorName:      strings.TrimSpace(in.DonorName),
		DonorEmail:     strings.TrimSpace(in.DonorEmail),
		DonorPhone:     strings.TrimSpace(in.DonorPhone),
		Amount:         in.Amount,
		IsAnonymous:    in.IsAnonymous,
		TransactionRef: strings.TrimSpace(in.TransactionRef),
		ScreenshotURL:  in.ScreenshotURL,
		Status:         domain.DonationPending,
		SubmittedAt:    time.Now(),
	}

	item, err := s.donations.Submit(ctx, rec)
	if err != nil {
		return nil, nil, err
	}

	s.sink.Record(ctx, "donation_submitted", "Donation of ₹"+rec.Amount.Display()+" for "+item.Name+" by "+rec.DonorName, rec.DonorEmail)
	s.sink.Notify(ctx, "new_donation", "New donation: ₹"+rec.Amount.Display()+" for "+item.Name, item.ID)
	s.sink.Count(ctx, map[string]int64{"donations_submitted": 1, "amount_submitted": int64(rec.Amount)})
	s.publishItem("item_updated", item)
	s.bus.Publish(event.Event{Topic: event.TopicDonations, Type: "donation_submitted", ItemID: item.ID, Payload: rec})
	return rec, item, nil
}

// Verify marks a donation verified. Verifying an already-verified record is
// a no-op that returns the current record.
func (s *Service) Verify(ctx context.Context, donationID, verifiedBy string) (*domain.DonationRecord, error) {
	rec, err := s.donations.Verify(ctx, donationID, verifiedBy, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyVerified) {
			return rec, err
		}
		return nil, err
	}

	item, itemErr := s.items.Get(ctx, rec.ItemID)
	itemName := rec.ItemID
	if itemErr == nil {
		itemName = item.Name
	}
	s.sink.Record(ctx, "donation_verified", "Verified donation: ₹"+rec.Amount.Display()+" for "+itemName, verifiedBy)
	s.sink.Count(ctx, map[string]int64{"donations_verified": 1})

	if itemErr == nil {
		pending, err := s.donations.PendingStatsByItem(ctx)
		if err == nil && domain.DeriveStatus(item, pending[item.ID]) == domain.StatusFunded {
			s.sink.Notify(ctx, "item_funded", "Item fully funded: "+item.Name, item.ID)
		}
		s.publishItem("item_updated", item)
	}
	s.bus.Publish(event.Event{Topic: event.TopicDonations, Type: "donation_verified", ItemID: rec.ItemID, Payload: rec})
	return rec, nil
}

// Reject marks a donation rejected and reverses its optimistic credit. The
// record is retained with status rejected. A record whose contribution was
// never linked (or whose item is gone) only transitions the record; that case
// is logged, not failed.
func (s *Service) Reject(ctx context.Context, donationID, actor string) (*domain.DonationRecord, error) {
	rec, item, err := s.donations.Reject(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		s.logger.Warn().Str("donation_id", donationID).Msg("reject: no ledger contribution to reverse")
	}

	s.sink.Record(ctx, "donation_rejected", "Rejected donation: ₹"+rec.Amount.Display(), actor)
	s.sink.Count(ctx, map[string]int64{"donations_rejected": 1})
	if item != nil {
		s.publishItem("item_updated", item)
	}
	s.bus.Publish(event.Event{Topic: event.TopicDonations, Type: "donation_rejected", ItemID: rec.ItemID, Payload: rec})
	return rec, nil
}

// Donations lists donation records for the admin dashboard.
func (s *Service) Donations(ctx context.Context, filter domain.DonationFilter) ([]domain.DonationRecord, error) {
	return s.donations.List(ctx, filter)
}

// Stats is the admin dashboard headline block.
type Stats struct {
	TotalItems     int
	FundedItems    int
	TotalDonations int
	TotalAmount    domain.Amount
}

// Stats aggregates dashboard numbers across items and donation records.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	views, err := s.ListItems(ctx, "all")
	if err != nil {
		return nil, err
	}
	recs, err := s.donations.List(ctx, domain.DonationsAll)
	if err != nil {
		return nil, err
	}

	out := &Stats{TotalItems: len(views)}
	for _, v := range views {
		if v.Display == domain.StatusFunded {
			out.FundedItems++
		}
	}
	for _, rec := range recs {
		if rec.Status == domain.DonationRejected {
			continue
		}
		out.TotalDonations++
		out.TotalAmount += rec.Amount
	}
	return out, nil
}

func (s *Service) publishItem(eventType string, item *domain.Item) {
	s.bus.Publish(event.Event{Topic: event.TopicItems, Type: eventType, ItemID: item.ID, Payload: item})
}

func newItemView(item domain.Item, pending domain.PendingStats) ItemView {
	return ItemView{
		Item:     item,
		Display:  domain.DeriveStatus(&item, pending),
		Verified: domain.VerifiedDonated(&item, pending),
		Pending:  pending,
	}
}

func editChangeSummary(prev, next *domain.Item) string {
	var changes []string
	if prev.Name != next.Name {
		changes = append(changes, "name: \""+prev.Name+"\" to \""+next.Name+"\"")
	}
	if prev.Target != next.Target {
		changes = append(changes, "target: ₹"+prev.Target.Display()+" to ₹"+next.Target.Display())
	}
	if prev.Donated != next.Donated {
		changes = append(changes, "donated: ₹"+prev.Donated.Display()+" to ₹"+next.Donated.Display())
	}
	if prev.Status != next.Status {
		changes = append(changes, "status: "+string(prev.Status)+" to "+string(next.Status))
	}
	summary := "Updated item: " + next.Name
	if len(changes) > 0 {
		summary += ". Changes: " + strings.Join(changes, ", ")
	}
	return summary
}
