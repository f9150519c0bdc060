package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shrusti-bit/project-shelter/internal/domain"
)

// memStore backs in-memory item and donation repositories with the same
// atomicity contract the PostgreSQL implementations provide through row
// locks: every transition runs under one lock, and the donated total is
// recomputed from the donor list inside that critical section.
type memStore struct {
	mu        sync.Mutex
	items     map[string]*domain.Item
	donations map[string]*domain.DonationRecord
}

func newMemStore() (*memStore, *memItemRepo, *memDonationRepo) {
	s := &memStore{
		items:     map[string]*domain.Item{},
		donations: map[string]*domain.DonationRecord{},
	}
	return s, &memItemRepo{s: s}, &memDonationRepo{s: s}
}

func (m *memStore) reconcile(item *domain.Item, at time.Time) {
	item.Donated = item.DonorSum()
	if item.Donated >= item.Target {
		item.Status = domain.ItemFunded
	} else {
		item.Status = domain.ItemAvailable
	}
	item.UpdatedAt = at
}

func cloneItem(item *domain.Item) domain.Item {
	cp := *item
	cp.Donors = append([]domain.DonorContribution(nil), item.Donors...)
	return cp
}

type memItemRepo struct{ s *memStore }

func (r *memItemRepo) Create(_ context.Context, item *domain.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := cloneItem(item)
	r.s.items[item.ID] = &cp
	return nil
}

func (r *memItemRepo) Get(_ context.Context, id string) (*domain.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := cloneItem(item)
	return &cp, nil
}

func (r *memItemRepo) List(_ context.Context) ([]domain.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Item
	for _, item := range r.s.items {
		out = append(out, cloneItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memItemRepo) Replace(_ context.Context, item *domain.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := cloneItem(item)
	cp.Donated = cp.DonorSum()
	r.s.items[item.ID] = &cp
	return nil
}

func (r *memItemRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.items, id)
	return nil
}

type memDonationRepo struct{ s *memStore }

func (r *memDonationRepo) Submit(_ context.Context, rec *domain.DonationRecord) (*domain.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[rec.ItemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if rec.Amount > item.Remaining() {
		return nil, domain.Validationf("amount cannot exceed remaining amount of " + item.Remaining().Display())
	}
	item.Donors = append(item.Donors, domain.DonorContribution{
		ID:          uuid.NewString(),
		Name:        rec.DonorName,
		Amount:      rec.Amount,
		IsAnonymous: rec.IsAnonymous,
		DonationID:  rec.ID,
		CreatedAt:   rec.SubmittedAt,
	})
	r.s.reconcile(item, rec.SubmittedAt)
	cp := *rec
	r.s.donations[rec.ID] = &cp
	out := cloneItem(item)
	return &out, nil
}

func (r *memDonationRepo) Verify(_ context.Context, donationID, verifiedBy string, at time.Time) (*domain.DonationRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.donations[donationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	switch rec.Status {
	case domain.DonationVerified:
		cp := *rec
		return &cp, domain.ErrAlreadyVerified
	case domain.DonationRejected:
		return nil, domain.Validationf("donation was rejected and cannot be verified")
	}
	rec.Status = domain.DonationVerified
	rec.VerifiedAt = &at
	rec.VerifiedBy = verifiedBy
	cp := *rec
	return &cp, nil
}

func (r *memDonationRepo) Reject(_ context.Context, donationID string) (*domain.DonationRecord, *domain.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.donations[donationID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	if rec.Status == domain.DonationRejected {
		cp := *rec
		return &cp, nil, nil
	}
	rec.Status = domain.DonationRejected

	item, ok := r.s.items[rec.ItemID]
	if !ok {
		cp := *rec
		return &cp, nil, nil
	}
	kept := item.Donors[:0]
	for _, d := range item.Donors {
		if d.DonationID != donationID {
			kept = append(kept, d)
		}
	}
	item.Donors = kept
	r.s.reconcile(item, time.Now())
	recCp := *rec
	itemCp := cloneItem(item)
	return &recCp, &itemCp, nil
}

func (r *memDonationRepo) Get(_ context.Context, id string) (*domain.DonationRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.donations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memDonationRepo) List(_ context.Context, filter domain.DonationFilter) ([]domain.DonationRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.DonationRecord
	for _, rec := range r.s.donations {
		if filter != "" && filter != domain.DonationsAll && string(rec.Status) != string(filter) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (r *memDonationRepo) PendingStatsByItem(_ context.Context) (map[string]domain.PendingStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := map[string]domain.PendingStats{}
	for _, rec := range r.s.donations {
		if rec.Status != domain.DonationPending {
			continue
		}
		s := stats[rec.ItemID]
		s.Count++
		s.Amount += rec.Amount
		stats[rec.ItemID] = s
	}
	return stats, nil
}

var (
	_ domain.ItemRepository     = (*memItemRepo)(nil)
	_ domain.DonationRepository = (*memDonationRepo)(nil)
)
