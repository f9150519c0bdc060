package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/shrusti-bit/project-shelter/internal/domain"
	"github.com/shrusti-bit/project-shelter/internal/event"
	"github.com/shrusti-bit/project-shelter/internal/http/handlers"
	"github.com/shrusti-bit/project-shelter/internal/http/httpapi"
	"github.com/shrusti-bit/project-shelter/internal/infra"
	"github.com/shrusti-bit/project-shelter/internal/ledger"
	"github.com/shrusti-bit/project-shelter/internal/middleware"
	"github.com/shrusti-bit/project-shelter/internal/storage"
	"github.com/shrusti-bit/project-shelter/internal/upload"
)

const (
	testAdminEmail    = "admin@project.com"
	testAdminPassword = "open sesame"
)

// fakeStore backs the item and donation repositories with the atomicity
// contract the PostgreSQL implementations provide through row locks.
type fakeStore struct {
	mu        sync.Mutex
	items     map[string]*domain.Item
	donations map[string]*domain.DonationRecord
}

type fakeItems struct{ s *fakeStore }
type fakeDonations struct{ s *fakeStore }

func copyItem(item *domain.Item) domain.Item {
	cp := *item
	cp.Donors = append([]domain.DonorContribution(nil), item.Donors...)
	return cp
}

func (f *fakeItems) Create(_ context.Context, item *domain.Item) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := copyItem(item)
	f.s.items[item.ID] = &cp
	return nil
}

func (f *fakeItems) Get(_ context.Context, id string) (*domain.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	item, ok := f.s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := copyItem(item)
	return &cp, nil
}

func (f *fakeItems) List(_ context.Context) ([]domain.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.Item
	for _, item := range f.s.items {
		out = append(out, copyItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeItems) Replace(_ context.Context, item *domain.Item) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := copyItem(item)
	cp.Donated = cp.DonorSum()
	f.s.items[item.ID] = &cp
	return nil
}

func (f *fakeItems) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.s.items, id)
	return nil
}

func (f *fakeDonations) Submit(_ context.Context, rec *domain.DonationRecord) (*domain.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	item, ok := f.s.items[rec.ItemID]
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
	item.Donated = item.DonorSum()
	if item.Donated >= item.Target {
		item.Status = domain.ItemFunded
	}
	item.UpdatedAt = rec.SubmittedAt
	cp := *rec
	f.s.donations[rec.ID] = &cp
	out := copyItem(item)
	return &out, nil
}

func (f *fakeDonations) Verify(_ context.Context, donationID, verifiedBy string, at time.Time) (*domain.DonationRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	rec, ok := f.s.donations[donationID]
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

func (f *fakeDonations) Reject(_ context.Context, donationID string) (*domain.DonationRecord, *domain.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	rec, ok := f.s.donations[donationID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	if rec.Status == domain.DonationRejected {
		cp := *rec
		return &cp, nil, nil
	}
	rec.Status = domain.DonationRejected
	item, ok := f.s.items[rec.ItemID]
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
	item.Donated = item.DonorSum()
	if item.Donated < item.Target {
		item.Status = domain.ItemAvailable
	}
	recCp := *rec
	itemCp := copyItem(item)
	return &recCp, &itemCp, nil
}

func (f *fakeDonations) Get(_ context.Context, id string) (*domain.DonationRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	rec, ok := f.s.donations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeDonations) List(_ context.Context, filter domain.DonationFilter) ([]domain.DonationRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.DonationRecord
	for _, rec := range f.s.donations {
		if filter != "" && filter != domain.DonationsAll && string(rec.Status) != string(filter) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (f *fakeDonations) PendingStatsByItem(_ context.Context) (map[string]domain.PendingStats, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	stats := map[string]domain.PendingStats{}
	for _, rec := range f.s.donations {
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

type fakeActivity struct {
	mu      sync.Mutex
	entries []domain.ActivityEntry
}

func (f *fakeActivity) Append(_ context.Context, e *domain.ActivityEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeActivity) ListRecent(_ context.Context, limit int) ([]domain.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ActivityEntry, 0, limit)
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

type fakeNotifications struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (f *fakeNotifications) Create(_ context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Read = true
			f.items[i].ReadAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeNotifications) ListRecent(_ context.Context, limit int) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.items) {
		limit = len(f.items)
	}
	return append([]domain.Notification(nil), f.items[:limit]...), nil
}

func (f *fakeNotifications) UnreadCount(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.items {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

type fakeSettings struct {
	mu    sync.Mutex
	saved *domain.Settings
}

func (f *fakeSettings) Get(_ context.Context) (domain.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		return domain.DefaultSettings(), nil
	}
	return *f.saved, nil
}

func (f *fakeSettings) Save(_ context.Context, s domain.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = &s
	return nil
}

type fakeAnalytics struct {
	mu       sync.Mutex
	counters map[string]int64
}

func (f *fakeAnalytics) IncrementCounters(_ context.Context, _ string, counters map[string]int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counters == nil {
		f.counters = map[string]int64{}
	}
	for k, v := range counters {
		f.counters[k] += v
	}
	return nil
}

func (f *fakeAnalytics) GetSummary(_ context.Context) (*domain.AnalyticsDaily, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &domain.AnalyticsDaily{
		Day:                time.Now().UTC().Format("2006-01-02"),
		PageViews:          f.counters["page_views"],
		DonationsSubmitted: f.counters["donations_submitted"],
		DonationsVerified:  f.counters["donations_verified"],
		DonationsRejected:  f.counters["donations_rejected"],
		AmountSubmitted:    domain.Amount(f.counters["amount_submitted"]),
	}, nil
}

type testServer struct {
	srv           *httptest.Server
	app           *handlers.App
	svc           *ledger.Service
	activity      *fakeActivity
	notifications *fakeNotifications
	analytics     *fakeAnalytics
	cfg           *infra.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	cfg := &infra.Config{
		AppEnv:            "test",
		JWTSecret:         "test-secret",
		AdminEmail:        testAdminEmail,
		AdminPasswordHash: string(hash),
		StoragePath:       t.TempDir(),
		PublicBaseURL:     "http://localhost:8080",
		AllowedOrigins:    []string{"http://localhost:3000"},
		RateLimitPerMin:   1000,
	}

	store := &fakeStore{items: map[string]*domain.Item{}, donations: map[string]*domain.DonationRecord{}}
	items := &fakeItems{s: store}
	donations := &fakeDonations{s: store}
	activity := &fakeActivity{}
	notifications := &fakeNotifications{}
	analytics := &fakeAnalytics{}
	bus := event.NewBus()
	sink := event.NewSink(activity, notifications, analytics, zerolog.Nop())
	svc := ledger.NewService(items, donations, bus, sink, zerolog.Nop())

	files, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	uploads := upload.NewService(nil, files, cfg.PublicBaseURL, zerolog.Nop())

	app := handlers.NewApp(svc, uploads, &fakeSettings{}, activity, notifications, analytics, sink, bus, cfg, zerolog.Nop())
	srv := httptest.NewServer(httpapi.NewRouter(app))
	t.Cleanup(srv.Close)

	return &testServer{
		srv:           srv,
		app:           app,
		svc:           svc,
		activity:      activity,
		notifications: notifications,
		analytics:     analytics,
		cfg:           cfg,
	}
}

func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	token, err := middleware.SignJWT(ts.cfg.JWTSecret, middleware.TokenClaims{
		Sub:      testAdminEmail,
		Role:     middleware.RoleAdmin,
		Exp:      time.Now().Add(time.Hour).Unix(),
		Issuer:   "project-shelter",
		Audience: "admin-dashboard",
	})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (ts *testServer) createItem(t *testing.T, name string, target float64) string {
	t.Helper()
	resp, body := ts.do(t, http.MethodPost, "/v1/admin/items", ts.adminToken(t), map[string]any{
		"name":         name,
		"targetAmount": target,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create item: status %d, body %v", resp.StatusCode, body)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("create item: no id in %v", body)
	}
	return id
}

func (ts *testServer) submitDonation(t *testing.T, itemID string, amount float64) string {
	t.Helper()
	resp, body := ts.do(t, http.MethodPost, "/v1/donations", "", map[string]any{
		"itemId":    itemID,
		"donorName": "Asha Rao",
		"amount":    amount,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit donation: status %d, body %v", resp.StatusCode, body)
	}
	donation, _ := body["donation"].(map[string]any)
	id, _ := donation["id"].(string)
	if id == "" {
		t.Fatalf("submit donation: no id in %v", body)
	}
	return id
}
