package handlers_test

import (
	"net/http"
	"testing"
)

func TestStatsDashboard(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)

	small := ts.createItem(t, "School Bags", 500)
	ts.createItem(t, "Water Purifier", 5000)
	verified := ts.submitDonation(t, small, 500)

	resp, _ := ts.do(t, http.MethodPost, "/v1/admin/donations/"+verified+"/verify", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify: status %d", resp.StatusCode)
	}

	resp, body := ts.do(t, http.MethodGet, "/v1/admin/stats", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: status %d", resp.StatusCode)
	}
	if body["totalItems"].(float64) != 2 {
		t.Errorf("totalItems = %v, want 2", body["totalItems"])
	}
	if body["fundedItems"].(float64) != 1 {
		t.Errorf("fundedItems = %v, want 1", body["fundedItems"])
	}
	if body["totalDonations"].(float64) != 1 {
		t.Errorf("totalDonations = %v, want 1", body["totalDonations"])
	}
	if body["totalAmount"].(float64) != 500 {
		t.Errorf("totalAmount = %v, want 500", body["totalAmount"])
	}
	analytics, ok := body["analytics"].(map[string]any)
	if !ok {
		t.Fatalf("stats body lacks analytics block: %v", body)
	}
	if analytics["donationsSubmitted"].(float64) != 1 {
		t.Errorf("donationsSubmitted = %v, want 1", analytics["donationsSubmitted"])
	}
}

func TestStatsExcludesRejected(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)

	item := ts.createItem(t, "Medicine Kit", 2000)
	ts.submitDonation(t, item, 700)
	drop := ts.submitDonation(t, item, 300)

	resp, _ := ts.do(t, http.MethodPost, "/v1/admin/donations/"+drop+"/reject", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reject: status %d", resp.StatusCode)
	}

	resp, body := ts.do(t, http.MethodGet, "/v1/admin/stats", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: status %d", resp.StatusCode)
	}
	if body["totalDonations"].(float64) != 1 {
		t.Errorf("totalDonations = %v, want 1", body["totalDonations"])
	}
	if body["totalAmount"].(float64) != 700 {
		t.Errorf("totalAmount = %v, want 700", body["totalAmount"])
	}
}
