package handlers_test

import (
	"net/http"
	"testing"
)

func TestSettingsRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/v1/settings", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get defaults: status %d", resp.StatusCode)
	}
	if body["projectName"] != "Project Shelter" {
		t.Errorf("default projectName = %v", body["projectName"])
	}

	resp, body = ts.do(t, http.MethodPut, "/v1/admin/settings", ts.adminToken(t), map[string]any{
		"projectName":     "Shelter Drive 2026",
		"upiQrCode":       "upi://pay?pa=shelter@upi",
		"certificateText": "With gratitude",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d, body %v", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodGet, "/v1/settings", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get updated: status %d", resp.StatusCode)
	}
	if body["projectName"] != "Shelter Drive 2026" || body["upiQrCode"] != "upi://pay?pa=shelter@upi" {
		t.Errorf("updated settings = %v", body)
	}
}

func TestSettingsUpdateRequiresName(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, http.MethodPut, "/v1/admin/settings", ts.adminToken(t), map[string]any{
		"projectName": "   ",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
