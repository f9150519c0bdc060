package handlers_test

import (
	"context"
	"net/http"
	"testing"
)

func TestAuthLoginIssuesWorkingToken(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/v1/admin/login", "", map[string]any{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d, body %v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login: no token in response")
	}

	resp, _ = ts.do(t, http.MethodGet, "/v1/admin/stats", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin route with issued token: status %d, want 200", resp.StatusCode)
	}
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", testAdminEmail, "guess"},
		{"wrong email", "intruder@example.com", testAdminPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := ts.do(t, http.MethodPost, "/v1/admin/login", "", map[string]any{
				"email": tc.email, "password": tc.password,
			})
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", resp.StatusCode)
			}
		})
	}
}

func TestAuthLogoutRecordsActivity(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/v1/admin/logout", ts.adminToken(t), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: status %d", resp.StatusCode)
	}
	entries, err := ts.activity.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != "admin_logout" {
		t.Errorf("activity = %+v, want one admin_logout entry", entries)
	}
}
