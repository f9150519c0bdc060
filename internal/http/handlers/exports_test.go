package handlers_test

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestExportScreenshots(t *testing.T) {
	ts := newTestServer(t)
	itemID := ts.createItem(t, "Water Pump", 5000)
	token := ts.adminToken(t)

	content := []byte("fake-png-bytes")
	resp, body := ts.do(t, http.MethodPost, "/v1/uploads", "", map[string]any{
		"fileName":   "payment.png",
		"base64Data": base64.StdEncoding.EncodeToString(content),
		"mimeType":   "image/png",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d", resp.StatusCode)
	}
	fileURL, _ := body["fileUrl"].(string)
	if fileURL == "" {
		t.Fatalf("upload returned no fileUrl: %v", body)
	}

	resp, _ = ts.do(t, http.MethodPost, "/v1/donations", "", map[string]any{
		"itemId":        itemID,
		"donorName":     "Asha Verma",
		"amount":        100.0,
		"screenshotUrl": fileURL,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}

	// a donation without a screenshot must not break the export
	ts.submitDonation(t, itemID, 50)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+"/v1/admin/items/"+itemID+"/screenshots", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("Content-Type = %q, want application/zip", ct)
	}
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 1 {
		t.Fatalf("archive has %d entries, want 1", len(zr.File))
	}
	entry := zr.File[0]
	if !strings.HasPrefix(entry.Name, "pending-") || !strings.HasSuffix(entry.Name, ".png") {
		t.Fatalf("entry name = %q", entry.Name)
	}
	rc, err := entry.Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("entry content = %q, want %q", got, content)
	}
}

func TestExportScreenshotsUnknownItem(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, http.MethodGet, "/v1/admin/items/does-not-exist/screenshots", ts.adminToken(t), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
