package handlers_test

import (
	"encoding/base64"
	"net/http"
	"strings"
	"testing"
)

func TestUploadsCreateStoresScreenshot(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/v1/uploads", "", map[string]any{
		"fileName":   "payment.png",
		"base64Data": base64.StdEncoding.EncodeToString([]byte("png-bytes")),
		"mimeType":   "image/png",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload: status %d, body %v", resp.StatusCode, body)
	}
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	fileURL, _ := body["fileUrl"].(string)
	if !strings.Contains(fileURL, "/static/screenshots/") {
		t.Errorf("fileUrl = %q, want local static path", fileURL)
	}

	// The stored file is served back over /static/.
	res, err := ts.srv.Client().Get(ts.srv.URL + fileURL[strings.Index(fileURL, "/static/"):])
	if err != nil {
		t.Fatalf("fetch static: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("static fetch: status %d", res.StatusCode)
	}
}

func TestUploadsCreateValidation(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := ts.do(t, http.MethodPost, "/v1/uploads", "", map[string]any{
		"fileName": "payment.png",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
