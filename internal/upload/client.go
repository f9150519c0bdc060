// Package upload talks to the external file-hosting endpoint that stores
// payment screenshots. Screenshots are optional metadata on a donation, so
// every failure here is wrapped as domain.ErrUpload and callers are expected
// to continue without the file.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shrusti-bit/project-shelter/internal/domain"
	"github.com/shrusti-bit/project-shelter/internal/storage"
)

// Request is the hosting endpoint's expected payload.
type Request struct {
	FileName   string `json:"fileName"`
	Base64Data string `json:"base64Data"`
	MimeType   string `json:"mimeType"`
}

// Result is the hosting endpoint's response.
type Result struct {
	Success bool   `json:"success"`
	FileURL string `json:"fileUrl"`
	FileID  string `json:"fileId"`
}

// Client posts files to the configured hosting endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient builds a Client for the given endpoint URL.
func NewClient(endpoint string, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient, logger: logger}
}

// Upload sends the file and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, in Request) (*Result, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrUpload, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrUpload, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: endpoint returned %d", domain.ErrUpload, resp.StatusCode)
	}
	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrUpload, err)
	}
	if !out.Success {
		return nil, fmt.Errorf("%w: endpoint reported failure", domain.ErrUpload)
	}
	return &out, nil
}

// Service stores screenshots, preferring the external endpoint and falling
// back to the local file store when the endpoint is unconfigured or down.
type Service struct {
	client  *Client
	store   *storage.FileStore
	baseURL string
	logger  zerolog.Logger
}

// NewService wires the uploader. client may be nil when no endpoint is
// configured; store may be nil when no fallback is wanted.
func NewService(client *Client, store *storage.FileStore, baseURL string, logger zerolog.Logger) *Service {
	return &Service{client: client, store: store, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Store uploads the screenshot and returns its result. The caller treats any
// error as non-fatal: a donation goes through without its screenshot.
func (s *Service) Store(ctx context.Context, in Request) (*Result, error) {
	if strings.TrimSpace(in.FileName) == "" || strings.TrimSpace(in.Base64Data) == "" {
		return nil, domain.Validationf("fileName and base64Data are required")
	}

	if s.client != nil {
		res, err := s.client.Upload(ctx, in)
		if err == nil {
			return res, nil
		}
		s.logger.Warn().Err(err).Msg("upload endpoint failed, using local store")
	}

	if s.store == nil {
		return nil, fmt.Errorf("%w: no upload target configured", domain.ErrUpload)
	}

	data, err := base64.StdEncoding.DecodeString(in.Base64Data)
	if err != nil {
		return nil, domain.Validationf("base64Data is not valid base64")
	}
	fileID := uuid.NewString()
	key := "screenshots/" + fileID + path.Ext(in.FileName)
	if _, err := s.store.Write(ctx, key, data); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpload, err)
	}
	return &Result{
		Success: true,
		FileURL: s.baseURL + "/static/" + key,
		FileID:  fileID,
	}, nil
}

// ReadLocal loads the bytes behind a screenshot URL served from the local
// store. URLs pointing at an external host return ErrNotFound: only files
// under this instance's /static/ prefix can be read back.
func (s *Service) ReadLocal(ctx context.Context, fileURL string) ([]byte, error) {
	prefix := s.baseURL + "/static/"
	if s.store == nil || !strings.HasPrefix(fileURL, prefix) {
		return nil, domain.ErrNotFound
	}
	data, err := s.store.Read(ctx, strings.TrimPrefix(fileURL, prefix))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return data, nil
}
