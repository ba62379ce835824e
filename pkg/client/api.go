// Package client is the device-side library: a thin HTTP client for the
// pack API, the AI endpoint chain, a TTL cache, and a manager that merges
// remote packs with locally owned ones.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/everaidhq/everaid/internal/pack"
	"github.com/everaidhq/everaid/internal/packsvc"
)

// ErrRemoteNotFound indicates the server has no pack with the given id.
var ErrRemoteNotFound = errors.New("remote pack not found")

// API talks to the everaidd pack endpoints.
type API struct {
	baseURL string
	anonKey string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewAPI creates a pack API client. anonKey may be empty when the server
// runs without auth.
func NewAPI(baseURL, anonKey string, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.anonKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.anonKey)
		req.Header.Set("apikey", a.anonKey)
	}

	resp, err := a.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrRemoteNotFound
	}
	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// ListPacks fetches all packs, or one category when category is non-empty.
func (a *API) ListPacks(ctx context.Context, category pack.Category) ([]pack.Record, error) {
	path := "/packs"
	if category != "" {
		path += "?category=" + string(category)
	}
	var records []pack.Record
	if err := a.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SearchResult is one entry of the server's relevance-ranked search.
type SearchResult struct {
	Record pack.Record `json:"record"`
	Score  float32     `json:"score"`
}

// SearchPacks runs a keyword search on the server. limit <= 0 uses the
// server default.
func (a *API) SearchPacks(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	path := "/packs/search?q=" + url.QueryEscape(query)
	if limit > 0 {
		path += fmt.Sprintf("&limit=%d", limit)
	}
	var results []SearchResult
	if err := a.do(ctx, http.MethodGet, path, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetPack fetches a single pack by id.
func (a *API) GetPack(ctx context.Context, id string) (*pack.Record, error) {
	var rec pack.Record
	if err := a.do(ctx, http.MethodGet, "/packs/"+id, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreatePack uploads a record and returns the server-assigned id.
func (a *API) CreatePack(ctx context.Context, rec pack.Record) (string, error) {
	var created struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	if err := a.do(ctx, http.MethodPost, "/packs", rec, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// UpdatePack applies a partial update to a remote pack.
func (a *API) UpdatePack(ctx context.Context, id string, patch packsvc.Patch) error {
	return a.do(ctx, http.MethodPut, "/packs/"+id, patch, nil)
}

// DeletePack removes a remote pack.
func (a *API) DeletePack(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/packs/"+id, nil, nil)
}

// Seed asks the server to seed its starter packs. Safe to call on every
// startup; the server only writes when its store is empty.
func (a *API) Seed(ctx context.Context) (packsvc.SeedResult, error) {
	var result packsvc.SeedResult
	if err := a.do(ctx, http.MethodPost, "/packs/seed", nil, &result); err != nil {
		return packsvc.SeedResult{}, err
	}
	return result, nil
}

// Reseed asks the server to wipe and reseed. Destructive.
func (a *API) Reseed(ctx context.Context) (packsvc.SeedResult, error) {
	var result packsvc.SeedResult
	if err := a.do(ctx, http.MethodPost, "/packs/reseed", nil, &result); err != nil {
		return packsvc.SeedResult{}, err
	}
	return result, nil
}

// Health checks server liveness.
func (a *API) Health(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}
	if err := a.do(ctx, http.MethodGet, "/health", nil, &status); err != nil {
		return err
	}
	if status.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", status.Status)
	}
	return nil
}
