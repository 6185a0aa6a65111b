// Package collector issues the single bounded request that asks the Cloud
// Code API which models are available and how much quota each has left.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pistat/pistat/internal/logging"
)

const (
	defaultBaseURL = "https://cloudcode-pa.googleapis.com"
	modelsPath     = "/v1internal:fetchAvailableModels"
	userAgent      = "antigravity/1.104.0 darwin/arm64"

	// fetchTimeout bounds the whole call; there is no retry, a slow or dead
	// endpoint just ends the invocation.
	fetchTimeout = 15 * time.Second
)

// QuotaResponse is the decoded fetchAvailableModels payload. Every field is
// optional: the endpoint is not ours and anything may be absent.
type QuotaResponse struct {
	Models map[string]ModelEntry `json:"models"`
}

// ModelEntry is one model record, keyed in the response by an opaque model ID.
type ModelEntry struct {
	DisplayName string     `json:"displayName,omitempty"`
	Model       string     `json:"model,omitempty"`
	IsInternal  bool       `json:"isInternal,omitempty"`
	QuotaInfo   *QuotaInfo `json:"quotaInfo,omitempty"`
}

// QuotaInfo holds the per-model quota block.
type QuotaInfo struct {
	RemainingFraction *float64 `json:"remainingFraction,omitempty"`
	Limit             string   `json:"limit,omitempty"`
	ResetTime         string   `json:"resetTime,omitempty"`
}

// ErrFetch wraps any failure of the quota call. The orchestrator surfaces a
// generic message, so the sub-cause only matters for logs.
type ErrFetch struct {
	Reason string
	Err    error
}

func (e *ErrFetch) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quota fetch failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("quota fetch failed (%s)", e.Reason)
}

func (e *ErrFetch) Unwrap() error {
	return e.Err
}

// Fetcher issues quota requests against a fixed base URL.
type Fetcher struct {
	baseURL string
	client  *http.Client
	log     *logging.Logger
}

// NewFetcher creates a Fetcher using the production endpoint.
func NewFetcher(log *logging.Logger) *Fetcher {
	return &Fetcher{
		baseURL: defaultBaseURL,
		client:  newHTTPClient(),
		log:     log,
	}
}

// NewFetcherForURL creates a Fetcher against an alternate base URL. Used by
// tests against httptest servers.
func NewFetcherForURL(baseURL string, log *logging.Logger) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		client:  newHTTPClient(),
		log:     log,
	}
}

// Fetch performs one POST to the quota-status endpoint with the given bearer
// token. projectID may be empty, in which case the request body is an empty
// object. The call is cancelled after 15 seconds; cancellation, transport
// errors, non-2xx statuses, empty bodies and malformed JSON all come back as
// *ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, token, projectID string) (*QuotaResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	payload := map[string]string{}
	if projectID != "" {
		payload["project"] = projectID
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+modelsPath, bytes.NewReader(body))
	if err != nil {
		return nil, f.fail(ctx, "request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.fail(ctx, "transport", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, f.fail(ctx, fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, f.fail(ctx, "read", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, f.fail(ctx, "empty body", nil)
	}

	var parsed QuotaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, f.fail(ctx, "decode", err)
	}
	return &parsed, nil
}

func (f *Fetcher) fail(ctx context.Context, reason string, err error) error {
	ferr := &ErrFetch{Reason: reason, Err: err}
	if f.log != nil {
		f.log.WarnWithContext(ctx, "quota fetch failed", "reason", reason, "error", fmt.Sprint(err))
	}
	return ferr
}
