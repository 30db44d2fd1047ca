// Package api provides the client for the campaign backend.
//
// Three endpoints are consumed: campaign lookup, the area catalog, and
// response submission. The wire shapes are fixed by the backend and must
// not drift; see the request/response types below.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bluewave/kiosko/internal/schema"
)

// ErrCampaignNotFound is returned when a campaign token is unknown,
// inactive, or outside its activity window.
var ErrCampaignNotFound = errors.New("campaign not found")

// Client talks to the campaign backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// New creates a backend client. A zero Timeout defaults to 15 seconds;
// the pipeline relies on this bound because in-flight calls cannot be
// cancelled individually.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Campaign is the response of GET /api/campaign/{token}.
type Campaign struct {
	Token        string   `json:"token"`
	CampaignID   int64    `json:"campaign_id"`
	Name         string   `json:"name"`
	RequireArea  bool     `json:"require_area"`
	RequireShift bool     `json:"require_shift"`
	Shifts       []string `json:"shifts"`
	Snapshot     Snapshot `json:"snapshot"`
}

// Snapshot is the schema snapshot taken when the campaign was published.
type Snapshot struct {
	Schema *schema.Schema `json:"schema"`
}

// Area is one entry of the area catalog.
type Area struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SubmitPayload is the body of POST /api/submit/{token}.
type SubmitPayload struct {
	Lang          string           `json:"lang"`
	AreaID        *int64           `json:"area_id"`
	Shift         string           `json:"shift"`
	WantsFollowup bool             `json:"wants_followup"`
	ContactName   *string          `json:"contact_name"`
	EmployeeNo    *string          `json:"employee_no"`
	Answers       schema.AnswerSet `json:"answers"`
	Source        string           `json:"source"`
}

// Campaign fetches the campaign definition for a token.
func (c *Client) Campaign(ctx context.Context, token string) (*Campaign, error) {
	endpoint := c.baseURL + "/api/campaign/" + url.PathEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch campaign: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrCampaignNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch campaign: unexpected status %d", resp.StatusCode)
	}

	var campaign Campaign
	if err := json.NewDecoder(resp.Body).Decode(&campaign); err != nil {
		return nil, fmt.Errorf("decode campaign: %w", err)
	}
	return &campaign, nil
}

// Areas fetches the active area catalog.
func (c *Client) Areas(ctx context.Context) ([]Area, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/areas", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch areas: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch areas: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Items []Area `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode areas: %w", err)
	}
	return out.Items, nil
}

// Submit posts a completed response. Success is any 2xx status; everything
// else (including transport errors) is a failure the caller recovers from
// by queueing the payload locally.
func (c *Client) Submit(ctx context.Context, token string, payload SubmitPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := c.baseURL + "/api/submit/" + url.PathEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("submit: unexpected status %d", resp.StatusCode)
	}
	return nil
}
