package readwise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://readwise.io/api/v2/"

	highlightsPath = "highlights/"
	authPath       = "auth/"

	defaultTimeout = 30 * time.Second
)

// Client interfaces with the Readwise v2 API
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Readwise API client. An empty baseURL selects the
// public API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: baseURL,
	}
}

// HighlightInput is one highlight in a create request. Nil pointers are sent
// as JSON null.
type HighlightInput struct {
	Text          string  `json:"text"`
	Title         string  `json:"title"`
	Author        *string `json:"author"`
	SourceType    string  `json:"source_type"`
	Category      string  `json:"category"`
	LocationType  string  `json:"location_type"`
	Location      *int    `json:"location"`
	Note          *string `json:"note"`
	HighlightedAt string  `json:"highlighted_at"`
	HighlightURL  *string `json:"highlight_url"`
	ImageURL      string  `json:"image_url,omitempty"`
}

// CreateHighlightsRequest is the body of POST highlights/
type CreateHighlightsRequest struct {
	Highlights []HighlightInput `json:"highlights"`
}

// ValidateToken checks if a token is valid by calling the auth endpoint
func (c *Client) ValidateToken(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+authPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return statusError(resp.StatusCode, body)
	}

	return nil
}

// CreateHighlights pushes a batch of highlights in one request and returns
// the response body untouched. There is no retry: a failed push fails the sync.
func (c *Client) CreateHighlights(ctx context.Context, token string, highlights []HighlightInput) (json.RawMessage, error) {
	if highlights == nil {
		highlights = []HighlightInput{}
	}
	payload, err := json.Marshal(CreateHighlightsRequest{Highlights: highlights})
	if err != nil {
		return nil, fmt.Errorf("failed to encode highlights: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+highlightsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, body)
	}

	return json.RawMessage(body), nil
}
