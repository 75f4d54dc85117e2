package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"redmcp/internal/sso"
)

const defaultHTTPTimeout = 30 * time.Second

// APIError reports a console API response outside the 2xx range.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.StatusCode, e.Body)
}

// Client is a REST client for the console APIs. Each request fetches a
// bearer token from the acquirer, which caches and renews it as needed.
type Client struct {
	baseURL    string
	tokens     *sso.Acquirer
	httpClient *http.Client
}

// NewClient creates a client for the console APIs rooted at baseURL.
func NewClient(baseURL string, tokens *sso.Acquirer) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Do performs one authenticated API request. JSON responses decode into
// generic values, anything else (playbooks, exports) comes back as the
// raw body string.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, payload interface{}) (interface{}, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to console failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") && len(raw) > 0 {
		var decoded interface{}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return decoded, nil
	}

	return string(raw), nil
}

// Get fetches a resource, optionally with query parameters.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (interface{}, error) {
	return c.Do(ctx, http.MethodGet, path, params, nil)
}

// Post creates a resource.
func (c *Client) Post(ctx context.Context, path string, payload interface{}) (interface{}, error) {
	return c.Do(ctx, http.MethodPost, path, nil, payload)
}

// Patch updates a resource or association.
func (c *Client) Patch(ctx context.Context, path string) (interface{}, error) {
	return c.Do(ctx, http.MethodPatch, path, nil, nil)
}

// Delete removes a resource.
func (c *Client) Delete(ctx context.Context, path string) (interface{}, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}
