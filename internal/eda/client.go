package eda

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
)

const defaultHTTPTimeout = 30 * time.Second

// APIError reports an EDA API response outside the 2xx range.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.StatusCode, e.Body)
}

// Client is a thin REST client for the EDA API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the EDA API rooted at baseURL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Do performs one API request with optional query parameters and JSON
// payload. JSON responses decode into generic values, anything else comes
// back as the raw body string.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, payload interface{}) (interface{}, error) {
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
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to EDA failed: %w", err)
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

// Get fetches a resource.
func (c *Client) Get(ctx context.Context, path string) (interface{}, error) {
	return c.Do(ctx, http.MethodGet, path, nil, nil)
}

// GetWithParams fetches a resource with query parameters.
func (c *Client) GetWithParams(ctx context.Context, path string, params url.Values) (interface{}, error) {
	return c.Do(ctx, http.MethodGet, path, params, nil)
}

// Post creates a resource or triggers an action.
func (c *Client) Post(ctx context.Context, path string, payload interface{}) (interface{}, error) {
	return c.Do(ctx, http.MethodPost, path, nil, payload)
}

// Delete removes a resource.
func (c *Client) Delete(ctx context.Context, path string) (interface{}, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}
