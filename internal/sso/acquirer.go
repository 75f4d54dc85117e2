package sso

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"redmcp/pkg/logging"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultHTTPTimeout bounds every token exchange.
	DefaultHTTPTimeout = 30 * time.Second

	// expiryBuffer is subtracted from the server-provided lifetime so a
	// cached token is never handed out within 60 seconds of real expiry.
	expiryBuffer = 60 * time.Second

	// defaultTTL is assumed when the authority omits expires_in.
	defaultTTL = 300 * time.Second
)

// AcquireError reports a failed client-credentials exchange. StatusCode is
// zero when the exchange never produced an HTTP response (transport error
// or timeout).
type AcquireError struct {
	StatusCode int
	Body       string
}

func (e *AcquireError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("failed to get access token: %s", e.Body)
	}
	return fmt.Sprintf("failed to get access token: %d %s", e.StatusCode, e.Body)
}

// tokenResponse is the authority's token endpoint response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Acquirer performs client-credentials exchanges against a token endpoint
// and caches the resulting bearer token until shortly before expiry.
// It is safe for concurrent use.
type Acquirer struct {
	tokenURL     string
	clientID     string
	clientSecret string
	scope        string

	httpClient *http.Client
	now        func() time.Time

	// group deduplicates concurrent refreshes: callers that observe a
	// stale cache wait for the one in-flight exchange instead of racing
	// their own.
	group singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// Option configures the Acquirer.
type Option func(*Acquirer)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(a *Acquirer) {
		a.httpClient = httpClient
	}
}

// WithClock overrides the time source. Used by tests to step through the
// cache's validity window.
func WithClock(now func() time.Time) Option {
	return func(a *Acquirer) {
		a.now = now
	}
}

// NewAcquirer creates an Acquirer for the given token endpoint and client
// credentials.
func NewAcquirer(tokenURL, clientID, clientSecret, scope string, opts ...Option) *Acquirer {
	a := &Acquirer{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		scope:        scope,
		httpClient:   &http.Client{Timeout: DefaultHTTPTimeout},
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Token returns a bearer token that is valid for at least the expiry
// buffer. The cached token is returned without network traffic while it is
// fresh; otherwise one client-credentials exchange renews it.
func (a *Acquirer) Token(ctx context.Context) (string, error) {
	if token, ok := a.cached(); ok {
		return token, nil
	}

	result, err, _ := a.group.Do("token", func() (interface{}, error) {
		// Double-check after winning the flight: a concurrent caller may
		// have refreshed while this one was queued.
		if token, ok := a.cached(); ok {
			return token, nil
		}
		return a.refresh(ctx)
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// cached returns the cached token if it is still within its validity
// window.
func (a *Acquirer) cached() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.now().Before(a.expiresAt) {
		return a.token, true
	}
	return "", false
}

// refresh performs one client-credentials exchange and stores the result.
func (a *Acquirer) refresh(ctx context.Context) (string, error) {
	data := url.Values{
		"grant_type":    {"client_credentials"},
		"scope":         {a.scope},
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", &AcquireError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AcquireError{Body: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		logging.Debug("SSO", "Token exchange failed with status %d", resp.StatusCode)
		return "", &AcquireError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", &AcquireError{StatusCode: resp.StatusCode, Body: fmt.Sprintf("invalid token response: %v", err)}
	}

	ttl := defaultTTL
	if tr.ExpiresIn > 0 {
		ttl = time.Duration(tr.ExpiresIn) * time.Second
	}

	a.mu.Lock()
	a.token = tr.AccessToken
	a.expiresAt = a.now().Add(ttl - expiryBuffer)
	a.mu.Unlock()

	logging.Debug("SSO", "Acquired service token (valid for %s)", ttl-expiryBuffer)
	return tr.AccessToken, nil
}
