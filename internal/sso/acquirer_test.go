package sso

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests step through the cache's validity window.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTokenServer returns a token endpoint that counts exchanges and issues
// tok-1, tok-2, ... with the given expires_in (omitted when zero).
func newTokenServer(t *testing.T, expiresIn int, exchanges *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "insights-client", r.PostForm.Get("client_id"))
		assert.Equal(t, "insights-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "api.console", r.PostForm.Get("scope"))

		n := exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if expiresIn > 0 {
			fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":%d}`, n, expiresIn)
		} else {
			fmt.Fprintf(w, `{"access_token":"tok-%d"}`, n)
		}
	}))
}

func newTestAcquirer(url string, clock *fakeClock) *Acquirer {
	return NewAcquirer(url, "insights-client", "insights-secret", "api.console", WithClock(clock.Now))
}

func TestTokenCaching(t *testing.T) {
	t.Run("second call within validity window reuses the token", func(t *testing.T) {
		var exchanges atomic.Int64
		srv := newTokenServer(t, 300, &exchanges)
		defer srv.Close()

		clock := newFakeClock()
		a := newTestAcquirer(srv.URL, clock)

		first, err := a.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", first)

		second, err := a.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", second)
		assert.Equal(t, int64(1), exchanges.Load())
	})

	t.Run("expires_in 120 caches for 60 seconds", func(t *testing.T) {
		var exchanges atomic.Int64
		srv := newTokenServer(t, 120, &exchanges)
		defer srv.Close()

		clock := newFakeClock()
		a := newTestAcquirer(srv.URL, clock)

		_, err := a.Token(context.Background())
		require.NoError(t, err)

		clock.Advance(30 * time.Second)
		tok, err := a.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", tok)
		assert.Equal(t, int64(1), exchanges.Load())

		clock.Advance(31 * time.Second)
		tok, err = a.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-2", tok)
		assert.Equal(t, int64(2), exchanges.Load())
	})

	t.Run("missing expires_in falls back to the default lifetime", func(t *testing.T) {
		var exchanges atomic.Int64
		srv := newTokenServer(t, 0, &exchanges)
		defer srv.Close()

		clock := newFakeClock()
		a := newTestAcquirer(srv.URL, clock)

		_, err := a.Token(context.Background())
		require.NoError(t, err)

		// default 300s minus the 60s buffer
		clock.Advance(239 * time.Second)
		tok, err := a.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", tok)

		clock.Advance(2 * time.Second)
		tok, err = a.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-2", tok)
	})
}

func TestTokenConcurrentRefresh(t *testing.T) {
	var exchanges atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		time.Sleep(20 * time.Millisecond)
		fmt.Fprint(w, `{"access_token":"shared","expires_in":300}`)
	}))
	defer srv.Close()

	clock := newFakeClock()
	a := newTestAcquirer(srv.URL, clock)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := a.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "shared", tok)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), exchanges.Load())
}

func TestTokenFailure(t *testing.T) {
	t.Run("error status surfaces status and body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_client"}`)
		}))
		defer srv.Close()

		a := newTestAcquirer(srv.URL, newFakeClock())
		_, err := a.Token(context.Background())
		require.Error(t, err)

		var acquireErr *AcquireError
		require.ErrorAs(t, err, &acquireErr)
		assert.Equal(t, http.StatusUnauthorized, acquireErr.StatusCode)
		assert.Contains(t, acquireErr.Body, "invalid_client")
	})

	t.Run("unreachable endpoint reports a transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		a := newTestAcquirer(srv.URL, newFakeClock())
		_, err := a.Token(context.Background())
		require.Error(t, err)

		var acquireErr *AcquireError
		require.ErrorAs(t, err, &acquireErr)
		assert.Zero(t, acquireErr.StatusCode)
	})

	t.Run("failure does not poison the cache", func(t *testing.T) {
		var fail atomic.Bool
		fail.Store(true)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if fail.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, `{"access_token":"recovered","expires_in":300}`)
		}))
		defer srv.Close()

		a := newTestAcquirer(srv.URL, newFakeClock())
		_, err := a.Token(context.Background())
		require.Error(t, err)

		fail.Store(false)
		tok, err := a.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "recovered", tok)
	})
}
