package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDenial(endpoint string) string {
	return fmt.Sprintf(`{
		"success": false,
		"error_type": "insufficient_scope",
		"error": "Insufficient scope. Required: manage:ansible",
		"required_scope": "manage:ansible",
		"user_scopes": ["read:ansible", "execute:ansible"],
		"scope_upgrade_endpoint": %q,
		"scope_description": "Create and delete projects, templates, and inventories",
		"upgrade_instructions": "Use the scope_upgrade_endpoint to request additional permissions",
		"upgrade_example": {
			"method": "POST",
			"url": %q,
			"headers": {"Content-Type": "application/json"},
			"body": {"scopes": ["manage:ansible"]}
		}
	}`, endpoint, endpoint)
}

func TestParseScopeDenial(t *testing.T) {
	t.Run("denial payload", func(t *testing.T) {
		denial, ok := ParseScopeDenial(sampleDenial("http://localhost:8002/api/upgrade-scope"))
		require.True(t, ok)
		assert.Equal(t, "manage:ansible", denial.RequiredScope)
		assert.Equal(t, []string{"read:ansible", "execute:ansible"}, denial.UserScopes)
		assert.Equal(t, "http://localhost:8002/api/upgrade-scope", denial.ScopeUpgradeEndpoint)
		assert.Equal(t, []string{"manage:ansible"}, denial.UpgradeExample.Body.Scopes)
	})

	t.Run("plain failure envelope", func(t *testing.T) {
		_, ok := ParseScopeDenial(`{"success": false, "error": "token expired"}`)
		assert.False(t, ok)
	})

	t.Run("ordinary result", func(t *testing.T) {
		_, ok := ParseScopeDenial(`{"count": 3, "results": []}`)
		assert.False(t, ok)
	})

	t.Run("non-json text", func(t *testing.T) {
		_, ok := ParseScopeDenial("Error 502: upstream unavailable")
		assert.False(t, ok)
	})
}

func TestRequestUpgrade(t *testing.T) {
	var gotMethod, gotAuth, gotContentType string
	var gotBody map[string]interface{}
	authority := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "upgraded-token"}`)
	}))
	defer authority.Close()

	denial, ok := ParseScopeDenial(sampleDenial(authority.URL + "/api/upgrade-scope"))
	require.True(t, ok)

	client := &http.Client{Timeout: 5 * time.Second}
	token, err := denial.RequestUpgrade(context.Background(), client, "old-token")
	require.NoError(t, err)

	assert.Equal(t, "upgraded-token", token)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer old-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, []interface{}{"manage:ansible"}, gotBody["scopes"])
}

func TestRequestUpgradeRejected(t *testing.T) {
	authority := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "upgrade not permitted")
	}))
	defer authority.Close()

	denial, ok := ParseScopeDenial(sampleDenial(authority.URL + "/api/upgrade-scope"))
	require.True(t, ok)

	client := &http.Client{Timeout: 5 * time.Second}
	_, err := denial.RequestUpgrade(context.Background(), client, "old-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "upgrade not permitted")
}

func TestRequestUpgradeNoToken(t *testing.T) {
	authority := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status": "ok"}`)
	}))
	defer authority.Close()

	denial, ok := ParseScopeDenial(sampleDenial(authority.URL + "/api/upgrade-scope"))
	require.True(t, ok)

	client := &http.Client{Timeout: 5 * time.Second}
	_, err := denial.RequestUpgrade(context.Background(), client, "old-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token")
}
