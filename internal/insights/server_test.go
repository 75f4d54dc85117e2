package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redmcp/internal/sso"
)

type testBackend struct {
	sso       *httptest.Server
	console   *httptest.Server
	exchanges atomic.Int64
}

// newTestClient wires the tool server to a fake SSO token endpoint and a
// fake console API, then connects an in-process MCP client.
func newTestClient(t *testing.T, console http.Handler) (*client.Client, *testBackend) {
	t.Helper()

	b := &testBackend{}
	b.sso = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "api.console", r.PostForm.Get("scope"))
		b.exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"console-token","expires_in":300}`)
	}))
	t.Cleanup(b.sso.Close)

	b.console = httptest.NewServer(console)
	t.Cleanup(b.console.Close)

	acquirer := sso.NewAcquirer(b.sso.URL, "svc-account", "svc-secret", "api.console")
	s := NewServerWithClient(NewClient(b.console.URL, acquirer), "1.0.0")

	c, err := client.NewInProcessClient(s.MCPServer())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.Start(context.Background()))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "0.0.1"}
	_, err = c.Initialize(context.Background(), initReq)
	require.NoError(t, err)

	return c, b
}

func callToolText(t *testing.T, c *client.Client, name string, args map[string]interface{}) string {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	if args != nil {
		req.Params.Arguments = args
	}

	result, err := c.CallTool(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestServiceTokenFlow(t *testing.T) {
	var gotAuth string
	var requests atomic.Int64
	c, b := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total": 0, "results": []}`)
	}))

	callToolText(t, c, "list_systems", nil)
	callToolText(t, c, "list_integrations", nil)

	assert.Equal(t, "Bearer console-token", gotAuth)
	assert.Equal(t, int64(2), requests.Load())
	// both calls share one cached exchange
	assert.Equal(t, int64(1), b.exchanges.Load())
}

func TestListSystems(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total": 3}`)
	}))

	t.Run("defaults", func(t *testing.T) {
		callToolText(t, c, "list_systems", nil)
		assert.Equal(t, "limit=50&offset=0", gotQuery)
	})

	t.Run("filters", func(t *testing.T) {
		callToolText(t, c, "list_systems", map[string]interface{}{
			"limit":     10,
			"staleness": "fresh",
		})
		assert.Equal(t, "limit=10&offset=0&staleness=fresh", gotQuery)
	})
}

func TestSystemProfileFields(t *testing.T) {
	var gotURL string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results": []}`)
	}))

	callToolText(t, c, "get_system_profile", map[string]interface{}{
		"system_id": "abc-123",
		"fields":    []interface{}{"os_release", "arch"},
	})

	assert.Contains(t, gotURL, "/inventory/v1/hosts/abc-123/system_profile")
	assert.Contains(t, gotURL, "os_release")
	assert.Contains(t, gotURL, "arch")
}

func TestCreatePolicy(t *testing.T) {
	var gotPayload map[string]interface{}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": "p-1"}`)
	}))

	callToolText(t, c, "create_policy", map[string]interface{}{
		"name":        "x86 only",
		"description": "flag non-x86 hosts",
		"conditions":  `arch = "x86_64"`,
	})

	assert.Equal(t, "x86 only", gotPayload["name"])
	assert.Equal(t, "notification", gotPayload["actions"])
	assert.Equal(t, true, gotPayload["isEnabled"])
}

func TestCreateRemediation(t *testing.T) {
	var gotPayload map[string]interface{}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "r-1"}`)
	}))

	callToolText(t, c, "create_remediation", map[string]interface{}{
		"name": "patch kernel",
		"issues": []interface{}{
			map[string]interface{}{"id": "advisor:kernel_panic", "resolution": "fix"},
		},
	})

	assert.Equal(t, "patch kernel", gotPayload["name"])
	add, ok := gotPayload["add"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, add["issues"], 1)
}

func TestConsoleErrorShaping(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "missing permission")
	}))

	text := callToolText(t, c, "get_vulnerability_executive_report", nil)
	assert.Equal(t, "Error 403: missing permission", text)
}

func TestTokenFailurePropagates(t *testing.T) {
	ssoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	}))
	defer ssoSrv.Close()

	acquirer := sso.NewAcquirer(ssoSrv.URL, "svc-account", "bad-secret", "api.console")
	s := NewServerWithClient(NewClient("http://console.invalid", acquirer), "1.0.0")

	c, err := client.NewInProcessClient(s.MCPServer())
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start(context.Background()))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "0.0.1"}
	_, err = c.Initialize(context.Background(), initReq)
	require.NoError(t, err)

	req := mcp.CallToolRequest{}
	req.Params.Name = "list_systems"
	result, err := c.CallTool(context.Background(), req)

	// the failure surfaces as a call error, not a shaped result
	if err == nil {
		require.NotNil(t, result)
		require.True(t, result.IsError)
		text, ok := mcp.AsTextContent(result.Content[0])
		require.True(t, ok)
		assert.Contains(t, text.Text, "failed to get access token")
	} else {
		assert.Contains(t, err.Error(), "failed to get access token")
	}
}

func TestToolInventory(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	result, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)
	assert.Len(t, result.Tools, 34)
}
