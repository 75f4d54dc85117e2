package aap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redmcp/internal/config"
	"redmcp/internal/tokenauth"
)

const (
	testSecret   = "demo-secret-key-change-in-production"
	testAudience = "http://localhost:8001"
	testIssuer   = "http://localhost:8002"
)

func mintToken(t *testing.T, scope string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "alice@example.com",
		"aud":   testAudience,
		"iss":   testIssuer,
		"scope": scope,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// newTestServer wires the tool server to a fake controller and connects an
// in-process MCP client to it.
func newTestServer(t *testing.T, controller http.Handler) *client.Client {
	t.Helper()

	backend := httptest.NewServer(controller)
	t.Cleanup(backend.Close)

	cfg := &config.AAP{
		Auth: config.Auth{
			JWTSecret:     testSecret,
			ServerURI:     testAudience,
			AuthServerURI: testIssuer,
		},
		URL:   backend.URL,
		Token: "controller-token",
	}

	s := NewServer(cfg, "1.0.0")
	c, err := client.NewInProcessClient(s.MCPServer())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.Start(context.Background()))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "0.0.1"}
	_, err = c.Initialize(context.Background(), initReq)
	require.NoError(t, err)

	return c
}

// callTool invokes a tool and decodes its JSON text result.
func callTool(t *testing.T, c *client.Client, ctx context.Context, name string, args map[string]interface{}) map[string]interface{} {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	if args != nil {
		req.Params.Arguments = args
	}

	result, err := c.CallTool(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func authedContext(t *testing.T, scope string) context.Context {
	return tokenauth.ContextWithAuthorization(context.Background(), "Bearer "+mintToken(t, scope))
}

func TestAuthenticationGate(t *testing.T) {
	c := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("controller must not be reached without credentials")
	}))

	t.Run("missing token fails inside the result", func(t *testing.T) {
		result := callTool(t, c, context.Background(), "list_inventories", nil)
		assert.Equal(t, false, result["success"])
		assert.Equal(t, tokenauth.ErrMissingCredential.Error(), result["error"])
	})

	t.Run("garbage token fails inside the result", func(t *testing.T) {
		ctx := tokenauth.ContextWithAuthorization(context.Background(), "Bearer not-a-jwt")
		result := callTool(t, c, ctx, "list_inventories", nil)
		assert.Equal(t, false, result["success"])
		assert.Equal(t, tokenauth.ErrMalformedCredential.Error(), result["error"])
	})
}

func TestScopeGate(t *testing.T) {
	c := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("controller must not be reached without the required scope")
	}))

	t.Run("denial is structured and self-remediating", func(t *testing.T) {
		result := callTool(t, c, authedContext(t, "read:ansible"), "run_job", map[string]interface{}{
			"template_id": 7,
		})

		assert.Equal(t, false, result["success"])
		assert.Equal(t, "insufficient_scope", result["error_type"])
		assert.Equal(t, "execute:ansible", result["required_scope"])
		assert.Equal(t, []interface{}{"read:ansible"}, result["user_scopes"])
		assert.Equal(t, testIssuer+"/api/upgrade-scope", result["scope_upgrade_endpoint"])

		example, ok := result["upgrade_example"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "POST", example["method"])
		body, ok := example["body"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, []interface{}{"execute:ansible"}, body["scopes"])
	})

	t.Run("manage tool denied for execute scope", func(t *testing.T) {
		result := callTool(t, c, authedContext(t, "execute:ansible"), "delete_inventory", map[string]interface{}{
			"inventory_id": 3,
		})
		assert.Equal(t, "manage:ansible", result["required_scope"])
	})
}

func TestReadTools(t *testing.T) {
	var gotPath, gotAuth string
	c := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 2, "results": [{"id": 1}, {"id": 2}]}`))
	}))

	t.Run("list_inventories forwards with the service token", func(t *testing.T) {
		result := callTool(t, c, authedContext(t, "read:ansible"), "list_inventories", nil)

		assert.Equal(t, "/inventories/", gotPath)
		assert.Equal(t, "Bearer controller-token", gotAuth)
		assert.Equal(t, "alice@example.com", result["authenticated_user"])
		assert.Equal(t, float64(2), result["count"])
	})

	t.Run("job_status targets the job resource", func(t *testing.T) {
		result := callTool(t, c, authedContext(t, "read:ansible"), "job_status", map[string]interface{}{
			"job_id": 42,
		})
		assert.Equal(t, "/jobs/42/", gotPath)
		assert.Equal(t, "alice@example.com", result["authenticated_user"])
	})

	t.Run("get_inventory uses the string identifier", func(t *testing.T) {
		callTool(t, c, authedContext(t, "read:ansible"), "get_inventory", map[string]interface{}{
			"inventory_id": "17",
		})
		assert.Equal(t, "/inventories/17/", gotPath)
	})
}

func TestJobLogs(t *testing.T) {
	c := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("PLAY RECAP *** ok=3"))
	}))

	result := callTool(t, c, authedContext(t, "read:ansible"), "job_logs", map[string]interface{}{
		"job_id": 9,
	})

	assert.Equal(t, float64(9), result["job_id"])
	assert.Equal(t, "PLAY RECAP *** ok=3", result["logs"])
	assert.Equal(t, "alice@example.com", result["authenticated_user"])
}

func TestRunJob(t *testing.T) {
	var gotPayload map[string]interface{}
	c := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"job": 101, "status": "pending"}`))
	}))

	result := callTool(t, c, authedContext(t, "execute:ansible"), "run_job", map[string]interface{}{
		"template_id": 7,
		"extra_vars":  map[string]interface{}{"target": "web"},
	})

	assert.Equal(t, map[string]interface{}{"target": "web"}, gotPayload["extra_vars"])
	assert.Equal(t, float64(101), result["job"])
	assert.Equal(t, float64(7), result["template_id"])
	assert.Equal(t, "alice@example.com", result["authenticated_user"])
}

func TestCreateInventorySourceValidation(t *testing.T) {
	c := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid source type must not reach the controller")
	}))

	result := callTool(t, c, authedContext(t, "manage:ansible"), "create_inventory_source", map[string]interface{}{
		"name":          "bad-source",
		"inventory_id":  1,
		"source":        "carrier-pigeon",
		"credential_id": 5,
	})

	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "Invalid source type 'carrier-pigeon'")
	assert.Equal(t, "alice@example.com", result["authenticated_user"])
}

func TestControllerErrorShaping(t *testing.T) {
	c := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))

	result := callTool(t, c, authedContext(t, "read:ansible"), "list_jobs", nil)

	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "Error 502")
	assert.Contains(t, result["error"], "upstream unavailable")
}

func TestInfoTools(t *testing.T) {
	c := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	t.Run("get_server_info works with any valid token", func(t *testing.T) {
		result := callTool(t, c, authedContext(t, ""), "get_server_info", nil)
		assert.Equal(t, ServerName, result["server_name"])
		assert.Equal(t, "alice@example.com", result["authenticated_user"])
	})

	t.Run("get_oauth_metadata reports the unified scopes", func(t *testing.T) {
		result := callTool(t, c, authedContext(t, "read:ansible"), "get_oauth_metadata", nil)
		assert.Equal(t, []interface{}{"read:ansible", "execute:ansible", "manage:ansible"}, result["scopes_supported"])
		assert.Equal(t, []interface{}{testIssuer}, result["authorization_servers"])
	})

	t.Run("health_check reports configured backend", func(t *testing.T) {
		result := callTool(t, c, authedContext(t, ""), "health_check", nil)
		assert.Equal(t, "healthy", result["status"])
		assert.Equal(t, "configured", result["aap_connection"])
	})

	t.Run("list_tool_scopes mirrors the registration table", func(t *testing.T) {
		result := callTool(t, c, authedContext(t, ""), "list_tool_scopes", nil)

		mapping, ok := result["tool_scope_mapping"].(map[string]interface{})
		require.True(t, ok)
		assert.Len(t, mapping, 26)
		assert.Equal(t, float64(26), result["total_tools"])

		runJob, ok := mapping["run_job"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "execute:ansible", runJob["required_scope"])

		info, ok := mapping["get_server_info"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "none", info["required_scope"])
		assert.Equal(t, "Any valid token (no specific scope required)", info["scope_description"])
	})
}

func TestToolScopesOrdering(t *testing.T) {
	cfg := &config.AAP{
		Auth:  config.Auth{JWTSecret: testSecret, ServerURI: testAudience, AuthServerURI: testIssuer},
		URL:   "https://aap.example.com/api/controller/v2",
		Token: "controller-token",
	}
	s := NewServer(cfg, "1.0.0")

	scopes := s.ToolScopes()
	require.Len(t, scopes, 26)
	assert.Equal(t, "list_inventories", scopes[0].Name)
	assert.Equal(t, tokenauth.ScopeRead, scopes[0].RequiredScope)
	assert.Equal(t, "list_tool_scopes", scopes[len(scopes)-1].Name)
	assert.Equal(t, "", scopes[len(scopes)-1].RequiredScope)
}
