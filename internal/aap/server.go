package aap

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"redmcp/internal/config"
	"redmcp/internal/tokenauth"
	"redmcp/pkg/logging"
)

const ServerName = "ansible-automation-platform"

// Server is the AAP MCP tool server. It owns the controller client, the
// inbound token verifier, and the table binding each tool to its required
// scope.
type Server struct {
	name    string
	version string

	cfg      *config.AAP
	client   *Client
	verifier *tokenauth.Verifier

	mcpServer *server.MCPServer

	// scopes is populated as tools register and answers the
	// list_tool_scopes introspection tool. Registration is the only
	// writer, so enforcement and reporting cannot drift apart.
	scopes []tokenauth.ToolScope
}

// NewServer creates the AAP tool server and registers its tools.
func NewServer(cfg *config.AAP, version string) *Server {
	s := &Server{
		name:     ServerName,
		version:  version,
		cfg:      cfg,
		client:   NewClient(cfg.URL, cfg.Token),
		verifier: tokenauth.NewVerifier([]byte(cfg.Auth.JWTSecret), cfg.Auth.ServerURI, cfg.Auth.AuthServerURI, cfg.Auth.Leeway),
	}

	s.mcpServer = server.NewMCPServer(s.name, s.version,
		server.WithToolCapabilities(true),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for transport wiring.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ToolScopes returns the tool-to-scope bindings in registration order.
func (s *Server) ToolScopes() []tokenauth.ToolScope {
	return s.scopes
}

// authedHandler runs after the caller has been verified and authorized.
type authedHandler func(ctx context.Context, request mcp.CallToolRequest, cred *tokenauth.Credential) (*mcp.CallToolResult, error)

// addTool registers a tool behind the verify-then-authorize gate and
// records its scope binding. Auth failures are rendered into the tool
// result, not returned as protocol errors, so the calling agent can read
// the structured denial and act on it.
func (s *Server) addTool(tool mcp.Tool, requiredScope string, handler authedHandler) {
	s.scopes = append(s.scopes, tokenauth.ToolScope{
		Name:          tool.Name,
		RequiredScope: requiredScope,
		Description:   tool.Description,
	})

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cred, err := s.verifier.VerifyContext(ctx)
		if err != nil {
			logging.Warn("AAP", "Rejected call to %s: %v", tool.Name, err)
			return jsonResult(tokenauth.FailureEnvelope(err))
		}

		if err := s.verifier.Authorize(cred, requiredScope); err != nil {
			logging.Info("AAP", "Denied %s for %s (needs %s)", tool.Name, cred.Email, requiredScope)
			return jsonResult(tokenauth.FailureEnvelope(err))
		}

		logging.Debug("AAP", "User %s calling %s", cred.Email, tool.Name)
		return handler(ctx, request, cred)
	})
}

// callAPI runs one controller request and shapes the outcome into a tool
// result, tagging successes with the caller's identity. Controller errors
// degrade to the plain failure envelope.
func (s *Server) callAPI(cred *tokenauth.Credential, call func() (interface{}, error)) (*mcp.CallToolResult, error) {
	result, err := call()
	if err != nil {
		return jsonResult(tokenauth.FailureEnvelope(err))
	}
	return jsonResult(annotate(result, cred))
}

// annotate stamps the authenticated caller onto a successful result.
// Non-object results are wrapped so the stamp has somewhere to live.
func annotate(result interface{}, cred *tokenauth.Credential) interface{} {
	if m, ok := result.(map[string]interface{}); ok {
		m["authenticated_user"] = cred.Email
		return m
	}
	return map[string]interface{}{
		"data":               result,
		"authenticated_user": cred.Email,
	}
}

// jsonResult renders any value as an indented JSON text result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// objectArg extracts an optional object argument from the request.
func objectArg(request mcp.CallToolRequest, key string) map[string]interface{} {
	if v, ok := request.GetArguments()[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}
