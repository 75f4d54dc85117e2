package insights

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"redmcp/internal/config"
	"redmcp/internal/sso"
)

const ServerName = "insights"

// Server is the Insights MCP tool server.
type Server struct {
	version   string
	client    *Client
	mcpServer *server.MCPServer
}

// NewServer creates the Insights tool server and registers its tools.
func NewServer(cfg *config.Insights, version string) *Server {
	acquirer := sso.NewAcquirer(cfg.SSOURL, cfg.ClientID, cfg.ClientSecret, cfg.SSOScope)
	return NewServerWithClient(NewClient(cfg.BaseURL, acquirer), version)
}

// NewServerWithClient creates the server around an existing client. Used
// by tests to substitute the token endpoint and backend.
func NewServerWithClient(client *Client, version string) *Server {
	s := &Server{
		version: version,
		client:  client,
	}

	s.mcpServer = server.NewMCPServer(ServerName, s.version,
		server.WithToolCapabilities(true),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for transport wiring.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// forward shapes a console API outcome into a tool result. API errors
// stay inside the result; token-acquisition failures propagate, since no
// request could even be attempted.
func forward(call func() (interface{}, error)) (*mcp.CallToolResult, error) {
	result, err := call()
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return mcp.NewToolResultText(apiErr.Error()), nil
		}
		return nil, err
	}

	if text, ok := result.(string); ok {
		return mcp.NewToolResultText(text), nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// pageParams builds the limit/offset query shared by the listing tools.
func pageParams(request mcp.CallToolRequest, defaultLimit int) url.Values {
	return url.Values{
		"limit":  {strconv.Itoa(request.GetInt("limit", defaultLimit))},
		"offset": {strconv.Itoa(request.GetInt("offset", 0))},
	}
}
