package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// Client wraps the streamable-HTTP MCP client. The bearer token rides
// along as an Authorization header on every request; Reconnect swaps it
// for an upgraded one without losing the session state the REPL holds.
type Client struct {
	endpoint string
	token    string
	version  string
	logger   *Logger

	mu         sync.RWMutex
	mcp        *client.Client
	serverInfo mcp.Implementation
	toolCache  []mcp.Tool
}

// NewClient creates a client for the given endpoint. The token may be
// empty for servers that do not gate calls.
func NewClient(endpoint, token, version string, logger *Logger) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		version:  version,
		logger:   logger,
	}
}

// Connect establishes the transport and performs the protocol handshake.
func (c *Client) Connect(ctx context.Context) error {
	var opts []transport.StreamableHTTPCOption
	if c.token != "" {
		opts = append(opts, transport.WithHTTPHeaders(map[string]string{
			"Authorization": "Bearer " + c.token,
		}))
	}

	mcpClient, err := client.NewStreamableHttpClient(c.endpoint, opts...)
	if err != nil {
		return fmt.Errorf("failed to create MCP client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "redmcp-agent",
		Version: c.version,
	}

	initResult, err := mcpClient.Initialize(ctx, initReq)
	if err != nil {
		mcpClient.Close()
		return fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	c.mu.Lock()
	c.mcp = mcpClient
	c.serverInfo = initResult.ServerInfo
	c.mu.Unlock()

	c.logger.Debug("Connected to %s (server: %s %s)",
		c.endpoint, initResult.ServerInfo.Name, initResult.ServerInfo.Version)
	return nil
}

// Reconnect drops the current session and opens a new one with the
// given token. Used after a scope upgrade.
func (c *Client) Reconnect(ctx context.Context, token string) error {
	c.Close()
	c.token = token
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.RefreshTools(ctx)
}

// Close shuts down the transport.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mcp != nil {
		c.mcp.Close()
		c.mcp = nil
	}
}

// Token returns the bearer token currently in use.
func (c *Client) Token() string {
	return c.token
}

// ServerInfo returns the implementation info from the handshake.
func (c *Client) ServerInfo() mcp.Implementation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverInfo
}

// RefreshTools fetches the tool list and updates the local cache.
func (c *Client) RefreshTools(ctx context.Context) error {
	c.mu.RLock()
	mcpClient := c.mcp
	c.mu.RUnlock()
	if mcpClient == nil {
		return fmt.Errorf("not connected")
	}

	result, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}

	tools := make([]mcp.Tool, len(result.Tools))
	copy(tools, result.Tools)
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	c.mu.Lock()
	c.toolCache = tools
	c.mu.Unlock()

	c.logger.Debug("Cached %d tools", len(tools))
	return nil
}

// Tools returns the cached tool list.
func (c *Client) Tools() []mcp.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tools := make([]mcp.Tool, len(c.toolCache))
	copy(tools, c.toolCache)
	return tools
}

// Tool looks up a cached tool by name.
func (c *Client) Tool(name string) (mcp.Tool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, tool := range c.toolCache {
		if tool.Name == name {
			return tool, true
		}
	}
	return mcp.Tool{}, false
}

// CallTool invokes a tool with the given arguments.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	c.mu.RLock()
	mcpClient := c.mcp
	c.mu.RUnlock()
	if mcpClient == nil {
		return nil, fmt.Errorf("not connected")
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	if args != nil {
		req.Params.Arguments = args
	}

	return mcpClient.CallTool(ctx, req)
}

// ResultText concatenates the text content of a tool result.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var parts []string
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
