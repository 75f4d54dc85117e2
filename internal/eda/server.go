package eda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"redmcp/internal/config"
	"redmcp/pkg/logging"
)

const ServerName = "eda"

// Server is the EDA MCP tool server.
type Server struct {
	version   string
	client    *Client
	mcpServer *server.MCPServer
}

// NewServer creates the EDA tool server and registers its tools.
func NewServer(cfg *config.EDA, version string) *Server {
	s := &Server{
		version: version,
		client:  NewClient(cfg.URL, cfg.Token),
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

// forward shapes an EDA API outcome into a tool result. API errors are
// reported inside the result so the calling agent sees status and body.
func forward(call func() (interface{}, error)) (*mcp.CallToolResult, error) {
	result, err := call()
	if err != nil {
		return mcp.NewToolResultText(err.Error()), nil
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

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_activations",
		mcp.WithDescription("List all activations in Event-Driven Ansible"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/activations/")
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("get_activation",
		mcp.WithDescription("Get details of a specific activation"),
		mcp.WithNumber("activation_id",
			mcp.Required(),
			mcp.Description("ID of the activation"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		activationID, err := request.RequireInt("activation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, fmt.Sprintf("/activations/%d/", activationID))
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("create_activation",
		mcp.WithDescription("Create a new activation"),
		mcp.WithObject("payload",
			mcp.Required(),
			mcp.Description("Activation definition passed through to EDA"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, ok := request.GetArguments()["payload"].(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("payload must be an object"), nil
		}
		logging.Debug("EDA", "Creating activation %v", payload["name"])
		return forward(func() (interface{}, error) {
			return s.client.Post(ctx, "/activations/", payload)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("disable_activation",
		mcp.WithDescription("Disable an activation"),
		mcp.WithNumber("activation_id",
			mcp.Required(),
			mcp.Description("ID of the activation to disable"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		activationID, err := request.RequireInt("activation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Post(ctx, fmt.Sprintf("/activations/%d/disable/", activationID), nil)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("enable_activation",
		mcp.WithDescription("Enable an activation"),
		mcp.WithNumber("activation_id",
			mcp.Required(),
			mcp.Description("ID of the activation to enable"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		activationID, err := request.RequireInt("activation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Post(ctx, fmt.Sprintf("/activations/%d/enable/", activationID), nil)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("restart_activation",
		mcp.WithDescription("Restart an activation"),
		mcp.WithNumber("activation_id",
			mcp.Required(),
			mcp.Description("ID of the activation to restart"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		activationID, err := request.RequireInt("activation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Post(ctx, fmt.Sprintf("/activations/%d/restart/", activationID), nil)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("delete_activation",
		mcp.WithDescription("Delete an activation"),
		mcp.WithNumber("activation_id",
			mcp.Required(),
			mcp.Description("ID of the activation to delete"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		activationID, err := request.RequireInt("activation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Delete(ctx, fmt.Sprintf("/activations/%d/", activationID))
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("list_decision_environments",
		mcp.WithDescription("List all decision environments"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/decision-environments/")
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("create_decision_environment",
		mcp.WithDescription("Create a new decision environment"),
		mcp.WithObject("payload",
			mcp.Required(),
			mcp.Description("Decision environment definition passed through to EDA"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, ok := request.GetArguments()["payload"].(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("payload must be an object"), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Post(ctx, "/decision-environments/", payload)
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("list_rulebooks",
		mcp.WithDescription("List all rulebooks in EDA"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/rulebooks/")
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("get_rulebook",
		mcp.WithDescription("Retrieve details of a specific rulebook"),
		mcp.WithNumber("rulebook_id",
			mcp.Required(),
			mcp.Description("ID of the rulebook"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rulebookID, err := request.RequireInt("rulebook_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, fmt.Sprintf("/rulebooks/%d/", rulebookID))
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("list_event_streams",
		mcp.WithDescription("List all event streams"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/event-streams/")
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("list_rule_audits",
		mcp.WithDescription("List all rule audits"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, "/audit-rules/")
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("get_rule_audit",
		mcp.WithDescription("Get the audit of a specific rule"),
		mcp.WithNumber("rule_audit_id",
			mcp.Required(),
			mcp.Description("ID of the audited rule"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		auditID, err := request.RequireInt("rule_audit_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return forward(func() (interface{}, error) {
			return s.client.Get(ctx, fmt.Sprintf("/audit-rules/%d", auditID))
		})
	})

	s.mcpServer.AddTool(mcp.NewTool("get_rule_activation_audit",
		mcp.WithDescription("Get the audit of a specific rule activation"),
		mcp.WithNumber("activation_id",
			mcp.Required(),
			mcp.Description("ID of the activation instance"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		activationID, err := request.RequireInt("activation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		params := url.Values{"activation_instance_id": {strconv.Itoa(activationID)}}
		return forward(func() (interface{}, error) {
			return s.client.GetWithParams(ctx, "/audit-rules/", params)
		})
	})
}
