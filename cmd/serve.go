package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"redmcp/internal/aap"
	"redmcp/internal/config"
	"redmcp/internal/eda"
	"redmcp/internal/insights"
	"redmcp/internal/tokenauth"
	"redmcp/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// Supported transports for the serve subcommands.
const (
	transportStreamableHTTP = "streamable-http"
	transportSSE            = "sse"
	transportStdio          = "stdio"
)

const shutdownTimeout = 5 * time.Second

var (
	serveTransport string
	serveListen    string
	serveDebug     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start one of the MCP tool servers",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if serveDebug {
			level = logging.LevelDebug
		}
		// stdout belongs to the stdio transport
		logging.Init(level, os.Stderr)
	},
	Long: `Starts an MCP tool server for one of the supported backends.

Transports:
  streamable-http (default)  HTTP transport; the AAP server reads the
                             caller's Authorization header from it
  sse                        Server-Sent Events transport
  stdio                      stdio transport for direct embedding; AAP
                             tool calls are denied without a bearer
                             token, so this mainly suits eda/insights`,
}

func newServeAAPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aap",
		Short: "Serve the Ansible Automation Platform tools",
		Long: `Serves the AAP controller API as MCP tools. Every call must carry a
bearer token; tools are gated by read:ansible, execute:ansible, or
manage:ansible scopes. Requires AAP_TOKEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAAP()
			if err != nil {
				return err
			}
			s := aap.NewServer(cfg, GetVersion())
			return serveMCP(cmd.Context(), aap.ServerName, s.MCPServer())
		},
	}
}

func newServeEDACmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eda",
		Short: "Serve the Event-Driven Ansible tools",
		Long: `Serves the EDA API as MCP tools. Calls are forwarded with the
configured service token. Requires EDA_TOKEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadEDA()
			if err != nil {
				return err
			}
			s := eda.NewServer(cfg, GetVersion())
			return serveMCP(cmd.Context(), eda.ServerName, s.MCPServer())
		},
	}
}

func newServeInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Serve the Red Hat Insights tools",
		Long: `Serves the Insights console APIs as MCP tools. Outbound requests
authenticate with a service account through the client-credentials
grant. Requires INSIGHTS_CLIENT_ID and INSIGHTS_CLIENT_SECRET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadInsights()
			if err != nil {
				return err
			}
			s := insights.NewServer(cfg, GetVersion())
			return serveMCP(cmd.Context(), insights.ServerName, s.MCPServer())
		},
	}
}

// serveMCP runs an MCP server on the selected transport until the
// process receives an interrupt.
func serveMCP(ctx context.Context, name string, mcpServer *server.MCPServer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	switch serveTransport {
	case transportStreamableHTTP:
		logging.Info("Serve", "Starting %s with streamable-http transport on %s", name, serveListen)
		httpServer := server.NewStreamableHTTPServer(mcpServer,
			server.WithHTTPContextFunc(tokenauth.HTTPContextFunc),
		)
		go func() {
			if err := httpServer.Start(serveListen); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
		select {
		case err := <-errCh:
			return fmt.Errorf("streamable HTTP server error: %w", err)
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)

	case transportSSE:
		logging.Info("Serve", "Starting %s with SSE transport on %s", name, serveListen)
		sseServer := server.NewSSEServer(mcpServer,
			server.WithSSEContextFunc(tokenauth.HTTPContextFunc),
			server.WithKeepAlive(true),
			server.WithKeepAliveInterval(30*time.Second),
		)
		go func() {
			if err := sseServer.Start(serveListen); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
		select {
		case err := <-errCh:
			return fmt.Errorf("SSE server error: %w", err)
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return sseServer.Shutdown(shutdownCtx)

	case transportStdio:
		logging.Info("Serve", "Starting %s with stdio transport", name)
		stdioServer := server.NewStdioServer(mcpServer)
		return stdioServer.Listen(ctx, os.Stdin, os.Stdout)

	default:
		return fmt.Errorf("unknown transport %q (expected %s, %s, or %s)",
			serveTransport, transportStreamableHTTP, transportSSE, transportStdio)
	}
}

func init() {
	serveCmd.PersistentFlags().StringVar(&serveTransport, "transport", transportStreamableHTTP,
		"MCP transport: streamable-http, sse, or stdio")
	serveCmd.PersistentFlags().StringVar(&serveListen, "listen", ":8001",
		"Listen address for HTTP transports")
	serveCmd.PersistentFlags().BoolVar(&serveDebug, "debug", false,
		"Enable debug logging")

	serveCmd.AddCommand(newServeAAPCmd())
	serveCmd.AddCommand(newServeEDACmd())
	serveCmd.AddCommand(newServeInsightsCmd())

	rootCmd.AddCommand(serveCmd)
}
