package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"redmcp/internal/agent"

	"github.com/spf13/cobra"
)

var (
	agentEndpoint string
	agentToken    string
	agentVerbose  bool
	agentNoColor  bool
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Interactive MCP client for the tool servers",
	Long: `The agent command connects to a tool server over streamable HTTP and
starts an interactive REPL.

Inside the REPL you can list and call tools, inspect the scope each
tool requires, and show the current token's claims. When a call is
denied for insufficient scope, the 'upgrade' command replays the
denial's embedded upgrade request against the authority and reconnects
with the re-issued token.

The bearer token is taken from --token, falling back to the MCP_TOKEN
environment variable.`,
	Args: cobra.NoArgs,
	RunE: runAgent,
}

func runAgent(cmd *cobra.Command, args []string) error {
	token := agentToken
	if token == "" {
		token = os.Getenv("MCP_TOKEN")
	}

	logger := agent.NewLogger(agentVerbose, !agentNoColor)
	client := agent.NewClient(agentEndpoint, token, GetVersion(), logger)
	repl := agent.NewREPL(client, logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return repl.Run(ctx)
}

func init() {
	agentCmd.Flags().StringVar(&agentEndpoint, "endpoint", "http://localhost:8001/mcp",
		"Tool server endpoint URL")
	agentCmd.Flags().StringVar(&agentToken, "token", "",
		"Bearer token (defaults to MCP_TOKEN)")
	agentCmd.Flags().BoolVarP(&agentVerbose, "verbose", "v", false,
		"Enable verbose output")
	agentCmd.Flags().BoolVar(&agentNoColor, "no-color", false,
		"Disable colored output")

	rootCmd.AddCommand(agentCmd)
}
