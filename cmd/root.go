package cmd

import (
	"errors"
	"os"

	"redmcp/internal/config"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeConfig indicates the configuration could not be loaded,
	// usually a missing mandatory credential.
	ExitCodeConfig = 2
)

// rootCmd is the base command for the redmcp application.
var rootCmd = &cobra.Command{
	Use:   "redmcp",
	Short: "Scope-gated MCP tool servers for the Red Hat automation APIs",
	Long: `redmcp serves the Ansible Automation Platform, Event-Driven Ansible,
and Red Hat Insights APIs as MCP tool servers, and ships an interactive
agent to drive them.

The AAP server verifies a bearer token on every call and gates each
tool behind a scope; denied calls return a structured payload the agent
can use to request elevated scopes from the authority.`,
	// SilenceUsage keeps error output clean for handled failures.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from main to
// inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a semantic code on
// failure.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "redmcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types onto exit codes for scripting.
func getExitCode(err error) int {
	var loadErr *config.LoadError
	if errors.As(err, &loadErr) {
		return ExitCodeConfig
	}
	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
