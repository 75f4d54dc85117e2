package cmd

import (
	"fmt"

	"redmcp/internal/aap"
	"redmcp/internal/config"
	"redmcp/internal/tokenauth"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// newScopesCmd creates the command that prints the AAP tool-to-scope
// mapping. The table comes from the same registration data the server
// enforces, so it cannot drift from runtime behavior.
func newScopesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scopes",
		Short: "Show the scope each AAP tool requires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// registration is offline, no credentials needed
			s := aap.NewServer(&config.AAP{Token: "unused"}, GetVersion())

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{
				text.FgHiCyan.Sprint("TOOL"),
				text.FgHiCyan.Sprint("REQUIRED SCOPE"),
				text.FgHiCyan.Sprint("PERMITS"),
			})
			for _, ts := range s.ToolScopes() {
				scope := ts.RequiredScope
				if scope == "" {
					scope = "none"
				}
				t.AppendRow(table.Row{ts.Name, scope, ts.ScopeDescription()})
			}
			t.Render()

			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "Available scopes:")
			for _, scope := range tokenauth.AvailableScopes() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %s\n", scope, tokenauth.DescribeScope(scope))
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newScopesCmd())
}
