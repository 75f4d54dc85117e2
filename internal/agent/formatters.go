package agent

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mark3labs/mcp-go/mcp"
)

const maxDescriptionWidth = 72

// newTable creates a table with the standard styling.
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

// truncate shortens a string to width characters with an ellipsis.
func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

// firstLine cuts a description down to its first line.
func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// formatToolsTable renders the cached tool list.
func formatToolsTable(tools []mcp.Tool) string {
	t := newTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("TOOL"),
		text.FgHiCyan.Sprint("DESCRIPTION"),
	})
	for _, tool := range tools {
		t.AppendRow(table.Row{
			tool.Name,
			truncate(firstLine(tool.Description), maxDescriptionWidth),
		})
	}
	return t.Render()
}

// formatScopesTable renders the tool-to-scope mapping reported by the
// server's list_tool_scopes tool.
func formatScopesTable(toolScopes map[string]string) string {
	names := make([]string, 0, len(toolScopes))
	for name := range toolScopes {
		names = append(names, name)
	}
	sort.Strings(names)

	t := newTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("TOOL"),
		text.FgHiCyan.Sprint("REQUIRED SCOPE"),
	})
	for _, name := range names {
		t.AppendRow(table.Row{name, toolScopes[name]})
	}
	return t.Render()
}

// formatToolDetail renders one tool's description and input schema.
func formatToolDetail(tool mcp.Tool) string {
	out := fmt.Sprintf("%s\n\n%s\n", text.FgHiWhite.Sprint(tool.Name), tool.Description)
	schema, err := json.MarshalIndent(tool.InputSchema, "", "  ")
	if err == nil && len(schema) > 0 {
		out += fmt.Sprintf("\nInput schema:\n%s\n", string(schema))
	}
	return out
}

// prettyJSON re-indents a JSON document for display. Non-JSON text is
// returned unchanged.
func prettyJSON(raw string) string {
	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return raw
	}
	pretty, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return raw
	}
	return string(pretty)
}
