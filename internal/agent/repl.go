package agent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/google/uuid"
)

// commandExecutionTimeout bounds individual REPL command execution.
const commandExecutionTimeout = 5 * time.Minute

const historyFileName = ".redmcp_agent_history"

// errExit signals a clean shutdown from the exit command.
var errExit = errors.New("exit")

// transcriptEntry records one tool call for the export command.
type transcriptEntry struct {
	When   time.Time
	Tool   string
	Args   string
	Result string
}

// REPL is the interactive agent loop.
type REPL struct {
	client     *Client
	logger     *Logger
	httpClient *http.Client
	sessionID  string

	rl         *readline.Instance
	lastDenial *ScopeDenial
	transcript []transcriptEntry
}

// NewREPL creates a REPL around a connected or not-yet-connected client.
func NewREPL(client *Client, logger *Logger) *REPL {
	return &REPL{
		client:     client,
		logger:     logger,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sessionID:  uuid.New().String(),
	}
}

// buildPrompt derives the prompt from the connected server's name.
func (r *REPL) buildPrompt() string {
	name := r.client.ServerInfo().Name
	if name == "" {
		return "redmcp> "
	}
	return fmt.Sprintf("redmcp (%s)> ", name)
}

// createCompleter builds tab completion for commands and tool names.
func (r *REPL) createCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("tools"),
		readline.PcItem("describe", readline.PcItemDynamic(r.toolNames)),
		readline.PcItem("call", readline.PcItemDynamic(r.toolNames)),
		readline.PcItem("scopes"),
		readline.PcItem("upgrade"),
		readline.PcItem("token"),
		readline.PcItem("export"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

// toolNames feeds the dynamic completers.
func (r *REPL) toolNames(string) []string {
	tools := r.client.Tools()
	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name
	}
	return names
}

// filterInput filters input characters for readline
func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// Run connects, then processes commands until exit, Ctrl+D, or context
// cancellation.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.client.Connect(ctx); err != nil {
		return err
	}
	defer r.client.Close()

	if err := r.client.RefreshTools(ctx); err != nil {
		return err
	}

	config := &readline.Config{
		Prompt:          r.buildPrompt(),
		HistoryFile:     filepath.Join(os.TempDir(), historyFileName),
		AutoComplete:    r.createCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	info := r.client.ServerInfo()
	r.logger.Info("Connected to %s %s (session %s)", info.Name, info.Version, r.sessionID)
	r.logger.Info("Type 'help' for available commands. Use TAB for completion.")
	fmt.Println()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Shutting down...")
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			r.logger.Info("Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if err := r.executeCommand(input); err != nil {
			if errors.Is(err, errExit) {
				r.logger.Info("Goodbye!")
				return nil
			}
			r.logger.Error("Error: %v", err)
		}

		fmt.Println()
	}
}

// executeCommand parses one input line and dispatches it.
func (r *REPL) executeCommand(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]
	if command == "?" {
		command = "help"
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandExecutionTimeout)
	defer cancel()

	switch command {
	case "help":
		r.printHelp()
		return nil
	case "tools":
		return r.cmdTools(ctx)
	case "describe":
		return r.cmdDescribe(args)
	case "call":
		return r.cmdCall(ctx, args)
	case "scopes":
		return r.cmdScopes(ctx)
	case "upgrade":
		return r.cmdUpgrade(ctx, args)
	case "token":
		return r.cmdToken()
	case "export":
		return r.cmdExport()
	case "exit", "quit":
		return errExit
	default:
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", parts[0])
	}
}

func (r *REPL) printHelp() {
	r.logger.OutputLine("Available commands:")
	r.logger.OutputLine("  help                      Show this help")
	r.logger.OutputLine("  tools                     List the server's tools")
	r.logger.OutputLine("  describe <tool>           Show a tool's description and input schema")
	r.logger.OutputLine("  call <tool> [json-args]   Call a tool, e.g. call run_job {\"template_id\": 7}")
	r.logger.OutputLine("  scopes                    Show which scope each tool requires")
	r.logger.OutputLine("  upgrade [scope...]        Request elevated scopes after a denial and reconnect")
	r.logger.OutputLine("  token                     Show the current token's claims")
	r.logger.OutputLine("  export                    Write the session transcript to a markdown file")
	r.logger.OutputLine("  exit                      Leave the agent")
}

func (r *REPL) cmdTools(ctx context.Context) error {
	if err := r.client.RefreshTools(ctx); err != nil {
		return err
	}
	tools := r.client.Tools()
	if len(tools) == 0 {
		r.logger.OutputLine("No tools available")
		return nil
	}
	r.logger.OutputLine("%s", formatToolsTable(tools))
	r.logger.OutputLine("%d tools", len(tools))
	return nil
}

func (r *REPL) cmdDescribe(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: describe <tool>")
	}
	tool, ok := r.client.Tool(args[0])
	if !ok {
		return fmt.Errorf("unknown tool: %s", args[0])
	}
	r.logger.Output("%s", formatToolDetail(tool))
	return nil
}

// parseCallArgs decodes the optional JSON object following the tool
// name on a call line.
func parseCallArgs(raw string) (map[string]interface{}, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return args, nil
}

func (r *REPL) cmdCall(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: call <tool> [json-args]")
	}
	name := args[0]
	toolArgs, err := parseCallArgs(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + name
	s.Start()
	result, err := r.client.CallTool(ctx, name, toolArgs)
	s.Stop()
	if err != nil {
		return fmt.Errorf("tool call failed: %w", err)
	}

	text := ResultText(result)
	r.transcript = append(r.transcript, transcriptEntry{
		When:   time.Now(),
		Tool:   name,
		Args:   strings.Join(args[1:], " "),
		Result: text,
	})

	if denial, ok := ParseScopeDenial(text); ok {
		r.lastDenial = denial
		r.logger.Output("%s\n", prettyJSON(text))
		r.logger.Warn("Denied: this tool requires scope %q (you have: %s)",
			denial.RequiredScope, strings.Join(denial.UserScopes, " "))
		r.logger.Warn("Type 'upgrade' to request it from %s", denial.ScopeUpgradeEndpoint)
		return nil
	}

	r.logger.Output("%s\n", prettyJSON(text))
	if result.IsError {
		r.logger.Warn("Tool reported an error")
	}
	return nil
}

func (r *REPL) cmdScopes(ctx context.Context) error {
	result, err := r.client.CallTool(ctx, "list_tool_scopes", nil)
	if err != nil {
		return fmt.Errorf("this server does not expose scope information: %w", err)
	}

	var report struct {
		Mapping map[string]struct {
			RequiredScope string `json:"required_scope"`
		} `json:"tool_scope_mapping"`
		UserScopes []string `json:"user_scopes"`
	}
	if err := json.Unmarshal([]byte(ResultText(result)), &report); err != nil {
		return fmt.Errorf("failed to decode scope report: %w", err)
	}
	if len(report.Mapping) == 0 {
		r.logger.OutputLine("No scope information reported")
		return nil
	}

	toolScopes := make(map[string]string, len(report.Mapping))
	for name, entry := range report.Mapping {
		toolScopes[name] = entry.RequiredScope
	}
	r.logger.OutputLine("%s", formatScopesTable(toolScopes))
	if len(report.UserScopes) > 0 {
		r.logger.OutputLine("Your scopes: %s", strings.Join(report.UserScopes, " "))
	}
	return nil
}

func (r *REPL) cmdUpgrade(ctx context.Context, args []string) error {
	if r.lastDenial == nil {
		return fmt.Errorf("no scope denial recorded yet; call a gated tool first")
	}

	denial := *r.lastDenial
	if len(args) > 0 {
		denial.UpgradeExample.Body.Scopes = args
	}
	scopes := denial.UpgradeExample.Body.Scopes
	if len(scopes) == 0 {
		scopes = []string{denial.RequiredScope}
	}

	r.logger.Info("Requesting scopes %s from %s", strings.Join(scopes, " "), denial.ScopeUpgradeEndpoint)
	token, err := denial.RequestUpgrade(ctx, r.httpClient, r.client.Token())
	if err != nil {
		return err
	}

	r.logger.Success("Upgrade granted, reconnecting with the new token")
	if err := r.client.Reconnect(ctx, token); err != nil {
		return fmt.Errorf("reconnect with upgraded token failed: %w", err)
	}
	r.lastDenial = nil
	r.rl.SetPrompt(r.buildPrompt())
	return nil
}

func (r *REPL) cmdToken() error {
	token := r.client.Token()
	if token == "" {
		r.logger.OutputLine("No token configured")
		return nil
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		r.logger.OutputLine("Token (opaque): %s", truncate(token, 24))
		return nil
	}
	claims, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return fmt.Errorf("failed to decode token claims: %w", err)
	}
	r.logger.OutputLine("Claims:")
	r.logger.OutputLine("%s", prettyJSON(string(claims)))
	return nil
}

func (r *REPL) cmdExport() error {
	if len(r.transcript) == 0 {
		return fmt.Errorf("nothing to export yet")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Session %s\n\n", r.sessionID)
	for _, entry := range r.transcript {
		fmt.Fprintf(&b, "## %s: call %s\n\n", entry.When.Format(time.RFC3339), entry.Tool)
		if entry.Args != "" {
			fmt.Fprintf(&b, "Arguments:\n\n```json\n%s\n```\n\n", entry.Args)
		}
		fmt.Fprintf(&b, "Result:\n\n```\n%s\n```\n\n", entry.Result)
	}

	filename := fmt.Sprintf("chat_export_%s.md", time.Now().Format("20060102_150405"))
	if err := os.WriteFile(filename, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	r.logger.Success("Exported %d entries to %s", len(r.transcript), filename)
	return nil
}
