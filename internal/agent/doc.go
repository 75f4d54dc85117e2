// Package agent implements the interactive REPL that drives the tool
// servers over MCP. It connects to a streamable-HTTP endpoint with a
// bearer token, lists and calls tools, and renders results on the
// terminal.
//
// The REPL understands the insufficient_scope envelope the tool servers
// emit on authorization failures: when a call is denied it records the
// embedded upgrade request, and the upgrade command replays it against
// the authority to obtain an elevated token, then reconnects with it.
package agent
