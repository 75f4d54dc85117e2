// Package logging provides subsystem-tagged structured logging for all
// redmcp components, backed by log/slog.
//
// Every log call names the subsystem that emitted it ("TokenAuth", "SSO",
// "AAP", ...) so a single process serving multiple adapters stays
// greppable. Output goes to stderr by default because the stdio MCP
// transport owns stdout.
package logging
