// Package aap exposes the Ansible Automation Platform controller API as a
// set of MCP tools behind bearer-token authentication.
//
// Every tool call passes through the same gate: the caller's token is
// verified (signature, audience, issuer, expiry) and then checked against
// the tool's required scope. Authentication and authorization failures are
// reported inside the tool result so the calling agent can read the denial
// and request an upgrade, rather than as protocol errors that abort the
// conversation.
package aap
