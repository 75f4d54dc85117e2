// Package eda exposes the Event-Driven Ansible controller API as MCP
// tools. Unlike the AAP adapter there is no per-caller token gate: the
// adapter authenticates to EDA with a single service token and forwards
// tool calls directly.
package eda
