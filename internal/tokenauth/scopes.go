package tokenauth

import "fmt"

// The capability scopes recognized by the protected tool servers. One
// naming scheme everywhere: the same constants drive enforcement, the
// scope-description table, and the OAuth metadata reported to callers.
const (
	// ScopeRead grants read-only access to Ansible resources.
	ScopeRead = "read:ansible"

	// ScopeExecute grants execution of Ansible operations.
	ScopeExecute = "execute:ansible"

	// ScopeManage grants creation, modification, and deletion of Ansible
	// resources.
	ScopeManage = "manage:ansible"
)

// scopeDescriptions is the single source of truth for what each scope
// permits. Consulted by the scope gate when building denials and by the
// introspection surfaces (list_tool_scopes, the scopes CLI command).
var scopeDescriptions = map[string]string{
	ScopeRead:    "Read access to Ansible resources (inventories, job templates, jobs)",
	ScopeExecute: "Execute Ansible operations (run jobs, sync inventory sources)",
	ScopeManage:  "Create, update, and delete Ansible resources (projects, templates, inventories)",
}

// AvailableScopes returns the recognized scopes in escalation order.
func AvailableScopes() []string {
	return []string{ScopeRead, ScopeExecute, ScopeManage}
}

// DescribeScope returns the human-readable description for a scope,
// falling back to a generic description for unknown scopes.
func DescribeScope(scope string) string {
	if desc, ok := scopeDescriptions[scope]; ok {
		return desc
	}
	return fmt.Sprintf("Access to %s", scope)
}

// ToolScope binds one tool to the scope it requires. An empty
// RequiredScope means any valid token may invoke the tool.
//
// Adapters declare their tools as an ordered []ToolScope and use it both
// to register handlers (enforcement) and to answer scope-introspection
// requests (reporting), so the two can never drift apart.
type ToolScope struct {
	Name          string
	RequiredScope string
	Description   string
}

// ScopeDescription returns the description of the tool's required scope,
// or the any-valid-token wording for ungated tools.
func (t ToolScope) ScopeDescription() string {
	if t.RequiredScope == "" {
		return "Any valid token (no specific scope required)"
	}
	return DescribeScope(t.RequiredScope)
}
