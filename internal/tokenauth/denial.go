package tokenauth

import (
	"errors"
	"fmt"
)

// UpgradeScopePath is the authority's well-known scope-upgrade endpoint,
// relative to the issuer URI.
const UpgradeScopePath = "/api/upgrade-scope"

// upgradeInstructions is the fixed hint included in every denial payload.
const upgradeInstructions = "Use the scope_upgrade_endpoint to request additional permissions"

// ScopeDenial is returned by Authorize when a credential lacks the required
// scope. It is a typed error, not a serialized blob: handlers extract it
// with errors.As and render the payload once, at the tool boundary.
type ScopeDenial struct {
	// RequiredScope is the scope the operation demands.
	RequiredScope string

	// GrantedScopes are the scopes the credential actually carries, in
	// claim order.
	GrantedScopes []string

	// Description is the human-readable explanation of what RequiredScope
	// permits.
	Description string

	// UpgradeEndpoint is the authority URL that issues elevated credentials.
	UpgradeEndpoint string
}

// Error implements the error interface.
func (d *ScopeDenial) Error() string {
	return fmt.Sprintf("insufficient scope: required %s", d.RequiredScope)
}

// UpgradeExample is the exact HTTP request an agent can replay to obtain
// the missing scope.
type UpgradeExample struct {
	Method  string             `json:"method"`
	URL     string             `json:"url"`
	Headers map[string]string  `json:"headers"`
	Body    UpgradeRequestBody `json:"body"`
}

// UpgradeRequestBody is the body of a scope-upgrade request.
type UpgradeRequestBody struct {
	Scopes []string `json:"scopes"`
}

// DenialPayload is the wire form of a scope denial, embedded in the tool
// result envelope. It is designed to be consumed programmatically: an
// agent that receives it has everything needed to self-escalate.
type DenialPayload struct {
	Success              bool           `json:"success"`
	ErrorType            string         `json:"error_type"`
	Error                string         `json:"error"`
	RequiredScope        string         `json:"required_scope"`
	UserScopes           []string       `json:"user_scopes"`
	ScopeUpgradeEndpoint string         `json:"scope_upgrade_endpoint"`
	ScopeDescription     string         `json:"scope_description"`
	UpgradeInstructions  string         `json:"upgrade_instructions"`
	UpgradeExample       UpgradeExample `json:"upgrade_example"`
}

// ErrorTypeInsufficientScope identifies a denial payload among tool
// results.
const ErrorTypeInsufficientScope = "insufficient_scope"

// Payload renders the denial in its wire form.
func (d *ScopeDenial) Payload() DenialPayload {
	return DenialPayload{
		Success:              false,
		ErrorType:            ErrorTypeInsufficientScope,
		Error:                fmt.Sprintf("Insufficient scope. Required: %s", d.RequiredScope),
		RequiredScope:        d.RequiredScope,
		UserScopes:           d.GrantedScopes,
		ScopeUpgradeEndpoint: d.UpgradeEndpoint,
		ScopeDescription:     d.Description,
		UpgradeInstructions:  upgradeInstructions,
		UpgradeExample: UpgradeExample{
			Method:  "POST",
			URL:     d.UpgradeEndpoint,
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    UpgradeRequestBody{Scopes: []string{d.RequiredScope}},
		},
	}
}

// FailurePayload is the generic success-shaped failure envelope for
// authentication errors that carry no upgrade path.
type FailurePayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// FailureEnvelope converts an authentication or authorization error into
// the payload embedded in a tool result. Authorization failures keep their
// structured, self-remediating form; everything else degrades to a plain
// success:false envelope so the agent loop can inspect it without the
// transport call erroring.
func FailureEnvelope(err error) interface{} {
	var denial *ScopeDenial
	if errors.As(err, &denial) {
		return denial.Payload()
	}
	return FailurePayload{Success: false, Error: err.Error()}
}
