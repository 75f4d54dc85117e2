// Package insights exposes the Red Hat Insights console APIs as MCP
// tools. Outbound authentication uses a service account: every request
// carries a bearer token obtained through the client-credentials grant
// and cached by the sso package.
//
// API errors (a 4xx or 5xx from the console) are reported inside tool
// results. Token-acquisition failures are different: without a token no
// request can be attempted, so they propagate as call errors.
package insights
