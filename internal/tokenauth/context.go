package tokenauth

import (
	"context"
	"net/http"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// authorizationKey is the context key under which the raw Authorization
// header of the current tool call is stored.
const authorizationKey contextKey = "authorization_header"

// ContextWithAuthorization creates a context carrying the raw Authorization
// header value for the current request.
func ContextWithAuthorization(ctx context.Context, header string) context.Context {
	return context.WithValue(ctx, authorizationKey, header)
}

// AuthorizationFromContext retrieves the raw Authorization header from the
// context. Returns the header and true if present, or empty string and
// false if no header was captured for this request.
func AuthorizationFromContext(ctx context.Context) (string, bool) {
	header, ok := ctx.Value(authorizationKey).(string)
	return header, ok && header != ""
}

// HTTPContextFunc captures the Authorization header of an incoming HTTP
// request into the request context. It is installed on the streamable-HTTP
// MCP transport so tool handlers can verify the caller's credential.
func HTTPContextFunc(ctx context.Context, r *http.Request) context.Context {
	return ContextWithAuthorization(ctx, r.Header.Get("Authorization"))
}
