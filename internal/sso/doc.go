// Package sso obtains and caches a service-level bearer token from the
// Red Hat SSO token endpoint using the OAuth2 client-credentials grant.
//
// The Acquirer owns its cache: a token is reused until 60 seconds before
// its real expiry, then renewed with a single form-encoded exchange.
// Concurrent callers observing a stale cache share one in-flight exchange
// instead of each performing their own.
package sso
