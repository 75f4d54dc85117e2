// Package tokenauth implements the inbound bearer-token authentication and
// scope-authorization layer shared by the protected tool servers.
//
// Verification and authorization are stateless: every tool call presents an
// Authorization header, the Verifier checks signature, expiry (with
// clock-skew leeway), audience, and issuer, and the scope gate checks the
// operation's required capability against the scopes granted to the
// credential. A failed scope check is not a bare rejection: it produces a
// ScopeDenial whose payload tells the calling agent exactly which request
// to send to the authority to obtain the missing scope.
//
// Per-call flow:
//
//	Unauthenticated → Verify → Authenticated → Authorize → {Permitted, Denied}
//
// No state crosses calls.
package tokenauth
