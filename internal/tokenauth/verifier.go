package tokenauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"redmcp/pkg/logging"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLeeway is the default clock-skew tolerance applied to the expiry
// claim. Six hours is generous on purpose: demo and lab environments run
// with badly drifted clocks. Production deployments should tighten it via
// configuration.
const DefaultLeeway = 6 * time.Hour

// Sentinel errors for the verification taxonomy. All of them surface to the
// caller as an authentication failure; callers that need to distinguish use
// errors.Is.
var (
	// ErrMissingCredential indicates the Authorization header was absent or
	// did not use the bearer scheme.
	ErrMissingCredential = errors.New("missing or invalid Authorization header")

	// ErrMalformedCredential indicates the token could not be parsed or its
	// signature did not verify against the configured secret.
	ErrMalformedCredential = errors.New("invalid token")

	// ErrExpiredCredential indicates the token's expiry has passed beyond
	// the configured leeway.
	ErrExpiredCredential = errors.New("token expired")

	// ErrAudienceMismatch indicates the token was issued for a different
	// resource server.
	ErrAudienceMismatch = errors.New("invalid audience")

	// ErrIssuerMismatch indicates the token was issued by an untrusted
	// authority.
	ErrIssuerMismatch = errors.New("invalid issuer")
)

// Credential is the verified identity presented by a caller. It exists only
// for the duration of one request's verification and is never mutated.
type Credential struct {
	// Subject is the unique user identifier (sub claim).
	Subject string

	// Email is the user's email address (email claim).
	Email string

	// Issuer is the authority that issued the token.
	Issuer string

	// Audience is the resource server the token was issued for.
	Audience string

	// ExpiresAt is the token's expiry instant.
	ExpiresAt time.Time

	// Scopes are the granted capability strings, in the order they appear
	// in the space-delimited scope claim.
	Scopes []string
}

// HasScope reports whether the credential grants the given scope.
func (c *Credential) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// claims is the wire shape of an inbound token.
type claims struct {
	Email string `json:"email"`
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Verifier validates inbound bearer credentials against a shared signing
// secret and this server's identity. It performs no I/O and is safe for
// concurrent use.
type Verifier struct {
	secret   []byte
	audience string
	issuer   string
	parser   *jwt.Parser
}

// NewVerifier creates a Verifier.
//
//   - secret: the symmetric signing secret shared with the authority.
//   - audience: this server's own canonical URI; tokens must name it in aud.
//   - issuer: the trusted authority URI; tokens must name it in iss.
//   - leeway: clock-skew tolerance for the expiry check; DefaultLeeway when
//     zero or negative.
//
// Only HS256 is accepted. Tokens signed with any other algorithm fail as
// malformed, which closes the usual algorithm-confusion hole.
func NewVerifier(secret []byte, audience, issuer string, leeway time.Duration) *Verifier {
	if leeway <= 0 {
		leeway = DefaultLeeway
	}
	return &Verifier{
		secret:   secret,
		audience: audience,
		issuer:   issuer,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithLeeway(leeway),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify validates the raw Authorization header of one tool call and
// returns the decoded credential.
//
// Audience and issuer are deliberately not delegated to the parser: they
// are re-checked explicitly after decoding so a mismatch always produces
// ErrAudienceMismatch or ErrIssuerMismatch rather than a generic decode
// failure.
func (v *Verifier) Verify(authorizationHeader string) (*Credential, error) {
	if authorizationHeader == "" || !strings.HasPrefix(authorizationHeader, "Bearer ") {
		return nil, ErrMissingCredential
	}
	raw := strings.TrimPrefix(authorizationHeader, "Bearer ")

	var c claims
	_, err := v.parser.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logging.Debug("TokenAuth", "Rejected expired token")
			return nil, fmt.Errorf("%w: %v", ErrExpiredCredential, err)
		}
		logging.Debug("TokenAuth", "Rejected malformed token: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	aud := firstAudience(c.Audience)
	if aud != v.audience {
		logging.Debug("TokenAuth", "Audience mismatch: expected %s, got %s", v.audience, aud)
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrAudienceMismatch, v.audience, aud)
	}

	if c.Issuer != v.issuer {
		logging.Debug("TokenAuth", "Issuer mismatch: expected %s, got %s", v.issuer, c.Issuer)
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrIssuerMismatch, v.issuer, c.Issuer)
	}

	cred := &Credential{
		Subject:  c.Subject,
		Email:    c.Email,
		Issuer:   c.Issuer,
		Audience: aud,
		Scopes:   strings.Fields(c.Scope),
	}
	if c.ExpiresAt != nil {
		cred.ExpiresAt = c.ExpiresAt.Time
	}

	logging.Debug("TokenAuth", "Token validated for user %s (scopes: %s)", cred.Email, c.Scope)
	return cred, nil
}

// VerifyContext verifies the Authorization header captured in the request
// context by the HTTP transport.
func (v *Verifier) VerifyContext(ctx context.Context) (*Credential, error) {
	header, _ := AuthorizationFromContext(ctx)
	return v.Verify(header)
}

// Authorize checks that the credential grants requiredScope. An empty
// requiredScope means any valid token is sufficient.
//
// On failure the returned error is a *ScopeDenial carrying the structured
// upgrade payload; callers surface it to the agent instead of treating it
// as terminal.
func (v *Verifier) Authorize(cred *Credential, requiredScope string) error {
	if requiredScope == "" {
		return nil
	}
	if cred.HasScope(requiredScope) {
		logging.Debug("TokenAuth", "Scope check passed for %s (required: %s)", cred.Email, requiredScope)
		return nil
	}

	logging.Info("TokenAuth", "Scope check failed for %s: required %s, granted %v",
		cred.Email, requiredScope, cred.Scopes)
	return &ScopeDenial{
		RequiredScope:   requiredScope,
		GrantedScopes:   cred.Scopes,
		Description:     DescribeScope(requiredScope),
		UpgradeEndpoint: strings.TrimSuffix(v.issuer, "/") + UpgradeScopePath,
	}
}

// firstAudience returns the audience to compare against. Tokens from the
// authority carry a single aud value; a multi-valued aud never names this
// server exactly and is treated as its first element for the error message.
func firstAudience(aud jwt.ClaimStrings) string {
	if len(aud) == 0 {
		return ""
	}
	return aud[0]
}
