// Package config loads adapter configuration from the environment.
//
// Each adapter has its own Load function so a process only validates the
// credentials it actually needs. Missing mandatory credentials fail at
// startup rather than on the first tool call.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// LoadError reports a configuration that could not be loaded, usually
// because a mandatory credential is missing from the environment.
type LoadError struct {
	Adapter string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s configuration: %v", e.Adapter, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Auth configures inbound bearer-token verification. The defaults match
// the demo auth server wiring and must be overridden in any real
// deployment.
type Auth struct {
	// JWTSecret is the shared HS256 signing secret. ENV: MCP_JWT_SECRET
	JWTSecret string `env:"MCP_JWT_SECRET,default=demo-secret-key-change-in-production"`
	// ServerURI is this server's own URI, the expected token audience.
	// ENV: MCP_SERVER_URI
	ServerURI string `env:"MCP_SERVER_URI,default=http://localhost:8001"`
	// AuthServerURI is the token authority, the expected issuer and the
	// base of the scope-upgrade endpoint. ENV: AUTH_SERVER_URI
	AuthServerURI string `env:"AUTH_SERVER_URI,default=http://localhost:8002"`
	// Leeway tolerated on token expiry. ENV: MCP_JWT_LEEWAY
	Leeway time.Duration `env:"MCP_JWT_LEEWAY,default=6h"`
}

// AAP configures the Ansible Automation Platform controller adapter.
type AAP struct {
	Auth Auth

	// URL is the controller API root. ENV: AAP_URL
	URL string `env:"AAP_URL,default=https://localhost/api/controller/v2"`
	// Token is the controller service token. ENV: AAP_TOKEN
	Token string `env:"AAP_TOKEN,required"`
}

// EDA configures the Event-Driven Ansible adapter.
type EDA struct {
	// URL is the EDA API root. ENV: EDA_URL
	URL string `env:"EDA_URL,default=https://localhost/api/eda/v1"`
	// Token is the EDA service token. ENV: EDA_TOKEN
	Token string `env:"EDA_TOKEN,required"`
}

// Insights configures the Red Hat Insights adapter and its SSO client.
type Insights struct {
	// BaseURL is the console API root. ENV: INSIGHTS_BASE_URL
	BaseURL string `env:"INSIGHTS_BASE_URL,default=https://console.redhat.com/api"`
	// ClientID is the service account client ID. ENV: INSIGHTS_CLIENT_ID
	ClientID string `env:"INSIGHTS_CLIENT_ID,required"`
	// ClientSecret is the service account secret. ENV: INSIGHTS_CLIENT_SECRET
	ClientSecret string `env:"INSIGHTS_CLIENT_SECRET,required"`
	// SSOURL is the client-credentials token endpoint. ENV: SSO_URL
	SSOURL string `env:"SSO_URL,default=https://sso.redhat.com/auth/realms/redhat-external/protocol/openid-connect/token"`
	// SSOScope is the scope requested on token exchanges. ENV: SSO_SCOPE
	SSOScope string `env:"SSO_SCOPE,default=api.console"`
}

// LoadAAP reads the AAP adapter configuration from the environment.
func LoadAAP() (*AAP, error) {
	var cfg AAP
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, &LoadError{Adapter: "AAP", Err: err}
	}
	return &cfg, nil
}

// LoadEDA reads the EDA adapter configuration from the environment.
func LoadEDA() (*EDA, error) {
	var cfg EDA
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, &LoadError{Adapter: "EDA", Err: err}
	}
	return &cfg, nil
}

// LoadInsights reads the Insights adapter configuration from the
// environment.
func LoadInsights() (*Insights, error) {
	var cfg Insights
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, &LoadError{Adapter: "Insights", Err: err}
	}
	return &cfg, nil
}
