package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses the Microsoft identity platform (OIDC) for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains Microsoft identity platform configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	TenantID     string `env:"TENANT_ID"     envDefault:"common"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email User.Read"`
	// IssuerURL overrides the issuer derived from TenantID; useful for tests.
	IssuerURL string `env:"ISSUER_URL"`
	GraphURL  string `env:"GRAPH_URL"`
}

// Issuer returns the OIDC issuer, derived from the tenant when no explicit
// override is set.
func (o OAuthConfig) Issuer() string {
	if o.IssuerURL != "" {
		return o.IssuerURL
	}
	return "https://login.microsoftonline.com/" + o.TenantID + "/v2.0"
}

// DevAuthConfig controls the mock/dev identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID        string        `env:"USER_ID"        envDefault:"dev-user"`
	DisplayName   string        `env:"DISPLAY_NAME"   envDefault:"Dev User"`
	Email         string        `env:"EMAIL"          envDefault:"dev@example.com"`
	TokenDuration time.Duration `env:"TOKEN_DURATION" envDefault:"1h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// SessionTTL bounds how long a stored session stays valid.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// Validate checks that the selected mode has what it needs.
func (a AuthConfig) Validate() error {
	if a.Mode == AuthModeOAuth {
		if a.OAuth.ClientID == "" {
			return fmt.Errorf("OAUTH_CLIENT_ID is required when AUTH_MODE=oauth")
		}
		if a.OAuth.ClientSecret == "" {
			return fmt.Errorf("OAUTH_CLIENT_SECRET is required when AUTH_MODE=oauth")
		}
	}
	return nil
}
