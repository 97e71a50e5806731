package devauth

// Package devauth provides a simple, config-driven AuthProvider for local development.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/k2kurs/kursadmin/internal/domain/auth"
	"github.com/k2kurs/kursadmin/internal/ports"
)

// Config controls the dev auth provider behavior.
type Config struct {
	UserID        string
	DisplayName   string
	Email         string
	TokenDuration time.Duration // default 1h when zero
}

// Provider implements ports.AuthProvider for local development.
// It short-circuits the OAuth flow by redirecting back to our own callback
// with locally generated state and nonce. Exchange ignores the code and
// returns the configured identity.
type Provider struct {
	profile       domainauth.UserProfile
	tokenDuration time.Duration
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	displayName := cfg.DisplayName
	if displayName == "" {
		displayName = cfg.Email
	}
	dur := cfg.TokenDuration
	if dur == 0 {
		dur = time.Hour
	}
	return &Provider{
		profile: domainauth.UserProfile{
			ID:          cfg.UserID,
			DisplayName: displayName,
			Email:       cfg.Email,
		},
		tokenDuration: dur,
	}, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	// Our standard handler expects GET /auth/callback?code=...&state=...
	// The code must be unique per flow or the replay guard rejects the
	// second dev login.
	code, err := randomString(16)
	if err != nil {
		return "", "", "", fmt.Errorf("generate code: %w", err)
	}
	authURL := "/auth/callback?code=dev-" + code + "&state=" + state
	return authURL, state, nonce, nil
}

// Exchange ignores the provided code/state/nonce (validation handled by handler) and returns the dev identity.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	return domainauth.Identity{
		Profile:     p.profile,
		AccessToken: "dev-token",
		ExpiresAt:   time.Now().Add(p.tokenDuration),
	}, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
