// Package oidc implements the AuthProvider port against the Microsoft
// identity platform using OIDC discovery and the OAuth2 authorization code
// flow. The signed-in user's profile is read from Microsoft Graph.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/k2kurs/kursadmin/internal/domain/auth"
	"github.com/k2kurs/kursadmin/internal/ports"
)

// DefaultGraphMeURL is the Microsoft Graph endpoint for the signed-in user.
const DefaultGraphMeURL = "https://graph.microsoft.com/v1.0/me"

// Provider implements the AuthProvider interface using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	graphURL   string
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	IssuerURL    string
	GraphURL     string       // Optional, defaults to DefaultGraphMeURL
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a new OIDC provider. Discovery is performed once at
// construction.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	graphURL := config.GraphURL
	if graphURL == "" {
		graphURL = DefaultGraphMeURL
	}

	p := &Provider{
		graphURL:   graphURL,
		httpClient: httpClient,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.IssuerURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.oidcProvider = op
	p.verifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID})

	scope := config.Scope
	if scope == "" {
		scope = "openid profile email User.Read"
	}
	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       strings.Fields(scope),
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)

	return authURL, state, nonce, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return domainauth.Identity{}, errors.New("state is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	if verifyErr := p.verifyIDToken(ctx, token, in.Nonce); verifyErr != nil {
		return domainauth.Identity{}, verifyErr
	}

	profile, err := p.fetchProfile(ctx, token.AccessToken)
	if err != nil {
		return domainauth.Identity{}, err
	}
	if profile.IsZero() {
		return domainauth.Identity{}, errors.New("identity provider returned empty profile")
	}

	expiresAt := time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return domainauth.Identity{
		Profile:     profile,
		AccessToken: token.AccessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

// verifyIDToken checks the id_token signature and nonce when the openid
// scope is in play. Token responses without an id_token are rejected in that
// case.
func (p *Provider) verifyIDToken(ctx context.Context, tok *oauth2.Token, expectedNonce string) error {
	if !p.hasOpenIDScope() {
		return nil
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return errors.New("missing id_token in token response")
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return fmt.Errorf("verify id_token: %w", err)
	}
	var claims struct {
		Nonce string `json:"nonce"`
	}
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if expectedNonce != "" && claims.Nonce != expectedNonce {
		return errors.New("invalid nonce")
	}
	return nil
}

// graphUser mirrors the fields we read from the Graph /me response.
type graphUser struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// fetchProfile reads the signed-in user's profile from Microsoft Graph.
func (p *Provider) fetchProfile(ctx context.Context, accessToken string) (domainauth.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.graphURL, nil)
	if err != nil {
		return domainauth.UserProfile{}, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domainauth.UserProfile{}, fmt.Errorf("fetch profile: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return domainauth.UserProfile{}, fmt.Errorf("profile endpoint returned status %d", resp.StatusCode)
	}

	var user graphUser
	if decodeErr := json.NewDecoder(resp.Body).Decode(&user); decodeErr != nil {
		return domainauth.UserProfile{}, fmt.Errorf("decode profile: %w", decodeErr)
	}

	email := user.Mail
	if email == "" {
		email = user.UserPrincipalName
	}
	return domainauth.UserProfile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       email,
	}, nil
}

// hasOpenIDScope reports whether the configured scopes include "openid".
func (p *Provider) hasOpenIDScope() bool {
	for _, sc := range p.config.Scopes {
		if sc == "openid" {
			return true
		}
	}
	return false
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}
