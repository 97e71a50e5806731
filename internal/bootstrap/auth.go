package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/k2kurs/kursadmin/config"
	"github.com/k2kurs/kursadmin/internal/adapters/devauth"
	"github.com/k2kurs/kursadmin/internal/adapters/oidc"
	"github.com/k2kurs/kursadmin/internal/ports"
)

// CreateAuthProvider selects the identity provider from configuration:
// the Microsoft identity platform in production, a canned dev identity when
// AUTH_MODE=mock.
//
//nolint:ireturn // the caller only needs the port, not the concrete provider
func CreateAuthProvider(cfg config.AuthConfig, logger *slog.Logger) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		logger.Warn("mock authentication enabled; do not use in production",
			"user", cfg.DevAuth.UserID)
		return devauth.NewProvider(devauth.Config{
			UserID:        cfg.DevAuth.UserID,
			DisplayName:   cfg.DevAuth.DisplayName,
			Email:         cfg.DevAuth.Email,
			TokenDuration: cfg.DevAuth.TokenDuration,
		})
	case config.AuthModeOAuth:
		provider, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
			Scope:        cfg.OAuth.Scope,
			IssuerURL:    cfg.OAuth.Issuer(),
			GraphURL:     cfg.OAuth.GraphURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create oidc provider: %w", err)
		}
		logger.Info("oidc authentication configured", "issuer", cfg.OAuth.Issuer())
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %q", cfg.Mode)
	}
}
