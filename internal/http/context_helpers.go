package httpx

import (
	"context"
	"net/http"
	"strings"

	domainauth "github.com/k2kurs/kursadmin/internal/domain/auth"
	"github.com/k2kurs/kursadmin/internal/ports"
)

type stateKey struct{}
type vaultKey struct{}

// SetAuthState stores the per-request authentication state on the context.
func SetAuthState(ctx context.Context, st *domainauth.State) context.Context {
	return context.WithValue(ctx, stateKey{}, st)
}

// GetAuthState returns the authentication state for the request, or nil when
// the session middleware did not run.
func GetAuthState(ctx context.Context) *domainauth.State {
	st, _ := ctx.Value(stateKey{}).(*domainauth.State)
	return st
}

// SetCookieVault stores the per-request cookie vault on the context.
func SetCookieVault(ctx context.Context, vault ports.CookieVault) context.Context {
	return context.WithValue(ctx, vaultKey{}, vault)
}

// GetCookieVault returns the cookie vault for the request, or nil when the
// session middleware did not run.
func GetCookieVault(ctx context.Context) ports.CookieVault {
	vault, _ := ctx.Value(vaultKey{}).(ports.CookieVault)
	return vault
}

// safeRedirectPath validates a post-login redirect target. Only relative
// paths within the application are accepted; anything else falls back to /.
func safeRedirectPath(raw string) string {
	if raw == "" {
		return "/"
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return "/"
	}
	return raw
}

// requestScheme reports whether the request arrived over TLS, directly or via
// a terminating proxy.
func requestScheme(r *http.Request) string {
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return "https"
	}
	return "http"
}
