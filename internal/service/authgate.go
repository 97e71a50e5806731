package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/k2kurs/kursadmin/internal/domain/auth"
	"github.com/k2kurs/kursadmin/internal/ports"
)

// Token lifetimes. A freshly exchanged token is trusted for an hour; a
// session restored from store or cookie gets the longer restored window
// since no live token backs it.
const (
	DefaultTokenTTL    = time.Hour
	DefaultRestoredTTL = 24 * time.Hour
)

// maxUsedCodes bounds the replay-guard set.
const maxUsedCodes = 4096

// AuthGateOptions groups dependencies for AuthGate.
type AuthGateOptions struct {
	Provider    ports.AuthProvider
	Sessions    *SessionManager
	Audit       *AuditTrail
	Logger      *slog.Logger
	Now         func() time.Time // defaults to time.Now
	TokenTTL    time.Duration    // defaults to DefaultTokenTTL
	RestoredTTL time.Duration    // defaults to DefaultRestoredTTL
}

// AuthGate decides whether a request is authenticated and runs the login
// and logout flows. Per-user auth state is passed in explicitly; the gate
// itself only keeps the process-wide replay guard.
type AuthGate struct {
	provider    ports.AuthProvider
	sessions    *SessionManager
	audit       *AuditTrail
	logger      *slog.Logger
	now         func() time.Time
	tokenTTL    time.Duration
	restoredTTL time.Duration

	mu        sync.Mutex
	usedCodes map[string]struct{}
}

// NewAuthGate constructs an AuthGate.
func NewAuthGate(opts AuthGateOptions) *AuthGate {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	tokenTTL := opts.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	restoredTTL := opts.RestoredTTL
	if restoredTTL <= 0 {
		restoredTTL = DefaultRestoredTTL
	}
	return &AuthGate{
		provider:    opts.Provider,
		sessions:    opts.Sessions,
		audit:       opts.Audit,
		logger:      logger,
		now:         now,
		tokenTTL:    tokenTTL,
		restoredTTL: restoredTTL,
		usedCodes:   make(map[string]struct{}),
	}
}

// Check reports whether the request behind st is authenticated. A state
// with an unexpired token passes immediately without touching the store or
// the vault. Otherwise the gate tries to restore: resolve a session id,
// validate it, and repopulate the state with the restored-session marker.
func (g *AuthGate) Check(ctx context.Context, st *domainauth.State, vault ports.CookieVault) bool {
	if st == nil {
		return false
	}
	if st.Valid(g.now()) {
		return true
	}

	sid, ok := g.sessions.ResolveSessionID(st, vault)
	if !ok {
		st.Reset()
		return false
	}
	profile, ok := g.sessions.ValidateSession(ctx, sid, vault)
	if !ok {
		st.Reset()
		return false
	}

	now := g.now()
	st.Authenticated = true
	st.Profile = profile
	st.AccessToken = domainauth.TokenRestored
	st.TokenExpiry = now.Add(g.restoredTTL)
	st.AuthTime = now
	st.SessionID = sid

	g.logger.Info("session restored",
		"session_id", SessionIDPrefix(sid), "user", profile.ActorName())
	return true
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (g *AuthGate) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := g.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// ErrCodeReplayed is returned when an authorization code is presented twice.
var ErrCodeReplayed = errors.New("authorization code already used")

// CompleteLogin exchanges the authorization code, creates the session and
// populates st. Each code is consumed before the exchange starts, so a
// replayed code fails even if the first exchange is still in flight.
func (g *AuthGate) CompleteLogin(
	ctx context.Context,
	input CompleteLoginInput,
	st *domainauth.State,
	vault ports.CookieVault,
) (domainauth.Session, error) {
	if input.Code == "" {
		return domainauth.Session{}, errors.New("authorization code is required")
	}
	if input.State == "" {
		return domainauth.Session{}, errors.New("state parameter is required")
	}

	if !g.consumeCode(input.Code) {
		g.audit.RecordLogin(ctx, "unknown", false)
		return domainauth.Session{}, ErrCodeReplayed
	}

	identity, err := g.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		g.audit.RecordLogin(ctx, "unknown", false)
		return domainauth.Session{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	session, err := g.sessions.CreateSession(ctx, identity.Profile, vault)
	if err != nil {
		g.audit.RecordLogin(ctx, identity.Profile.ActorName(), false)
		return domainauth.Session{}, fmt.Errorf("create session: %w", err)
	}

	now := g.now()
	tokenExpiry := identity.ExpiresAt
	if tokenExpiry.IsZero() {
		tokenExpiry = now.Add(g.tokenTTL)
	}

	st.Authenticated = true
	st.Profile = identity.Profile
	st.AccessToken = identity.AccessToken
	st.TokenExpiry = tokenExpiry
	st.AuthTime = now
	st.SessionID = session.ID

	g.audit.RecordLogin(ctx, identity.Profile.ActorName(), true)
	g.logger.Info("login completed",
		"session_id", SessionIDPrefix(session.ID), "user", identity.Profile.ActorName())
	return session, nil
}

// Logout tears down the session across all tiers and records the event. The
// in-memory state often arrives empty here (fresh process, registry miss), so
// the identity is recovered from the durable tiers first; the logout audit
// record must carry a name.
func (g *AuthGate) Logout(ctx context.Context, st *domainauth.State, vault ports.CookieVault) {
	if st == nil {
		st = &domainauth.State{}
	}
	if st.Profile.IsZero() {
		if sid, ok := g.sessions.ResolveSessionID(st, vault); ok {
			if profile, ok := g.sessions.ValidateSession(ctx, sid, vault); ok {
				st.Profile = profile
			}
		}
	}
	known := !st.Profile.IsZero()
	name := st.Profile.ActorName()
	g.sessions.ClearSession(ctx, st, vault)
	if known {
		g.audit.RecordLogout(ctx, name)
		g.audit.ForgetNavigation(name)
	}
}

// consumeCode marks an authorization code as used. Returns false when the
// code was already consumed.
func (g *AuthGate) consumeCode(code string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, seen := g.usedCodes[code]; seen {
		return false
	}
	if len(g.usedCodes) >= maxUsedCodes {
		g.usedCodes = make(map[string]struct{})
	}
	g.usedCodes[code] = struct{}{}
	return true
}
