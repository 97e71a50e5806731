package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/k2kurs/kursadmin/internal/data"
	domainauth "github.com/k2kurs/kursadmin/internal/domain/auth"
	"github.com/k2kurs/kursadmin/internal/ports"
)

// Cookie keys used inside the vault namespace.
const (
	cookieKeySessionID = "session_id"
	cookieKeyUserInfo  = "user_info"
)

// DefaultSessionTTL is how long a server-side session stays valid.
const DefaultSessionTTL = 24 * time.Hour

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	Store  ports.SessionStore
	Logger *slog.Logger
	Now    func() time.Time // defaults to time.Now
	TTL    time.Duration    // defaults to DefaultSessionTTL
}

// SessionManager owns the session lifecycle across its three tiers: the
// caller's in-memory state, the relational store, and the cookie vault. The
// store is best-effort; when it is down the cookie copy keeps the user
// signed in until its own expiry.
type SessionManager struct {
	store  ports.SessionStore
	logger *slog.Logger
	now    func() time.Time
	ttl    time.Duration
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(opts SessionManagerOptions) *SessionManager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		store:  opts.Store,
		logger: logger,
		now:    now,
		ttl:    ttl,
	}
}

// cookieProfile is the user_info cookie payload. It carries its own expiry
// so the fallback path stays bounded even when the store is unreachable.
type cookieProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CreateSession mints a new session for the profile, persists it best-effort
// and mirrors it into the vault. A store failure is logged but does not fail
// the login; the cookie copy carries the session until the store recovers.
func (m *SessionManager) CreateSession(
	ctx context.Context,
	profile domainauth.UserProfile,
	vault ports.CookieVault,
) (domainauth.Session, error) {
	if profile.IsZero() {
		return domainauth.Session{}, errors.New("profile is required")
	}

	now := m.now()
	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    profile.ID,
		Profile:   profile,
		ExpiresAt: now.Add(m.ttl),
		Active:    true,
	}

	if err := m.store.Create(ctx, session); err != nil {
		m.logger.Warn("session store unavailable, continuing with cookie session",
			"session_id", SessionIDPrefix(session.ID), "error", err)
	}

	payload, err := json.Marshal(cookieProfile{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
		ExpiresAt:   session.ExpiresAt,
	})
	if err != nil {
		return domainauth.Session{}, err
	}
	vault.Set(cookieKeySessionID, session.ID)
	vault.Set(cookieKeyUserInfo, string(payload))

	m.logger.Info("session created",
		"session_id", SessionIDPrefix(session.ID), "user", profile.ActorName())
	return session, nil
}

// ValidateSession resolves a session id to a profile. The store is asked
// first; when it errors the user_info cookie serves as fallback, gated by
// its embedded expiry. A session the store positively reports as dead is
// not resurrected from the cookie.
func (m *SessionManager) ValidateSession(
	ctx context.Context,
	sessionID string,
	vault ports.CookieVault,
) (domainauth.UserProfile, bool) {
	if sessionID == "" {
		return domainauth.UserProfile{}, false
	}

	profile, err := m.store.Validate(ctx, sessionID)
	if err == nil {
		return profile, true
	}
	if errors.Is(err, data.ErrSessionNotFound) {
		vault.Delete(cookieKeySessionID)
		vault.Delete(cookieKeyUserInfo)
		return domainauth.UserProfile{}, false
	}

	m.logger.Warn("session store validation failed, trying cookie fallback",
		"session_id", SessionIDPrefix(sessionID), "error", err)
	return m.validateFromCookie(vault)
}

// validateFromCookie checks the user_info cookie copy of the profile.
func (m *SessionManager) validateFromCookie(vault ports.CookieVault) (domainauth.UserProfile, bool) {
	raw, ok := vault.Get(cookieKeyUserInfo)
	if !ok {
		return domainauth.UserProfile{}, false
	}

	var cp cookieProfile
	if err := json.Unmarshal([]byte(raw), &cp); err != nil {
		m.logger.Warn("dropping corrupt user_info cookie", "error", err)
		vault.Delete(cookieKeySessionID)
		vault.Delete(cookieKeyUserInfo)
		return domainauth.UserProfile{}, false
	}
	if !m.now().Before(cp.ExpiresAt) {
		vault.Delete(cookieKeySessionID)
		vault.Delete(cookieKeyUserInfo)
		return domainauth.UserProfile{}, false
	}
	return domainauth.UserProfile{
		ID:          cp.ID,
		DisplayName: cp.DisplayName,
		Email:       cp.Email,
	}, true
}

// ResolveSessionID finds the candidate session id for a request, preferring
// the in-memory state and falling back to the session_id cookie. The winner
// is cached back onto the state.
func (m *SessionManager) ResolveSessionID(st *domainauth.State, vault ports.CookieVault) (string, bool) {
	if st != nil && st.SessionID != "" {
		return st.SessionID, true
	}
	sid, ok := vault.Get(cookieKeySessionID)
	if !ok || sid == "" {
		return "", false
	}
	if st != nil {
		st.SessionID = sid
	}
	return sid, true
}

// ClearSession tears down every tier of the session: store row, both vault
// cookies and the in-memory state. Store failures are logged and swallowed
// so logout always completes.
func (m *SessionManager) ClearSession(
	ctx context.Context,
	st *domainauth.State,
	vault ports.CookieVault,
) {
	if sid, ok := m.ResolveSessionID(st, vault); ok {
		if err := m.store.Invalidate(ctx, sid); err != nil {
			m.logger.Warn("session invalidation failed",
				"session_id", SessionIDPrefix(sid), "error", err)
		}
	}

	vault.Delete(cookieKeySessionID)
	vault.Delete(cookieKeyUserInfo)
	if err := vault.Flush(); err != nil {
		m.logger.Warn("cookie flush failed during logout", "error", err)
	}
	if st != nil {
		st.Reset()
	}
}

// SessionIDPrefix returns a short log-safe prefix of a session id.
func SessionIDPrefix(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
