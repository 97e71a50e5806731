package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// TokenRestored is the sentinel stored in State.AccessToken when an
// authentication was rebuilt from a persisted session rather than a live
// token exchange. Code holding this value must not call the identity
// provider with it.
const TokenRestored = "restored_session"

// UserProfile is the provider-issued identity of a signed-in user.
// Profiles are copied by value between the session row, the cookie, and the
// in-memory state; no component shares a profile by reference.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// IsZero reports whether the profile carries no identity at all.
func (p UserProfile) IsZero() bool {
	return p.ID == "" && p.DisplayName == "" && p.Email == ""
}

// ActorName returns the best available human-readable name for audit rows.
func (p UserProfile) ActorName() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Email != "" {
		return p.Email
	}
	return "Unknown User"
}

// Session is the server-side record persisted for an authenticated user.
// ID is an opaque random identifier. A session is valid iff Active is true
// and the current time is before ExpiresAt; rows are never mutated after
// creation except to flip Active off.
type Session struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Profile   UserProfile `json:"profile"`
	ExpiresAt time.Time   `json:"expires_at"`
	Active    bool        `json:"active"`
}

// Identity is the authenticated principal returned by an identity provider,
// together with the opaque access token issued for it. Adapters map
// provider-specific claims into this shape.
type Identity struct {
	Profile     UserProfile
	AccessToken string
	ExpiresAt   time.Time // absolute expiry from the provider token
}

// State is the in-memory authentication state for one browser session.
// It is an explicit request-scoped object passed into the gate, never a
// package-level global. Logout must zero every field; a single missed field
// reintroduces stale auth on the next request.
type State struct {
	Authenticated bool
	Profile       UserProfile
	AccessToken   string
	TokenExpiry   time.Time
	AuthTime      time.Time
	SessionID     string
}

// Valid reports whether the state can be trusted at the given instant.
// State must never be trusted past its own expiry even if other layers
// disagree.
func (s *State) Valid(now time.Time) bool {
	return s != nil && s.Authenticated && now.Before(s.TokenExpiry)
}

// Reset zeroes all fields. Used by logout and by validation failures.
func (s *State) Reset() {
	*s = State{}
}
