package ports

// Package ports defines interfaces (hexagonal ports) for auth, session, and
// dashboard behavior. Implementations live in internal/adapters and
// internal/data; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/k2kurs/kursadmin/internal/domain/auth"
	"github.com/k2kurs/kursadmin/internal/domain/model"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an authentication flow against an
// identity provider.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow and returns the authenticated identity
	// with its access token.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore is the durable record of sessions. Implementations must
// tolerate concurrent use across different session ids; the session id is
// the isolation key.
type SessionStore interface {
	// Create persists a session row. The caller owns id generation and expiry.
	Create(ctx context.Context, sess domainauth.Session) error

	// Validate returns the stored profile only if the row exists, is active,
	// and has not expired. A missing or expired row yields ErrSessionNotFound.
	Validate(ctx context.Context, id string) (domainauth.UserProfile, error)

	// Invalidate marks the session inactive. Idempotent; safe on unknown ids.
	Invalidate(ctx context.Context, id string) error
}

// CookieVault is an encrypted, namespaced key/value interface over the
// client's cookies. Values are opaque strings; the vault does not interpret
// session semantics. Set/Delete are buffered until Flush, which must run
// before the response is finalized or the change is lost.
type CookieVault interface {
	// Ready reports whether the vault can decrypt and persist entries.
	// Dependent code must halt the request when the vault is not ready.
	Ready() bool
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
	Flush() error
}

// AuditRecorder appends immutable audit rows.
type AuditRecorder interface {
	Insert(ctx context.Context, entry model.AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

// CourseRepository provides read and administrative-update access to course
// rows.
type CourseRepository interface {
	List(ctx context.Context, window model.CourseListWindow) ([]model.Course, error)
	GetByFrontcoreID(ctx context.Context, frontcoreID string) (*model.Course, error)
	UpdateAdminFields(ctx context.Context, frontcoreID string, req model.UpdateCourseRequest) (*model.Course, error)
}

// CacheRepository is a best-effort byte cache. A nil-value Get with no error
// means "not cached".
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
}
