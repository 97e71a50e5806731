package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/k2kurs/kursadmin/internal/data"
	domainauth "github.com/k2kurs/kursadmin/internal/domain/auth"
	"github.com/k2kurs/kursadmin/internal/domain/model"
	"github.com/k2kurs/kursadmin/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider  = (*MockAuthProvider)(nil)
	_ ports.SessionStore  = (*MemorySessionStore)(nil)
	_ ports.CookieVault   = (*MemoryCookieVault)(nil)
	_ ports.AuditRecorder = (*MemoryAuditRecorder)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	callCount     int
	ExchangeCalls int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: domainauth.Identity{
			Profile: domainauth.UserProfile{
				ID:          "mock-user-1",
				DisplayName: "Mock User",
				Email:       "mock.user@example.com",
			},
			AccessToken: "mock-token",
			ExpiresAt:   time.Now().Add(time.Hour),
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}
	m.callCount++
	state := fmt.Sprintf("%s-%d", m.StatePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", m.NoncePrefix, m.callCount)
	return m.AuthURL + "?state=" + state, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	m.ExchangeCalls++
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	return m.DefaultUser, nil
}

// MemorySessionStore is an in-memory SessionStore with call counters and
// optional failure injection, so tests can drive degraded-store paths.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	FailCreate     error
	FailValidate   error
	FailInvalidate error

	CreateCalls     int
	ValidateCalls   int
	InvalidateCalls int

	now func() time.Time
}

// NewMemorySessionStore creates an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
		now:      time.Now,
	}
}

// SetNow overrides the store clock for expiry checks.
func (s *MemorySessionStore) SetNow(fn func() time.Time) { s.now = fn }

func (s *MemorySessionStore) Create(_ context.Context, session domainauth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreateCalls++
	if s.FailCreate != nil {
		return s.FailCreate
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *MemorySessionStore) Validate(_ context.Context, id string) (domainauth.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ValidateCalls++
	if s.FailValidate != nil {
		return domainauth.UserProfile{}, s.FailValidate
	}
	session, ok := s.sessions[id]
	if !ok || !session.Active || !s.now().Before(session.ExpiresAt) {
		return domainauth.UserProfile{}, data.ErrSessionNotFound
	}
	return session.Profile, nil
}

func (s *MemorySessionStore) Invalidate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InvalidateCalls++
	if s.FailInvalidate != nil {
		return s.FailInvalidate
	}
	if session, ok := s.sessions[id]; ok {
		session.Active = false
		s.sessions[id] = session
	}
	return nil
}

// Len returns the number of stored sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// MemoryCookieVault is an in-memory CookieVault. Values survive Flush so a
// test can reuse the same vault across simulated requests.
type MemoryCookieVault struct {
	values map[string]string
	ready  bool

	GetCalls    int
	SetCalls    int
	DeleteCalls int
	FlushCalls  int
	FlushErr    error
}

// NewMemoryCookieVault creates a ready MemoryCookieVault.
func NewMemoryCookieVault() *MemoryCookieVault {
	return &MemoryCookieVault{values: make(map[string]string), ready: true}
}

// NewUnreadyCookieVault creates a vault that reports not Ready.
func NewUnreadyCookieVault() *MemoryCookieVault {
	return &MemoryCookieVault{values: make(map[string]string)}
}

func (v *MemoryCookieVault) Ready() bool { return v.ready }

func (v *MemoryCookieVault) Get(key string) (string, bool) {
	v.GetCalls++
	if !v.ready {
		return "", false
	}
	val, ok := v.values[key]
	return val, ok
}

func (v *MemoryCookieVault) Set(key, value string) {
	v.SetCalls++
	if !v.ready {
		return
	}
	v.values[key] = value
}

func (v *MemoryCookieVault) Delete(key string) {
	v.DeleteCalls++
	if !v.ready {
		return
	}
	delete(v.values, key)
}

func (v *MemoryCookieVault) Flush() error {
	v.FlushCalls++
	return v.FlushErr
}

// ResetCounters zeroes the call counters without touching stored values.
func (v *MemoryCookieVault) ResetCounters() {
	v.GetCalls, v.SetCalls, v.DeleteCalls, v.FlushCalls = 0, 0, 0, 0
}

// MemoryAuditRecorder collects audit entries in memory, with optional
// failure injection.
type MemoryAuditRecorder struct {
	mu      sync.Mutex
	Entries []model.AuditEntry

	FailInsert error
}

// NewMemoryAuditRecorder creates an empty MemoryAuditRecorder.
func NewMemoryAuditRecorder() *MemoryAuditRecorder {
	return &MemoryAuditRecorder{}
}

func (r *MemoryAuditRecorder) Insert(_ context.Context, entry model.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailInsert != nil {
		return r.FailInsert
	}
	entry.ID = int64(len(r.Entries) + 1)
	r.Entries = append(r.Entries, entry)
	return nil
}

func (r *MemoryAuditRecorder) ListRecent(_ context.Context, limit int) ([]model.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.Entries) {
		limit = len(r.Entries)
	}
	out := make([]model.AuditEntry, 0, limit)
	for i := len(r.Entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.Entries[i])
	}
	return out, nil
}

// Actions returns the recorded action names in insertion order.
func (r *MemoryAuditRecorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Action
	}
	return out
}
