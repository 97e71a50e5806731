package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/k2kurs/kursadmin/internal/adapters/cookievault"
	"github.com/k2kurs/kursadmin/internal/data/cryptoutil"
	domainauth "github.com/k2kurs/kursadmin/internal/domain/auth"
	"github.com/k2kurs/kursadmin/internal/service"
)

// respWriter wraps http.ResponseWriter to capture the response status code.
type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *respWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Logging logs each request with method, path, status and duration.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &respWriter{ResponseWriter: w}
			next.ServeHTTP(rw, r)
			if rw.status == 0 {
				rw.status = http.StatusOK
			}
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote", r.RemoteAddr)
		})
	}
}

// Recover converts panics into 500 responses instead of tearing down the server.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						"panic", rec,
						"path", r.URL.Path,
						"stack", string(debug.Stack()))
					WriteError(w, ErrorParams{
						Code:    http.StatusInternalServerError,
						ErrCode: "internal",
						Err:     errors.New("internal server error"),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

const (
	sessionCookieName = cookievault.CookiePrefix + "session_id"

	maxRegistryStates = 8192
	stateIdleTTL      = time.Hour
)

type stateEntry struct {
	state    *domainauth.State
	lastSeen time.Time
}

// stateRegistry keeps per-session auth state in process memory between
// requests. Entries are keyed by the raw encrypted session cookie value, so a
// process restart or a login that reissues the cookie simply misses here and
// the auth gate restores the session from its durable tiers.
type stateRegistry struct {
	mu      sync.Mutex
	entries map[string]*stateEntry
	now     func() time.Time
}

func newStateRegistry(now func() time.Time) *stateRegistry {
	if now == nil {
		now = time.Now
	}
	return &stateRegistry{entries: make(map[string]*stateEntry), now: now}
}

func (r *stateRegistry) get(key string) *domainauth.State {
	if key == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return nil
	}
	e.lastSeen = r.now()
	return e.state
}

func (r *stateRegistry) put(key string, st *domainauth.State) {
	if key == "" || st == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	r.entries[key] = &stateEntry{state: st, lastSeen: r.now()}
}

func (r *stateRegistry) drop(key string) {
	if key == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// prune removes idle entries and, if the map is still over the cap, resets it.
// Callers must hold mu.
func (r *stateRegistry) prune() {
	now := r.now()
	for k, e := range r.entries {
		if now.Sub(e.lastSeen) > stateIdleTTL {
			delete(r.entries, k)
		}
	}
	if len(r.entries) >= maxRegistryStates {
		r.entries = make(map[string]*stateEntry)
	}
}

// Sessions builds the per-request cookie vault and auth state and gates
// protected routes through the auth gate.
type Sessions struct {
	encryptor cryptoutil.Encryptor
	gate      *service.AuthGate
	logger    *slog.Logger
	registry  *stateRegistry
}

// NewSessions constructs the session middleware set.
func NewSessions(enc cryptoutil.Encryptor, gate *service.AuthGate, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{
		encryptor: enc,
		gate:      gate,
		logger:    logger,
		registry:  newStateRegistry(nil),
	}
}

// Attach places a cookie vault and auth state on the request context. The
// state survives across requests through the registry while the session
// cookie stays the same.
func (s *Sessions) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rawSessionCookie(r)

		st := s.registry.get(key)
		if st == nil {
			st = &domainauth.State{}
		}

		vault := cookievault.New(w, r, s.encryptor, s.logger)

		ctx := SetAuthState(r.Context(), st)
		ctx = SetCookieVault(ctx, vault)
		next.ServeHTTP(w, r.WithContext(ctx))

		switch {
		case st.SessionID != "":
			s.registry.put(key, st)
		case key != "":
			s.registry.drop(key)
		}
	})
}

// RequireAuth rejects requests whose session cannot be validated. API
// requests get a JSON 401, page requests are redirected to the login flow.
func (s *Sessions) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vault := GetCookieVault(r.Context())
		st := GetAuthState(r.Context())
		if vault == nil || st == nil || !vault.Ready() {
			WriteError(w, ErrorParams{
				Code:    http.StatusServiceUnavailable,
				ErrCode: "unavailable",
				Err:     errors.New("session storage unavailable"),
			})
			return
		}

		if !s.gate.Check(r.Context(), st, vault) {
			if err := vault.Flush(); err != nil {
				s.logger.Warn("flush cookies after failed auth", "error", err)
			}
			if wantsJSON(r) {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "unauthorized",
					Err:     errors.New("authentication required"),
				})
				return
			}
			target := "/auth/login?redirect_uri=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func rawSessionCookie(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
