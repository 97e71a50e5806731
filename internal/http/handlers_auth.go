package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/k2kurs/kursadmin/internal/service"
)

const (
	stateCookieName    = "oauth_state"
	nonceCookieName    = "oauth_nonce"
	redirectCookieName = "oauth_redirect"

	flowCookieMaxAge = 10 * time.Minute
)

// AuthHandler serves the login, callback, logout and status endpoints.
type AuthHandler struct {
	gate   *service.AuthGate
	logger *slog.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(gate *service.AuthGate, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{gate: gate, logger: logger}
}

// Login starts the authentication flow and redirects to the identity provider.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	redirectPath := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	callbackURL := requestScheme(r) + "://" + r.Host + "/auth/callback"

	res, err := h.gate.BeginLogin(r.Context(), callbackURL)
	if err != nil {
		h.logger.Error("begin login", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusBadGateway,
			ErrCode: "provider_error",
			Err:     errors.New("could not start login flow"),
		})
		return
	}

	secure := requestScheme(r) == "https"
	setFlowCookie(w, stateCookieName, res.State, secure)
	setFlowCookie(w, nonceCookieName, res.Nonce, secure)
	setFlowCookie(w, redirectCookieName, redirectPath, secure)

	http.Redirect(w, r, res.AuthURL, http.StatusFound)
}

// Callback completes the authentication flow after the provider redirects back.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errCode := q.Get("error"); errCode != "" {
		h.logger.Warn("provider returned error", "error", errCode, "description", q.Get("error_description"))
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "provider_denied",
			Err:     errors.New("authentication was denied"),
		})
		return
	}

	state := q.Get("state")
	if state == "" || state != flowCookie(r, stateCookieName) {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "state_mismatch",
			Err:     errors.New("state parameter does not match"),
		})
		return
	}

	st := GetAuthState(r.Context())
	vault := GetCookieVault(r.Context())
	if st == nil || vault == nil || !vault.Ready() {
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "unavailable",
			Err:     errors.New("session storage unavailable"),
		})
		return
	}

	_, err := h.gate.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  q.Get("code"),
		State: state,
		Nonce: flowCookie(r, nonceCookieName),
	}, st, vault)
	if err != nil {
		code, errCode := http.StatusUnauthorized, "login_failed"
		if errors.Is(err, service.ErrCodeReplayed) {
			code, errCode = http.StatusBadRequest, "code_replayed"
		}
		h.logger.Warn("complete login", "error", err)
		WriteError(w, ErrorParams{Code: code, ErrCode: errCode, Err: errors.New("login failed")})
		return
	}

	redirectPath := safeRedirectPath(flowCookie(r, redirectCookieName))

	secure := requestScheme(r) == "https"
	clearFlowCookie(w, stateCookieName, secure)
	clearFlowCookie(w, nonceCookieName, secure)
	clearFlowCookie(w, redirectCookieName, secure)

	if err := vault.Flush(); err != nil {
		h.logger.Error("flush session cookies", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "internal",
			Err:     errors.New("could not persist session"),
		})
		return
	}

	// 303 so the authorization code never survives in the address bar.
	http.Redirect(w, r, redirectPath, http.StatusSeeOther)
}

// Logout tears down the session and sends the user back to the front page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	st := GetAuthState(r.Context())
	vault := GetCookieVault(r.Context())
	if vault != nil {
		h.gate.Logout(r.Context(), st, vault)
		if err := vault.Flush(); err != nil {
			h.logger.Warn("flush cookies on logout", "error", err)
		}
	}
	http.Redirect(w, r, "/auth/login", http.StatusFound)
}

// Status reports whether the current request carries an authenticated session.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := GetAuthState(r.Context())
	vault := GetCookieVault(r.Context())
	if st == nil || vault == nil || !vault.Ready() || !h.gate.Check(r.Context(), st, vault) {
		if vault != nil {
			if err := vault.Flush(); err != nil {
				h.logger.Warn("flush cookies after status check", "error", err)
			}
		}
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          st.Profile.ActorName(),
		"session":       service.SessionIDPrefix(st.SessionID),
	})
}

func setFlowCookie(w http.ResponseWriter, name, value string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(flowCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearFlowCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func flowCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
