// Package cookievault stores small key/value pairs in encrypted, namespaced
// browser cookies. A Vault is scoped to a single request/response pair and
// stages writes in memory until Flush emits the Set-Cookie headers.
package cookievault

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/k2kurs/kursadmin/internal/data/cryptoutil"
)

const (
	// CookiePrefix namespaces every vault cookie so they never collide with
	// cookies owned by other apps on the same host.
	CookiePrefix = "kursadmin_"

	// DefaultMaxAge bounds how long a vault cookie survives in the browser.
	DefaultMaxAge = 24 * time.Hour
)

// Vault implements ports.CookieVault over a single HTTP exchange.
type Vault struct {
	r         *http.Request
	w         http.ResponseWriter
	encryptor cryptoutil.Encryptor
	maxAge    time.Duration
	logger    *slog.Logger

	// pending holds staged writes. A nil value marks a staged delete.
	pending map[string]*string
}

// Option configures a Vault.
type Option func(*Vault)

// WithMaxAge overrides the cookie lifetime.
func WithMaxAge(d time.Duration) Option {
	return func(v *Vault) { v.maxAge = d }
}

// New builds a Vault bound to the given request/response pair. The encryptor
// may be nil, in which case the vault reports not Ready and every operation
// fails closed.
func New(w http.ResponseWriter, r *http.Request, enc cryptoutil.Encryptor, logger *slog.Logger, opts ...Option) *Vault {
	v := &Vault{
		r:         r,
		w:         w,
		encryptor: enc,
		maxAge:    DefaultMaxAge,
		logger:    logger,
		pending:   make(map[string]*string),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Ready reports whether the vault can encrypt and decrypt values.
func (v *Vault) Ready() bool {
	return v != nil && v.encryptor != nil
}

// Get returns the value stored under key. Staged writes from this request
// take precedence over what the browser sent. A cookie that fails to decrypt
// is treated as absent and staged for deletion.
func (v *Vault) Get(key string) (string, bool) {
	if !v.Ready() {
		return "", false
	}
	if staged, ok := v.pending[key]; ok {
		if staged == nil {
			return "", false
		}
		return *staged, true
	}
	c, err := v.r.Cookie(CookiePrefix + key)
	if err != nil {
		return "", false
	}
	plaintext, err := v.encryptor.Decrypt(c.Value)
	if err != nil {
		v.logger.Warn("dropping undecryptable cookie", "key", key, "error", err)
		v.Delete(key)
		return "", false
	}
	return string(plaintext), true
}

// Set stages a value to be written at Flush.
func (v *Vault) Set(key, value string) {
	if !v.Ready() {
		return
	}
	v.pending[key] = &value
}

// Delete stages a removal of the cookie under key.
func (v *Vault) Delete(key string) {
	if !v.Ready() {
		return
	}
	v.pending[key] = nil
}

// Flush emits Set-Cookie headers for every staged write and clears the
// staging area. It is safe to call more than once per request.
func (v *Vault) Flush() error {
	if !v.Ready() {
		return nil
	}
	secure := isSecureRequest(v.r)
	for key, staged := range v.pending {
		if staged == nil {
			http.SetCookie(v.w, &http.Cookie{
				Name:     CookiePrefix + key,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			continue
		}
		encrypted, err := v.encryptor.Encrypt([]byte(*staged))
		if err != nil {
			return err
		}
		http.SetCookie(v.w, &http.Cookie{
			Name:     CookiePrefix + key,
			Value:    encrypted,
			Path:     "/",
			MaxAge:   int(v.maxAge.Seconds()),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	v.pending = make(map[string]*string)
	return nil
}

func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
