package bootstrap

import (
	"encoding/hex"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k2kurs/kursadmin/config"
	"github.com/k2kurs/kursadmin/internal/data/cryptoutil"
	"github.com/k2kurs/kursadmin/internal/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateEncryptor_EmptyKeyIsNoop(t *testing.T) {
	enc := CreateEncryptor("", testLogger())
	_, ok := enc.(cryptoutil.NoopEncryptor)
	assert.True(t, ok)
}

func TestCreateEncryptor_Passphrase(t *testing.T) {
	enc := CreateEncryptor("correct horse battery staple", testLogger())
	_, ok := enc.(*cryptoutil.AESGCMEncryptor)
	require.True(t, ok)

	ct, err := enc.Encrypt([]byte("payload"))
	require.NoError(t, err)
	pt, err := enc.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(pt))
}

func TestCreateEncryptor_HexKey(t *testing.T) {
	key := hex.EncodeToString([]byte(strings.Repeat("k", 32)))
	enc := CreateEncryptor(key, testLogger())
	_, ok := enc.(*cryptoutil.AESGCMEncryptor)
	assert.True(t, ok)
}

func TestCreateAuthProvider_MockMode(t *testing.T) {
	provider, err := CreateAuthProvider(config.AuthConfig{
		Mode: config.AuthModeMock,
		DevAuth: config.DevAuthConfig{
			UserID:      "dev-user",
			DisplayName: "Dev User",
			Email:       "dev@example.com",
		},
	}, testLogger())

	require.NoError(t, err)
	require.NotNil(t, provider)

	authURL, state, _, err := provider.Begin(t.Context(), ports.BeginInput{
		RedirectURL: "http://localhost:8080/auth/callback",
	})
	require.NoError(t, err)
	assert.Contains(t, authURL, "/auth/callback")
	assert.NotEmpty(t, state)
}

func TestCreateAuthProvider_UnknownMode(t *testing.T) {
	_, err := CreateAuthProvider(config.AuthConfig{Mode: "saml"}, testLogger())
	assert.Error(t, err)
}

func TestCreateAuthProvider_OAuthRequiresClientID(t *testing.T) {
	_, err := CreateAuthProvider(config.AuthConfig{
		Mode: config.AuthModeOAuth,
		OAuth: config.OAuthConfig{
			ClientSecret: "secret",
			IssuerURL:    "https://idp.test/v2.0",
		},
	}, testLogger())
	assert.Error(t, err)
}

func TestLoadConfig_MockMode(t *testing.T) {
	t.Setenv("AUTH_MODE", "mock")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.AuthModeMock, cfg.Auth.Mode)
}

func TestLoadConfig_OAuthWithoutCredentialsFails(t *testing.T) {
	t.Setenv("AUTH_MODE", "oauth")
	t.Setenv("OAUTH_CLIENT_ID", "")
	t.Setenv("OAUTH_CLIENT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}
