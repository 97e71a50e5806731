package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.False(t, cfg.IsDev)
	assert.Equal(t, AuthModeOAuth, cfg.Auth.Mode)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.True(t, cfg.Postgres.RunMigrationsOnStart)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Cache.CourseTTL)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ShutdownTimeout)
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AUTH_MODE", "mock")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("REDIS_ADDR", "cache.internal:6380")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CACHE_COURSE_TTL", "5m")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModeMock, cfg.Auth.Mode)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 5433, cfg.Postgres.Port)
	assert.Equal(t, "cache.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Cache.CourseTTL)
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    AuthMode
		wantErr bool
	}{
		{"oauth", AuthModeOAuth, false},
		{"OAuth", AuthModeOAuth, false},
		{"mock", AuthModeMock, false},
		{"saml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var m AuthMode
			err := m.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m)
		})
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	oauth := AuthConfig{Mode: AuthModeOAuth}
	assert.Error(t, oauth.Validate())

	oauth.OAuth.ClientID = "client"
	assert.Error(t, oauth.Validate())

	oauth.OAuth.ClientSecret = "secret"
	assert.NoError(t, oauth.Validate())

	mock := AuthConfig{Mode: AuthModeMock}
	assert.NoError(t, mock.Validate())
}

func TestOAuthConfig_Issuer(t *testing.T) {
	cfg := OAuthConfig{TenantID: "contoso"}
	assert.Equal(t, "https://login.microsoftonline.com/contoso/v2.0", cfg.Issuer())

	cfg.IssuerURL = "https://idp.test/v2.0"
	assert.Equal(t, "https://idp.test/v2.0", cfg.Issuer())
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := DBConfig{Host: "localhost", Port: 5432, User: "u", Password: "p", Name: "db", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", cfg.DSN())
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}

func TestCacheConfig_SanitizeClampsTTL(t *testing.T) {
	c := CacheConfig{CourseTTL: -1}
	c.Sanitize()
	assert.Equal(t, 2*time.Minute, c.CourseTTL)
}
