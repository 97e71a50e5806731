package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/k2kurs/kursadmin/internal/domain/auth"
	"github.com/k2kurs/kursadmin/internal/testutil"
)

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	handler := Recover(testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal")
}

func TestLogging_PassesThroughStatus(t *testing.T) {
	handler := Logging(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestStateRegistry_GetPutDrop(t *testing.T) {
	reg := newStateRegistry(nil)

	assert.Nil(t, reg.get("missing"))

	st := &domainauth.State{SessionID: "abc"}
	reg.put("cookie-value", st)
	assert.Same(t, st, reg.get("cookie-value"))

	reg.drop("cookie-value")
	assert.Nil(t, reg.get("cookie-value"))
}

func TestStateRegistry_IgnoresEmptyKey(t *testing.T) {
	reg := newStateRegistry(nil)
	reg.put("", &domainauth.State{SessionID: "abc"})
	assert.Empty(t, reg.entries)
	assert.Nil(t, reg.get(""))
}

func TestStateRegistry_PrunesIdleEntries(t *testing.T) {
	tp := testutil.NewTestTimeProvider(testutil.TestTime())
	reg := newStateRegistry(tp.Now)

	reg.put("stale", &domainauth.State{SessionID: "a"})
	tp.AddTime(stateIdleTTL + time.Minute)
	reg.put("fresh", &domainauth.State{SessionID: "b"})

	assert.Nil(t, reg.get("stale"))
	require.NotNil(t, reg.get("fresh"))
}

func TestRequireAuth_UnreadyVaultIs503(t *testing.T) {
	f := newRouterFixture(t)
	// No encryptor means the per-request vault can never decrypt cookies.
	f.sessions.encryptor = nil
	srv, client := newTestClient(t, f)

	resp, err := client.Get(srv.URL + "/api/courses")
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "unavailable")
}

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "/"},
		{"relative", "/courses/FC-1", "/courses/FC-1"},
		{"absolute url", "https://evil.example/", "/"},
		{"protocol relative", "//evil.example/", "/"},
		{"backslash", "/\\evil.example", "/"},
		{"no leading slash", "courses", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safeRedirectPath(tt.in))
		})
	}
}

func TestWantsJSON(t *testing.T) {
	apiReq := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	assert.True(t, wantsJSON(apiReq))

	pageReq := httptest.NewRequest(http.MethodGet, "/courses/FC-1", nil)
	assert.False(t, wantsJSON(pageReq))

	acceptReq := httptest.NewRequest(http.MethodGet, "/courses/FC-1", nil)
	acceptReq.Header.Set("Accept", "application/json")
	assert.True(t, wantsJSON(acceptReq))
}
