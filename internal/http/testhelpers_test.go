package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/k2kurs/kursadmin/internal/data"
	"github.com/k2kurs/kursadmin/internal/data/cryptoutil"
	"github.com/k2kurs/kursadmin/internal/domain/model"
	"github.com/k2kurs/kursadmin/internal/mocks/auth"
	"github.com/k2kurs/kursadmin/internal/ports"
	"github.com/k2kurs/kursadmin/internal/service"
	"github.com/k2kurs/kursadmin/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCourseRepo is an in-memory CourseRepository keyed by Frontcore id.
type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[string]model.Course
}

var _ ports.CourseRepository = (*fakeCourseRepo)(nil)

func newFakeCourseRepo(courses ...model.Course) *fakeCourseRepo {
	r := &fakeCourseRepo{courses: make(map[string]model.Course)}
	for _, c := range courses {
		r.courses[c.FrontcoreID] = c
	}
	return r
}

func (r *fakeCourseRepo) List(_ context.Context, _ model.CourseListWindow) ([]model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCourseRepo) GetByFrontcoreID(_ context.Context, id string) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, data.ErrCourseNotFound
	}
	return &c, nil
}

func (r *fakeCourseRepo) UpdateAdminFields(_ context.Context, id string, req model.UpdateCourseRequest) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, data.ErrCourseNotFound
	}
	if req.Billed != nil {
		c.Billed = *req.Billed
	}
	if req.Responsible != nil {
		v := strings.TrimSpace(*req.Responsible)
		c.Responsible = &v
	}
	if req.WhoBilled != nil {
		v := strings.TrimSpace(*req.WhoBilled)
		c.WhoBilled = &v
	}
	if req.Notes != nil {
		v := *req.Notes
		c.Notes = &v
	}
	now := time.Now().UTC()
	c.UpdatedAt = &now
	r.courses[id] = c
	return &c, nil
}

// routerFixture wires the full router against in-memory backends.
type routerFixture struct {
	handler  http.Handler
	provider *auth.MockAuthProvider
	store    *auth.MemorySessionStore
	recorder *auth.MemoryAuditRecorder
	repo     *fakeCourseRepo
	sessions *Sessions
	gate     *service.AuthGate
}

func testCourse() model.Course {
	return model.Course{
		ID:          1,
		FrontcoreID: "FC-100",
		Title:       "Regnskapskurs",
		Location:    testutil.StringPtr("Oslo"),
		StartDate:   time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		StartTime:   testutil.StringPtr("09:00:00"),
		EndTime:     testutil.StringPtr("15:30:00"),
		Status:      "Will run",
	}
}

func newRouterFixture(t *testing.T, courses ...model.Course) *routerFixture {
	t.Helper()

	logger := testLogger()
	provider := auth.NewMockAuthProvider()
	store := auth.NewMemorySessionStore()
	recorder := auth.NewMemoryAuditRecorder()
	if len(courses) == 0 {
		courses = []model.Course{testCourse()}
	}
	repo := newFakeCourseRepo(courses...)

	audit := service.NewAuditTrail(service.AuditTrailOptions{Recorder: recorder, Logger: logger})
	manager := service.NewSessionManager(service.SessionManagerOptions{Store: store, Logger: logger})
	gate := service.NewAuthGate(service.AuthGateOptions{
		Provider: provider,
		Sessions: manager,
		Audit:    audit,
		Logger:   logger,
	})
	courseSvc := service.NewCourseService(service.CourseServiceOptions{
		Repo:   repo,
		Audit:  audit,
		Logger: logger,
	})

	renderer, err := NewTemplateRenderer(logger)
	require.NoError(t, err)

	sessions := NewSessions(cryptoutil.NoopEncryptor{}, gate, logger)
	handler := NewRouter(RouterServices{
		Logger:   logger,
		Sessions: sessions,
		Gate:     gate,
		Courses:  courseSvc,
		Audit:    audit,
		Renderer: renderer,
	})

	return &routerFixture{
		handler:  handler,
		provider: provider,
		store:    store,
		recorder: recorder,
		repo:     repo,
		sessions: sessions,
		gate:     gate,
	}
}

// newTestClient returns a server running the fixture handler and a client
// with a cookie jar that never follows redirects, so each hop can be
// asserted on.
func newTestClient(t *testing.T, f *routerFixture) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(f.handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv, client
}

// login drives the full auth flow against the test server and leaves the
// session cookies in the client's jar.
func login(t *testing.T, srv *httptest.Server, client *http.Client, code string) {
	t.Helper()

	resp, err := client.Get(srv.URL + "/auth/login")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	idpURL, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := idpURL.Query().Get("state")
	require.NotEmpty(t, state)

	resp, err = client.Get(srv.URL + "/auth/callback?code=" + url.QueryEscape(code) + "&state=" + url.QueryEscape(state))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
