package httpx

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUI_DashboardRendersCoursesAndActivity(t *testing.T) {
	f := newRouterFixture(t)
	srv, client := newTestClient(t, f)
	login(t, srv, client, "code-1")

	resp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	body := readBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Kursoversikt")
	assert.Contains(t, body, "Regnskapskurs")
	assert.Contains(t, body, "Oslo")
	assert.Contains(t, body, "Gjennomføres")
	assert.Contains(t, body, "09:00 - 15:30")
	// The login that preceded this view shows up in the activity panel.
	assert.Contains(t, body, "login_success")
	assert.Contains(t, f.recorder.Actions(), "page_view")
}

func TestUI_DashboardSearchFiltersCourses(t *testing.T) {
	second := testCourse()
	second.ID = 2
	second.FrontcoreID = "FC-200"
	second.Title = "HMS-kurs"
	f := newRouterFixture(t, testCourse(), second)
	srv, client := newTestClient(t, f)
	login(t, srv, client, "code-1")

	resp, err := client.Get(srv.URL + "/?search=" + url.QueryEscape("HMS"))
	require.NoError(t, err)
	body := readBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "HMS-kurs")
	assert.NotContains(t, body, "Regnskapskurs")
}

func TestUI_CoursePageRendersAdminFields(t *testing.T) {
	f := newRouterFixture(t)
	srv, client := newTestClient(t, f)
	login(t, srv, client, "code-1")

	resp, err := client.Get(srv.URL + "/courses/FC-100")
	require.NoError(t, err)
	body := readBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Regnskapskurs")
	assert.Contains(t, body, `name="responsible"`)
	assert.Contains(t, body, `name="notes"`)
}

func TestUI_CoursePageUnknownIs404(t *testing.T) {
	f := newRouterFixture(t)
	srv, client := newTestClient(t, f)
	login(t, srv, client, "code-1")

	resp, err := client.Get(srv.URL + "/courses/FC-404")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUI_UpdateCourseForm(t *testing.T) {
	f := newRouterFixture(t)
	srv, client := newTestClient(t, f)
	login(t, srv, client, "code-1")

	form := url.Values{}
	form.Set("billed", "true")
	form.Set("responsible", "Ola Nordmann")
	form.Set("who_billed", "Kari")
	form.Set("notes", "Avventer faktura")

	resp, err := client.Post(srv.URL+"/courses/FC-100",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/courses/FC-100", resp.Header.Get("Location"))

	course, err := f.repo.GetByFrontcoreID(t.Context(), "FC-100")
	require.NoError(t, err)
	assert.True(t, course.Billed)
	require.NotNil(t, course.Responsible)
	assert.Equal(t, "Ola Nordmann", *course.Responsible)
	assert.Contains(t, f.recorder.Actions(), "update_course")
}

func TestUI_UpdateCourseUncheckedBilledClearsFlag(t *testing.T) {
	billed := testCourse()
	billed.Billed = true
	f := newRouterFixture(t, billed)
	srv, client := newTestClient(t, f)
	login(t, srv, client, "code-1")

	form := url.Values{}
	form.Set("responsible", "Ola")

	resp, err := client.Post(srv.URL+"/courses/FC-100",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	course, err := f.repo.GetByFrontcoreID(t.Context(), "FC-100")
	require.NoError(t, err)
	assert.False(t, course.Billed)
}
