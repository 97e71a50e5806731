package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/k2kurs/kursadmin/internal/domain/model"
	"github.com/k2kurs/kursadmin/internal/service"
)

const dashboardAuditLimit = 10

// UIHandler serves the server-rendered dashboard pages.
type UIHandler struct {
	courses  *service.CourseService
	audit    *service.AuditTrail
	renderer *TemplateRenderer
	logger   *slog.Logger
}

// NewUIHandler constructs a UIHandler.
func NewUIHandler(courses *service.CourseService, audit *service.AuditTrail, renderer *TemplateRenderer, logger *slog.Logger) *UIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UIHandler{courses: courses, audit: audit, renderer: renderer, logger: logger}
}

type dashboardPage struct {
	Title    string
	UserName string
	Search   string
	Courses  []model.Course
	Audit    []model.AuditEntry
}

// Dashboard renders the course overview with the recent activity panel.
func (h *UIHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor := actorName(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	data, err := h.courses.Dashboard(r.Context(), service.ListInput{Search: search, ActorName: actor}, dashboardAuditLimit)
	if err != nil {
		h.logger.Error("load dashboard", "error", err)
		http.Error(w, "Kunne ikke laste kursoversikten.", http.StatusInternalServerError)
		return
	}

	if h.audit != nil {
		h.audit.RecordPageView(r.Context(), actor, "dashboard", "")
	}

	h.renderer.Render(w, http.StatusOK, "dashboard", dashboardPage{
		Title:    "Kursoversikt",
		UserName: actor,
		Search:   search,
		Courses:  data.Courses,
		Audit:    data.Audit,
	})
}

type coursePage struct {
	Title    string
	UserName string
	Course   *model.Course
	Error    string
}

// Course renders the detail page for one course date.
func (h *UIHandler) Course(w http.ResponseWriter, r *http.Request) {
	actor := actorName(r)
	id := r.PathValue("id")

	course, err := h.courses.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("load course", "course", id, "error", err)
		http.Error(w, "Kunne ikke laste kurset.", http.StatusInternalServerError)
		return
	}

	if h.audit != nil {
		h.audit.RecordPageView(r.Context(), actor, "course", id)
	}

	h.renderer.Render(w, http.StatusOK, "course", coursePage{
		Title:    course.Title,
		UserName: actor,
		Course:   course,
	})
}

// UpdateCourse applies the posted admin fields and re-renders the detail page.
func (h *UIHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	actor := actorName(r)
	id := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Ugyldig skjema.", http.StatusBadRequest)
		return
	}

	// An unchecked checkbox sends nothing, so the form always carries a
	// billed value either way.
	billed := r.PostForm.Get("billed") == "true"
	req := model.UpdateCourseRequest{
		Billed:      &billed,
		Responsible: formValue(r, "responsible"),
		WhoBilled:   formValue(r, "who_billed"),
		Notes:       formValue(r, "notes"),
	}

	_, err := h.courses.Update(r.Context(), service.UpdateInput{
		FrontcoreID: id,
		Request:     req,
		ActorName:   actor,
	})
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			http.NotFound(w, r)
			return
		}
		course, getErr := h.courses.Get(r.Context(), id)
		if getErr != nil {
			h.logger.Error("update course", "course", id, "error", err)
			http.Error(w, "Kunne ikke lagre endringene.", http.StatusInternalServerError)
			return
		}
		h.renderer.Render(w, http.StatusUnprocessableEntity, "course", coursePage{
			Title:    course.Title,
			UserName: actor,
			Course:   course,
			Error:    "Kunne ikke lagre endringene: " + err.Error(),
		})
		return
	}

	http.Redirect(w, r, "/courses/"+id, http.StatusSeeOther)
}

func actorName(r *http.Request) string {
	st := GetAuthState(r.Context())
	if st == nil {
		return ""
	}
	return st.Profile.ActorName()
}

func formValue(r *http.Request, key string) *string {
	if !r.PostForm.Has(key) {
		return nil
	}
	v := r.PostForm.Get(key)
	return &v
}
