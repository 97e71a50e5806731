package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/k2kurs/kursadmin/internal/domain/model"
	"github.com/k2kurs/kursadmin/internal/service"
)

// CourseHandler serves the JSON course API.
type CourseHandler struct {
	courses *service.CourseService
	audit   *service.AuditTrail
	logger  *slog.Logger
}

// NewCourseHandler constructs a CourseHandler.
func NewCourseHandler(courses *service.CourseService, audit *service.AuditTrail, logger *slog.Logger) *CourseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CourseHandler{courses: courses, audit: audit, logger: logger}
}

// List returns the courses in the current window, optionally filtered by a
// search term.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.List(r.Context(), service.ListInput{
		Search:    r.URL.Query().Get("search"),
		ActorName: actorName(r),
	})
	if err != nil {
		h.logger.Error("list courses", "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

// Get returns a single course by Frontcore id.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, err := h.courses.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		h.logger.Error("get course", "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, course)
}

// Update applies the administrative fields from a JSON body.
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCourseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	course, err := h.courses.Update(r.Context(), service.UpdateInput{
		FrontcoreID: r.PathValue("id"),
		Request:     req,
		ActorName:   actorName(r),
	})
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		h.logger.Error("update course", "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, course)
}

// AuditLog returns the most recent audit entries, newest first.
func (h *CourseHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "validation",
				Err:     errors.New("limit must be between 1 and 500"),
			})
			return
		}
		limit = n
	}

	entries, err := h.audit.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list audit entries", "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
