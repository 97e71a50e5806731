package httpx

import (
	"log/slog"
	"net/http"

	"github.com/k2kurs/kursadmin/internal/service"
)

// RouterServices holds the dependencies the router wires into handlers.
type RouterServices struct {
	Logger   *slog.Logger
	Sessions *Sessions
	Gate     *service.AuthGate
	Courses  *service.CourseService
	Audit    *service.AuditTrail
	Renderer *TemplateRenderer
}

// NewRouter builds the full HTTP handler: health and auth endpoints are open,
// everything else sits behind the session middleware and the auth gate.
func NewRouter(svc RouterServices) http.Handler {
	if svc.Logger == nil {
		svc.Logger = slog.Default()
	}

	mux := http.NewServeMux()

	registerHealthRoutes(mux)
	registerAuthRoutes(mux, svc)
	registerCourseRoutes(mux, svc)

	var handler http.Handler = mux
	handler = svc.Sessions.Attach(handler)
	handler = Recover(svc.Logger)(handler)
	handler = Logging(svc.Logger)(handler)
	return handler
}

func registerAuthRoutes(mux *http.ServeMux, svc RouterServices) {
	h := NewAuthHandler(svc.Gate, svc.Logger)
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("GET /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

func registerCourseRoutes(mux *http.ServeMux, svc RouterServices) {
	guard := svc.Sessions.RequireAuth

	ui := NewUIHandler(svc.Courses, svc.Audit, svc.Renderer, svc.Logger)
	mux.Handle("GET /{$}", guard(http.HandlerFunc(ui.Dashboard)))
	mux.Handle("GET /courses/{id}", guard(http.HandlerFunc(ui.Course)))
	mux.Handle("POST /courses/{id}", guard(http.HandlerFunc(ui.UpdateCourse)))

	api := NewCourseHandler(svc.Courses, svc.Audit, svc.Logger)
	mux.Handle("GET /api/courses", guard(http.HandlerFunc(api.List)))
	mux.Handle("GET /api/courses/{id}", guard(http.HandlerFunc(api.Get)))
	mux.Handle("PATCH /api/courses/{id}", guard(http.HandlerFunc(api.Update)))
	mux.Handle("GET /api/audit", guard(http.HandlerFunc(api.AuditLog)))
}
