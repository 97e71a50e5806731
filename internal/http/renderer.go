package httpx

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	t      *template.Template
	logger *slog.Logger
}

// NewTemplateRenderer parses the embedded page templates.
func NewTemplateRenderer(logger *slog.Logger) (*TemplateRenderer, error) {
	return newTemplateRendererFromFS(templateFS, logger)
}

func newTemplateRendererFromFS(fsys fs.FS, logger *slog.Logger) (*TemplateRenderer, error) {
	if fsys == nil {
		return nil, errors.New("template filesystem is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	t, err := template.ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{t: t, logger: logger}, nil
}

// Render executes the named template into a buffer first, so a template error
// never produces a half-written page.
func (tr *TemplateRenderer) Render(w http.ResponseWriter, code int, name string, data any) {
	var buf bytes.Buffer
	if err := tr.t.ExecuteTemplate(&buf, name, data); err != nil {
		tr.logger.Error("render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}
