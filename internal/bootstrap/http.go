package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/k2kurs/kursadmin/config"
	"github.com/k2kurs/kursadmin/internal/data/cryptoutil"
	httpx "github.com/k2kurs/kursadmin/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config    *config.AppConfig
	Services  ServiceContainer
	Encryptor cryptoutil.Encryptor
	Logger    *slog.Logger
}

// StartHTTPServer builds the router and starts listening. The returned server
// is handed back for graceful shutdown.
func StartHTTPServer(cfg HTTPServerConfig) (*http.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer, err := httpx.NewTemplateRenderer(logger)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	sessions := httpx.NewSessions(cfg.Encryptor, cfg.Services.Gate, logger)
	handler := httpx.NewRouter(httpx.RouterServices{
		Logger:   logger,
		Sessions: sessions,
		Gate:     cfg.Services.Gate,
		Courses:  cfg.Services.Courses,
		Audit:    cfg.Services.Audit,
		Renderer: renderer,
	})

	server := &http.Server{
		Addr:         cfg.Config.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Config.HTTP.ReadTimeout,
		WriteTimeout: cfg.Config.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", serveErr)
		}
	}()

	return server, nil
}

// ShutdownHTTPServer drains in-flight requests within the configured timeout.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, cfg *config.AppConfig, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
		return
	}
	logger.Info("HTTP server stopped")
}
