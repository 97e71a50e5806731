package bootstrap

import (
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/k2kurs/kursadmin/config"
	"github.com/k2kurs/kursadmin/internal/data"
	"github.com/k2kurs/kursadmin/internal/ports"
	"github.com/k2kurs/kursadmin/internal/service"
)

// ServiceContainer holds the wired application services.
type ServiceContainer struct {
	Sessions *service.SessionManager
	Gate     *service.AuthGate
	Audit    *service.AuditTrail
	Courses  *service.CourseService
}

// ServicesConfig groups the dependencies for BuildServices.
type ServicesConfig struct {
	Config   *config.AppConfig
	DB       *sql.DB
	Redis    redis.UniversalClient // nil disables the course cache
	Provider ports.AuthProvider
	Logger   *slog.Logger
}

// BuildServices wires repositories into the service layer.
func BuildServices(cfg ServicesConfig) ServiceContainer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	auditTrail := service.NewAuditTrail(service.AuditTrailOptions{
		Recorder: data.NewAuditRepo(cfg.DB),
		Logger:   logger,
	})

	sessions := service.NewSessionManager(service.SessionManagerOptions{
		Store:  data.NewSessionRepo(cfg.DB),
		Logger: logger,
		TTL:    cfg.Config.Auth.SessionTTL,
	})

	gate := service.NewAuthGate(service.AuthGateOptions{
		Provider: cfg.Provider,
		Sessions: sessions,
		Audit:    auditTrail,
		Logger:   logger,
	})

	var cache ports.CacheRepository
	if cfg.Redis != nil {
		cache = data.NewRedisCacheRepo(cfg.Redis)
	}
	courses := service.NewCourseService(service.CourseServiceOptions{
		Repo:     data.NewCourseRepo(cfg.DB),
		Cache:    cache,
		Audit:    auditTrail,
		Logger:   logger,
		CacheTTL: cfg.Config.Cache.CourseTTL,
	})

	return ServiceContainer{
		Sessions: sessions,
		Gate:     gate,
		Audit:    auditTrail,
		Courses:  courses,
	}
}
