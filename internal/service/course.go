package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/k2kurs/kursadmin/internal/data"
	"github.com/k2kurs/kursadmin/internal/domain/model"
	"github.com/k2kurs/kursadmin/internal/ports"
)

// courseListCacheKey caches the raw (unfiltered) course list for the
// default window.
const courseListCacheKey = "kursadmin:courses:list"

// DefaultCourseCacheTTL bounds staleness of the cached course list.
const DefaultCourseCacheTTL = 2 * time.Minute

// ErrCourseNotFound is returned when a course cannot be located.
var ErrCourseNotFound = errors.New("course not found")

// CourseServiceOptions groups dependencies for CourseService.
type CourseServiceOptions struct {
	Repo     ports.CourseRepository
	Cache    ports.CacheRepository // optional; nil disables caching
	Audit    *AuditTrail
	Logger   *slog.Logger
	Now      func() time.Time // defaults to time.Now
	CacheTTL time.Duration    // defaults to DefaultCourseCacheTTL
}

// CourseService serves the dashboard's course listing and the local
// administrative edits layered on top of the imported course data.
type CourseService struct {
	repo     ports.CourseRepository
	cache    ports.CacheRepository
	audit    *AuditTrail
	logger   *slog.Logger
	now      func() time.Time
	cacheTTL time.Duration
}

// NewCourseService constructs a CourseService.
func NewCourseService(opts CourseServiceOptions) *CourseService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCourseCacheTTL
	}
	return &CourseService{
		repo:     opts.Repo,
		cache:    opts.Cache,
		audit:    opts.Audit,
		logger:   logger,
		now:      now,
		cacheTTL: ttl,
	}
}

// ListInput controls the course listing.
type ListInput struct {
	Search    string
	ActorName string
}

// List returns the courses in the default window, filtered by the search
// term when one is given. The unfiltered list is served from cache when
// possible; cache trouble falls through to the database.
func (s *CourseService) List(ctx context.Context, in ListInput) ([]model.Course, error) {
	courses, err := s.loadCourses(ctx)
	if err != nil {
		return nil, err
	}

	if in.Search != "" {
		filtered := make([]model.Course, 0, len(courses))
		for _, c := range courses {
			if c.MatchesSearch(in.Search) {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
		if s.audit != nil && in.ActorName != "" {
			s.audit.RecordSearch(ctx, in.ActorName, in.Search)
		}
	}
	return courses, nil
}

// loadCourses fetches the default-window course list, cache first.
func (s *CourseService) loadCourses(ctx context.Context) ([]model.Course, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, courseListCacheKey); err != nil {
			s.logger.Warn("course cache read failed", "error", err)
		} else if raw != nil {
			var cached []model.Course
			if unmarshalErr := json.Unmarshal(raw, &cached); unmarshalErr == nil {
				return cached, nil
			}
			s.logger.Warn("dropping undecodable course cache entry")
			_, _ = s.cache.Delete(ctx, courseListCacheKey)
		}
	}

	courses, err := s.repo.List(ctx, model.DefaultListWindow(s.now()))
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	if s.cache != nil {
		if raw, marshalErr := json.Marshal(courses); marshalErr == nil {
			if cacheErr := s.cache.Set(ctx, courseListCacheKey, raw, s.cacheTTL); cacheErr != nil {
				s.logger.Warn("course cache write failed", "error", cacheErr)
			}
		}
	}
	return courses, nil
}

// Get returns a single course by Frontcore id.
func (s *CourseService) Get(ctx context.Context, frontcoreID string) (*model.Course, error) {
	if frontcoreID == "" {
		return nil, errors.New("course id is required")
	}
	course, err := s.repo.GetByFrontcoreID(ctx, frontcoreID)
	if err != nil {
		if errors.Is(err, data.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// UpdateInput groups parameters for Update.
type UpdateInput struct {
	FrontcoreID string
	Request     model.UpdateCourseRequest
	ActorName   string
}

// Update applies the administrative fields, records the edit and drops the
// cached list. An empty request is a no-op that returns the current row.
func (s *CourseService) Update(ctx context.Context, in UpdateInput) (*model.Course, error) {
	if in.FrontcoreID == "" {
		return nil, errors.New("course id is required")
	}
	if err := in.Request.Validate(); err != nil {
		return nil, err
	}
	if in.Request.IsEmpty() {
		return s.Get(ctx, in.FrontcoreID)
	}

	course, err := s.repo.UpdateAdminFields(ctx, in.FrontcoreID, in.Request)
	if err != nil {
		if errors.Is(err, data.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("update course: %w", err)
	}

	if s.audit != nil && in.ActorName != "" {
		s.audit.RecordCourseUpdate(ctx, in.ActorName, in.FrontcoreID)
	}
	if s.cache != nil {
		if _, cacheErr := s.cache.Delete(ctx, courseListCacheKey); cacheErr != nil {
			s.logger.Warn("course cache invalidation failed", "error", cacheErr)
		}
	}
	return course, nil
}

// DashboardData is everything the dashboard page renders.
type DashboardData struct {
	Courses []model.Course
	Audit   []model.AuditEntry
}

// Dashboard loads courses and recent audit entries in parallel.
func (s *CourseService) Dashboard(ctx context.Context, in ListInput, auditLimit int) (*DashboardData, error) {
	var out DashboardData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		courses, err := s.List(gctx, in)
		if err != nil {
			return err
		}
		out.Courses = courses
		return nil
	})
	g.Go(func() error {
		if s.audit == nil {
			return nil
		}
		entries, err := s.audit.ListRecent(gctx, auditLimit)
		if err != nil {
			// The audit panel is auxiliary; render the dashboard without it.
			s.logger.Warn("audit listing failed", "error", err)
			return nil
		}
		out.Audit = entries
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
