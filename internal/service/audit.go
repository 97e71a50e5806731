package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/k2kurs/kursadmin/internal/domain/model"
	"github.com/k2kurs/kursadmin/internal/ports"
)

// Audit action names.
const (
	ActionLoginSuccess = "login_success"
	ActionLoginFailure = "login_failure"
	ActionLogout       = "logout"
	ActionPageView     = "page_view"
	ActionUpdateCourse = "update_course"
	ActionSearch       = "search"
)

// Audit table references.
const (
	auditTableAuth    = "authentication"
	auditTableCourses = "coursedates"
)

// AuditTrailOptions groups dependencies for AuditTrail.
type AuditTrailOptions struct {
	Recorder ports.AuditRecorder
	Logger   *slog.Logger
}

// AuditTrail appends audit entries. Recording never fails the calling
// operation; a write error is logged and dropped.
type AuditTrail struct {
	recorder ports.AuditRecorder
	logger   *slog.Logger
	nav      *NavigationFilter
}

// NewAuditTrail constructs an AuditTrail.
func NewAuditTrail(opts AuditTrailOptions) *AuditTrail {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditTrail{
		recorder: opts.Recorder,
		logger:   logger,
		nav:      NewNavigationFilter(),
	}
}

// Record appends one entry, swallowing any recorder error.
func (t *AuditTrail) Record(ctx context.Context, entry model.AuditEntry) {
	if entry.UserName == "" || entry.Action == "" {
		return
	}
	if err := t.recorder.Insert(ctx, entry); err != nil {
		t.logger.Warn("audit write failed",
			"action", entry.Action, "user", entry.UserName, "error", err)
	}
}

// RecordLogin notes a completed or failed sign-in attempt.
func (t *AuditTrail) RecordLogin(ctx context.Context, userName string, success bool) {
	action := ActionLoginSuccess
	if !success {
		action = ActionLoginFailure
	}
	table := auditTableAuth
	t.Record(ctx, model.AuditEntry{
		UserName:  userName,
		Action:    action,
		TableName: &table,
	})
}

// RecordLogout notes a sign-out.
func (t *AuditTrail) RecordLogout(ctx context.Context, userName string) {
	table := auditTableAuth
	t.Record(ctx, model.AuditEntry{
		UserName:  userName,
		Action:    ActionLogout,
		TableName: &table,
	})
}

// RecordPageView notes a navigation event. Consecutive views of the same
// page and course by the same user are collapsed into one entry.
func (t *AuditTrail) RecordPageView(ctx context.Context, userName, page, courseID string) {
	if !t.nav.ShouldLog(userName, page, courseID) {
		return
	}
	entry := model.AuditEntry{
		UserName: userName,
		Action:   ActionPageView,
		RecordID: &page,
	}
	if courseID != "" {
		table := auditTableCourses
		entry.TableName = &table
		entry.RecordID = &courseID
	}
	t.Record(ctx, entry)
}

// RecordCourseUpdate notes an administrative edit of a course.
func (t *AuditTrail) RecordCourseUpdate(ctx context.Context, userName, frontcoreID string) {
	table := auditTableCourses
	t.Record(ctx, model.AuditEntry{
		UserName:  userName,
		Action:    ActionUpdateCourse,
		TableName: &table,
		RecordID:  &frontcoreID,
	})
}

// RecordSearch notes a course search.
func (t *AuditTrail) RecordSearch(ctx context.Context, userName, query string) {
	if query == "" {
		return
	}
	table := auditTableCourses
	t.Record(ctx, model.AuditEntry{
		UserName:  userName,
		Action:    ActionSearch,
		TableName: &table,
		RecordID:  &query,
	})
}

// ForgetNavigation drops the user's navigation dedup position.
func (t *AuditTrail) ForgetNavigation(userName string) {
	t.nav.Forget(userName)
}

// ListRecent returns the newest audit entries.
func (t *AuditTrail) ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	return t.recorder.ListRecent(ctx, limit)
}

// navKey identifies one navigation position.
type navKey struct {
	page     string
	courseID string
}

// NavigationFilter suppresses repeated page-view entries. Only a change of
// page or course relative to the user's previous view produces a log entry.
type NavigationFilter struct {
	mu   sync.Mutex
	last map[string]navKey
}

// NewNavigationFilter constructs an empty NavigationFilter.
func NewNavigationFilter() *NavigationFilter {
	return &NavigationFilter{last: make(map[string]navKey)}
}

// ShouldLog reports whether this view differs from the user's previous one,
// and records it as the new previous view.
func (f *NavigationFilter) ShouldLog(userName, page, courseID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := navKey{page: page, courseID: courseID}
	if prev, ok := f.last[userName]; ok && prev == key {
		return false
	}
	f.last[userName] = key
	return true
}

// Forget drops the stored position for a user, typically on logout.
func (f *NavigationFilter) Forget(userName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.last, userName)
}
