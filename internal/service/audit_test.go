package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k2kurs/kursadmin/internal/domain/model"
	mockauth "github.com/k2kurs/kursadmin/internal/mocks/auth"
)

func newTrail(recorder *mockauth.MemoryAuditRecorder) *AuditTrail {
	return NewAuditTrail(AuditTrailOptions{Recorder: recorder, Logger: testLogger()})
}

func TestAuditTrail_Record(t *testing.T) {
	recorder := mockauth.NewMemoryAuditRecorder()
	trail := newTrail(recorder)

	trail.Record(context.Background(), model.AuditEntry{UserName: "Kari", Action: "page_view"})
	require.Len(t, recorder.Entries, 1)
	assert.Equal(t, "page_view", recorder.Entries[0].Action)
}

func TestAuditTrail_RecordSwallowsErrors(t *testing.T) {
	recorder := mockauth.NewMemoryAuditRecorder()
	recorder.FailInsert = errors.New("db down")
	trail := newTrail(recorder)

	// Must not panic or surface the failure.
	trail.Record(context.Background(), model.AuditEntry{UserName: "Kari", Action: "page_view"})
	trail.RecordLogin(context.Background(), "Kari", true)
	trail.RecordCourseUpdate(context.Background(), "Kari", "FC-1")
	assert.Empty(t, recorder.Entries)
}

func TestAuditTrail_RecordSkipsIncompleteEntries(t *testing.T) {
	recorder := mockauth.NewMemoryAuditRecorder()
	trail := newTrail(recorder)

	trail.Record(context.Background(), model.AuditEntry{Action: "page_view"})
	trail.Record(context.Background(), model.AuditEntry{UserName: "Kari"})
	assert.Empty(t, recorder.Entries)
}

func TestAuditTrail_RecordLogin(t *testing.T) {
	recorder := mockauth.NewMemoryAuditRecorder()
	trail := newTrail(recorder)

	trail.RecordLogin(context.Background(), "Kari", true)
	trail.RecordLogin(context.Background(), "Kari", false)

	assert.Equal(t, []string{ActionLoginSuccess, ActionLoginFailure}, recorder.Actions())
	require.NotNil(t, recorder.Entries[0].TableName)
	assert.Equal(t, "authentication", *recorder.Entries[0].TableName)
}

func TestAuditTrail_RecordPageView_DedupsRepeats(t *testing.T) {
	recorder := mockauth.NewMemoryAuditRecorder()
	trail := newTrail(recorder)
	ctx := context.Background()

	trail.RecordPageView(ctx, "Kari", "dashboard", "")
	trail.RecordPageView(ctx, "Kari", "dashboard", "")
	trail.RecordPageView(ctx, "Kari", "dashboard", "")
	assert.Len(t, recorder.Entries, 1)

	// A different course on the same page is a new position.
	trail.RecordPageView(ctx, "Kari", "course", "FC-1")
	trail.RecordPageView(ctx, "Kari", "course", "FC-1")
	trail.RecordPageView(ctx, "Kari", "course", "FC-2")
	assert.Len(t, recorder.Entries, 3)

	// Returning to an earlier position logs again.
	trail.RecordPageView(ctx, "Kari", "dashboard", "")
	assert.Len(t, recorder.Entries, 4)
}

func TestAuditTrail_RecordPageView_PerUser(t *testing.T) {
	recorder := mockauth.NewMemoryAuditRecorder()
	trail := newTrail(recorder)
	ctx := context.Background()

	trail.RecordPageView(ctx, "Kari", "dashboard", "")
	trail.RecordPageView(ctx, "Ola", "dashboard", "")
	assert.Len(t, recorder.Entries, 2)
}

func TestAuditTrail_ForgetNavigation(t *testing.T) {
	recorder := mockauth.NewMemoryAuditRecorder()
	trail := newTrail(recorder)
	ctx := context.Background()

	trail.RecordPageView(ctx, "Kari", "dashboard", "")
	trail.ForgetNavigation("Kari")
	trail.RecordPageView(ctx, "Kari", "dashboard", "")
	assert.Len(t, recorder.Entries, 2)
}

func TestAuditTrail_RecordSearch(t *testing.T) {
	recorder := mockauth.NewMemoryAuditRecorder()
	trail := newTrail(recorder)

	trail.RecordSearch(context.Background(), "Kari", "sveise")
	trail.RecordSearch(context.Background(), "Kari", "")

	require.Len(t, recorder.Entries, 1)
	require.NotNil(t, recorder.Entries[0].RecordID)
	assert.Equal(t, "sveise", *recorder.Entries[0].RecordID)
}

func TestNavigationFilter_ShouldLog(t *testing.T) {
	f := NewNavigationFilter()

	assert.True(t, f.ShouldLog("u", "a", ""))
	assert.False(t, f.ShouldLog("u", "a", ""))
	assert.True(t, f.ShouldLog("u", "a", "1"))
	assert.True(t, f.ShouldLog("u", "a", ""))
	assert.True(t, f.ShouldLog("v", "a", ""))
}
