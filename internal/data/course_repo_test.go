package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k2kurs/kursadmin/internal/domain/model"
	"github.com/k2kurs/kursadmin/internal/testutil"
)

func insertTestCourse(t *testing.T, db *sql.DB, frontcoreID string, start time.Time) {
	t.Helper()
	insertTestCourseSpan(t, db, frontcoreID, start, start.Add(8*time.Hour))
}

func insertTestCourseSpan(t *testing.T, db *sql.DB, frontcoreID string, start, end time.Time) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO coursedates (frontcore_id, title, location, start_date, end_date, start_time, end_time, status)
		VALUES ($1, $2, 'Norway', $3, $4, '09:00', '16:00', 'Will run')
	`, frontcoreID, "Kurs "+frontcoreID, start, end)
	require.NoError(t, err)
}

func TestCourseRepo_List(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCourseRepo(db)

		now := time.Now()
		insertTestCourse(t, db, "FC-1", now.Add(24*time.Hour))
		insertTestCourse(t, db, "FC-2", now.Add(48*time.Hour))
		insertTestCourse(t, db, "FC-OLD", now.Add(-90*24*time.Hour))

		window := model.CourseListWindow{
			StartFrom: now.Add(-time.Hour),
			StartTo:   now.Add(30 * 24 * time.Hour),
			EndFrom:   now.Add(-time.Hour),
			EndTo:     now.Add(30 * 24 * time.Hour),
		}
		courses, err := repo.List(ctx, window)
		require.NoError(t, err)
		require.Len(t, courses, 2)
		// Ordered by start date ascending.
		assert.Equal(t, "FC-1", courses[0].FrontcoreID)
		assert.Equal(t, "FC-2", courses[1].FrontcoreID)
	})
}

func TestCourseRepo_ListIncludesCoursesEndingInWindow(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCourseRepo(db)

		now := time.Now()
		// Started long before the start window but still running into it.
		insertTestCourseSpan(t, db, "FC-LONG", now.Add(-120*24*time.Hour), now.Add(7*24*time.Hour))
		// Both started and ended before either window opens.
		insertTestCourseSpan(t, db, "FC-DONE", now.Add(-120*24*time.Hour), now.Add(-100*24*time.Hour))

		courses, err := repo.List(ctx, model.CourseListWindow{
			StartFrom: now.Add(-time.Hour),
			StartTo:   now.Add(60 * 24 * time.Hour),
			EndFrom:   now.Add(-time.Hour),
			EndTo:     now.Add(150 * 24 * time.Hour),
		})
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "FC-LONG", courses[0].FrontcoreID)
	})
}

func TestCourseRepo_GetByFrontcoreID(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCourseRepo(db)

		insertTestCourse(t, db, "FC-7", time.Now().Add(24*time.Hour))

		course, err := repo.GetByFrontcoreID(ctx, "FC-7")
		require.NoError(t, err)
		assert.Equal(t, "Kurs FC-7", course.Title)
		assert.False(t, course.Billed)

		_, err = repo.GetByFrontcoreID(ctx, "FC-MISSING")
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestCourseRepo_UpdateAdminFields(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		fixed := testutil.TestTime()
		repo := NewCourseRepoWithTimeProvider(db, NewFixedTimeProvider(fixed))

		insertTestCourse(t, db, "FC-9", time.Now().Add(24*time.Hour))

		updated, err := repo.UpdateAdminFields(ctx, "FC-9", model.UpdateCourseRequest{
			Billed:      testutil.BoolPtr(true),
			Responsible: testutil.StringPtr("  Ola  "),
			Notes:       testutil.StringPtr("faktura sendt"),
		})
		require.NoError(t, err)
		assert.True(t, updated.Billed)
		require.NotNil(t, updated.Responsible)
		assert.Equal(t, "Ola", *updated.Responsible)
		require.NotNil(t, updated.Notes)
		assert.Equal(t, "faktura sendt", *updated.Notes)
		require.NotNil(t, updated.UpdatedAt)
		assert.True(t, updated.UpdatedAt.Equal(fixed))
		// Untouched fields keep their values.
		require.NotNil(t, updated.Location)
		assert.Equal(t, "Norway", *updated.Location)
	})
}

func TestCourseRepo_UpdateAdminFields_EmptyRequestReturnsCurrent(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCourseRepo(db)

		insertTestCourse(t, db, "FC-10", time.Now().Add(24*time.Hour))

		course, err := repo.UpdateAdminFields(ctx, "FC-10", model.UpdateCourseRequest{})
		require.NoError(t, err)
		assert.Equal(t, "FC-10", course.FrontcoreID)
		assert.Nil(t, course.UpdatedAt)
	})
}

func TestCourseRepo_UpdateAdminFields_NotFound(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewCourseRepo(db)
		_, err := repo.UpdateAdminFields(context.Background(), "FC-NOPE", model.UpdateCourseRequest{
			Billed: testutil.BoolPtr(true),
		})
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestCourseRepo_UpdateAdminFields_ValidationError(t *testing.T) {
	repo := NewCourseRepo(nil)
	long := make([]byte, 0, 600)
	for range 600 {
		long = append(long, 'a')
	}
	_, err := repo.UpdateAdminFields(context.Background(), "FC-1", model.UpdateCourseRequest{
		Responsible: testutil.StringPtr(string(long)),
	})
	assert.Error(t, err)
}

func TestCourseRepo_ListEmptyWindow(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewCourseRepo(db)
		courses, err := repo.List(context.Background(), model.CourseListWindow{
			StartFrom: time.Now(),
			StartTo:   time.Now().Add(time.Hour),
			EndFrom:   time.Now(),
			EndTo:     time.Now().Add(time.Hour),
		})
		require.NoError(t, err)
		assert.Empty(t, courses)
	})
}
