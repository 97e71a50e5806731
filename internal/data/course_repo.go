package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/k2kurs/kursadmin/internal/data/pgxutil"
	"github.com/k2kurs/kursadmin/internal/domain/model"
	apperrors "github.com/k2kurs/kursadmin/internal/errors"
)

// ErrCourseNotFound is returned when a course is not found.
var ErrCourseNotFound = errors.New("course not found")

// CourseRepo provides database operations for course dates.
type CourseRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCourseRepo creates a new CourseRepo with real time provider.
func NewCourseRepo(db *sql.DB) *CourseRepo {
	return &CourseRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewCourseRepoWithTimeProvider creates a new CourseRepo with a custom time provider (useful for tests).
func NewCourseRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *CourseRepo {
	return &CourseRepo{DB: db, timeProvider: tp}
}

const courseColumns = `
	id, frontcore_id, title, location, start_date, end_date, start_time, end_time,
	status, department_number, billed, responsible, who_billed, notes, updated_at`

const courseListQuery = `
	SELECT ` + courseColumns + `
	FROM coursedates
	WHERE (start_date BETWEEN $1 AND $2) OR (end_date BETWEEN $3 AND $4)
	ORDER BY start_date ASC, title ASC`

const courseGetByFrontcoreIDQuery = `
	SELECT ` + courseColumns + `
	FROM coursedates
	WHERE frontcore_id = $1`

// List retrieves courses whose start date or end date falls inside the window.
func (r *CourseRepo) List(ctx context.Context, window model.CourseListWindow) ([]model.Course, error) {
	var out []model.Course
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, courseListQuery,
			window.StartFrom, window.StartTo, window.EndFrom, window.EndTo)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Course])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// GetByFrontcoreID retrieves a course by its external Frontcore id.
func (r *CourseRepo) GetByFrontcoreID(ctx context.Context, frontcoreID string) (*model.Course, error) {
	var course model.Course
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, courseGetByFrontcoreIDQuery, frontcoreID)
		if err != nil {
			return err
		}
		defer rows.Close()
		course, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Course])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", apperrors.MapDBError(err))
	}
	return &course, nil
}

// UpdateAdminFields updates the locally editable fields of a course. Fields
// left nil in the request are not touched.
func (r *CourseRepo) UpdateAdminFields(
	ctx context.Context,
	frontcoreID string,
	req model.UpdateCourseRequest,
) (*model.Course, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Course
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		setClause, args := r.buildUpdateClause(req)
		if setClause == "" {
			rows, err := conn.Query(ctx, courseGetByFrontcoreIDQuery, frontcoreID)
			if err != nil {
				return err
			}
			defer rows.Close()
			var e error
			out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Course])
			return e
		}
		args = append(args, frontcoreID)
		query := "UPDATE coursedates SET " + setClause +
			" WHERE frontcore_id = $" + strconv.Itoa(len(args)) +
			" RETURNING " + courseColumns
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Course])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// buildUpdateClause builds the SQL SET clause and args for updating a course.
func (r *CourseRepo) buildUpdateClause(req model.UpdateCourseRequest) (string, []any) {
	setParts := make([]string, 0, 5)
	args := make([]any, 0, 6)
	nextIdx := func() int { return len(args) + 1 }

	if req.Billed != nil {
		setParts = append(setParts, fmt.Sprintf("billed = $%d", nextIdx()))
		args = append(args, *req.Billed)
	}
	if req.Responsible != nil {
		setParts = append(setParts, fmt.Sprintf("responsible = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Responsible))
	}
	if req.WhoBilled != nil {
		setParts = append(setParts, fmt.Sprintf("who_billed = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.WhoBilled))
	}
	if req.Notes != nil {
		setParts = append(setParts, fmt.Sprintf("notes = $%d", nextIdx()))
		args = append(args, *req.Notes)
	}

	if len(setParts) == 0 {
		return "", nil
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())
	return strings.Join(setParts, ", "), args
}
