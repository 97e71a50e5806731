//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/k2kurs/kursadmin/internal/errors"
)

const (
	maxResponsibleLen = 255
	maxNotesLen       = 4000
)

// Course represents one scheduled course date ("kursdato") from the
// coursedates table. The frontcore id is the external identifier users see
// and search by; the numeric id is internal.
type Course struct {
	ID               int64      `json:"id"                          db:"id"`
	FrontcoreID      string     `json:"frontcore_id"                db:"frontcore_id"`
	Title            string     `json:"title"                       db:"title"`
	Location         *string    `json:"location,omitempty"          db:"location"`
	StartDate        time.Time  `json:"start_date"                  db:"start_date"`
	EndDate          time.Time  `json:"end_date"                    db:"end_date"`
	StartTime        *string    `json:"start_time,omitempty"        db:"start_time"`
	EndTime          *string    `json:"end_time,omitempty"          db:"end_time"`
	Status           string     `json:"status"                      db:"status"`
	DepartmentNumber *string    `json:"department_number,omitempty" db:"department_number"`
	Billed           bool       `json:"billed"                      db:"billed"`
	Responsible      *string    `json:"responsible,omitempty"       db:"responsible"`
	WhoBilled        *string    `json:"who_billed,omitempty"        db:"who_billed"`
	Notes            *string    `json:"notes,omitempty"             db:"notes"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"        db:"updated_at"`
}

// DisplayStatus returns the Norwegian status label shown in the dashboard.
func (c Course) DisplayStatus() string {
	switch c.Status {
	case "Will run":
		return "Gjennomføres"
	case "To be defined":
		return "Uavklart"
	default:
		return c.Status
	}
}

// DisplayLocation returns the Norwegian venue label shown in the dashboard.
// Courses with no location are online self-paced studies.
func (c Course) DisplayLocation() string {
	loc := ""
	if c.Location != nil {
		loc = strings.TrimSpace(*c.Location)
	}
	switch loc {
	case "":
		return "Nettstudier"
	case "Norway":
		return "Bedriftskurs"
	case "Nett":
		return "Nettundervisning"
	default:
		return loc
	}
}

// TimeRange formats the start/end clock times as "HH:MM - HH:MM", or empty
// when either is missing.
func (c Course) TimeRange() string {
	if c.StartTime == nil || c.EndTime == nil {
		return ""
	}
	return clockPrefix(*c.StartTime) + " - " + clockPrefix(*c.EndTime)
}

func clockPrefix(v string) string {
	if len(v) > 5 {
		return v[:5]
	}
	return v
}

// MatchesSearch reports whether the course matches a case-insensitive
// substring search over title, display location, and display status.
func (c Course) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Title), term) ||
		strings.Contains(strings.ToLower(c.DisplayLocation()), term) ||
		strings.Contains(strings.ToLower(c.DisplayStatus()), term)
}

// UpdateCourseRequest carries the editable administrative fields of a course.
// Nil pointers mean "leave unchanged".
type UpdateCourseRequest struct {
	Billed      *bool   `json:"billed,omitempty"`
	Responsible *string `json:"responsible,omitempty"`
	WhoBilled   *string `json:"who_billed,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// Validate checks field lengths. Values are trimmed at the data layer.
func (r UpdateCourseRequest) Validate() error {
	if r.Responsible != nil && utf8.RuneCountInString(*r.Responsible) > maxResponsibleLen {
		return apperrors.ValidationField("responsible", "Responsible is too long.")
	}
	if r.WhoBilled != nil && utf8.RuneCountInString(*r.WhoBilled) > maxResponsibleLen {
		return apperrors.ValidationField("who_billed", "Who billed is too long.")
	}
	if r.Notes != nil && utf8.RuneCountInString(*r.Notes) > maxNotesLen {
		return apperrors.ValidationField("notes", "Notes are too long.")
	}
	return nil
}

// IsEmpty reports whether the request changes nothing.
func (r UpdateCourseRequest) IsEmpty() bool {
	return r.Billed == nil && r.Responsible == nil && r.WhoBilled == nil && r.Notes == nil
}

// CourseListWindow bounds the course list by start/end date, mirroring the
// reporting window the dashboard shows.
type CourseListWindow struct {
	StartFrom time.Time
	StartTo   time.Time
	EndFrom   time.Time
	EndTo     time.Time
}

// DefaultListWindow returns the rolling window used by the dashboard:
// courses starting within the next two months or ending within roughly the
// current term.
func DefaultListWindow(now time.Time) CourseListWindow {
	day := now.Truncate(24 * time.Hour)
	return CourseListWindow{
		StartFrom: day.AddDate(0, -1, 0),
		StartTo:   day.AddDate(0, 2, 0),
		EndFrom:   day.AddDate(0, -1, 0),
		EndTo:     day.AddDate(0, 5, 0),
	}
}
