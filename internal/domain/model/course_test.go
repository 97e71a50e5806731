package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/k2kurs/kursadmin/internal/errors"
)

func strPtr(s string) *string { return &s }

func TestCourse_DisplayStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"Will run", "Gjennomføres"},
		{"To be defined", "Uavklart"},
		{"Cancelled", "Cancelled"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			c := Course{Status: tt.status}
			assert.Equal(t, tt.want, c.DisplayStatus())
		})
	}
}

func TestCourse_DisplayLocation(t *testing.T) {
	tests := []struct {
		name     string
		location *string
		want     string
	}{
		{"nil location", nil, "Nettstudier"},
		{"empty location", strPtr("  "), "Nettstudier"},
		{"norway", strPtr("Norway"), "Bedriftskurs"},
		{"nett", strPtr("Nett"), "Nettundervisning"},
		{"city", strPtr("Oslo"), "Oslo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Course{Location: tt.location}
			assert.Equal(t, tt.want, c.DisplayLocation())
		})
	}
}

func TestCourse_TimeRange(t *testing.T) {
	c := Course{StartTime: strPtr("09:00:00"), EndTime: strPtr("15:30:00")}
	assert.Equal(t, "09:00 - 15:30", c.TimeRange())

	c = Course{StartTime: strPtr("09:00:00")}
	assert.Empty(t, c.TimeRange())
}

func TestCourse_MatchesSearch(t *testing.T) {
	c := Course{Title: "Truckførerkurs T1", Location: strPtr("Oslo"), Status: "Will run"}

	assert.True(t, c.MatchesSearch(""))
	assert.True(t, c.MatchesSearch("truck"))
	assert.True(t, c.MatchesSearch("oslo"))
	// Search matches the translated status, which is what users see.
	assert.True(t, c.MatchesSearch("gjennom"))
	assert.False(t, c.MatchesSearch("bergen"))
}

func TestUpdateCourseRequest_Validate(t *testing.T) {
	ok := UpdateCourseRequest{Responsible: strPtr("Kari"), Notes: strPtr("ok")}
	require.NoError(t, ok.Validate())

	long := strings.Repeat("x", maxNotesLen+1)
	bad := UpdateCourseRequest{Notes: &long}
	err := bad.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "notes", apperrors.GetField(err))
}

func TestUpdateCourseRequest_IsEmpty(t *testing.T) {
	assert.True(t, UpdateCourseRequest{}.IsEmpty())
	b := true
	assert.False(t, UpdateCourseRequest{Billed: &b}.IsEmpty())
}

func TestDefaultListWindow(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	w := DefaultListWindow(now)
	assert.True(t, w.StartFrom.Before(now))
	assert.True(t, w.StartTo.After(now))
	assert.True(t, w.EndTo.After(w.StartTo))
}
