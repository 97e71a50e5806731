package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	base := errors.New("boom")

	err := Wrap(base, ErrCodeInternal, "saving session")
	assert.Equal(t, "saving session: boom", err.Error())

	plain := NotFound("course not found")
	assert.Equal(t, "course not found", plain.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(base, ErrCodeInternal, "wrapped")

	require.ErrorIs(t, err, base)
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "ignored %d", 1))
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFound("x"), IsNotFound},
		{"conflict", Conflict("x"), IsConflict},
		{"validation", Validation("x"), IsValidation},
		{"unavailable", Unavailable("x"), IsUnavailable},
		{"internal", Internal("x"), IsInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.False(t, tt.check(errors.New("plain")))
		})
	}
}

func TestCodePredicates_WrappedDeep(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("inner"))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, ErrCodeNotFound, GetCode(err))
}

func TestGetField(t *testing.T) {
	err := ValidationField("notes", "too long")
	assert.Equal(t, "notes", GetField(err))
	assert.Empty(t, GetField(errors.New("plain")))
}
