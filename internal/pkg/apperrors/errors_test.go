package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomError(t *testing.T) {
	err := NewCustomError(ErrNotEligible, "CGPA below the minimum required").
		WithDetails(map[string]any{"minCgpa": 7.5})

	assert.EqualError(t, err, "CGPA below the minimum required")
	assert.ErrorIs(t, err, ErrNotEligible)
	assert.Equal(t, 7.5, err.Details["minCgpa"])

	wrapped := fmt.Errorf("apply: %w", err)
	var ce *CustomError
	assert.True(t, errors.As(wrapped, &ce))
	assert.ErrorIs(t, wrapped, ErrNotEligible)

	assert.EqualError(t, &CustomError{Err: ErrJobClosed}, ErrJobClosed.Error())
	assert.EqualError(t, &CustomError{}, "unknown error")
}

func TestConstructors(t *testing.T) {
	assert.ErrorIs(t, NewBadRequestError("bad cgpa"), ErrBadRequest)
	assert.ErrorIs(t, NewForbiddenError("not your job"), ErrPermissionDenied)
}

func TestIsAny(t *testing.T) {
	err := fmt.Errorf("load: %w", ErrJobNotFound)
	assert.True(t, IsAny(err, ErrApplicationNotFound, ErrJobNotFound))
	assert.False(t, IsAny(err, ErrApplicationNotFound))
	assert.False(t, IsAny(err))
}
