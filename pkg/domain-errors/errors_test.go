package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := New(CodeConflict, "stale status")

	assert.True(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
	assert.False(t, HasCode(nil, CodeConflict))
}

func TestHasCodeThroughWrapping(t *testing.T) {
	inner := New(CodeNotFound, "application not found")
	wrapped := fmt.Errorf("loading application: %w", inner)

	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.Equal(t, CodeNotFound, GetCode(wrapped))
}

func TestWrapKeepsCauseReachable(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "could not load application")

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "INTERNAL")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGetCodeFallsBackToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, GetCode(errors.New("some infra failure")))
}

func TestAddFieldViolationAccumulates(t *testing.T) {
	err := New(CodeValidation, "invalid request").
		AddFieldViolation("file_name", "file_name is required").
		AddFieldViolation("file_name", "file_name must not contain path separators").
		AddFieldViolation("content_type", "content_type is required")

	fields := FieldsOf(err)
	assert.Len(t, fields["file_name"], 2)
	assert.Len(t, fields["content_type"], 1)
}

func TestFieldsOfNonDomainError(t *testing.T) {
	assert.Nil(t, FieldsOf(errors.New("plain")))
}
