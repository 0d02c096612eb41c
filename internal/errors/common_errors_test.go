package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "parsing error type", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "storage error type", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation error type", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "not found error type", errType: ErrTypeNotFound, expected: "NOT_FOUND"},
		{name: "render error type", errType: ErrTypeRender, expected: "RENDER"},
		{name: "config error type", errType: ErrTypeConfig, expected: "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewValidationError("week out of range", nil)
		assert.Equal(t, "[VALIDATION] week out of range", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := fmt.Errorf("disk full")
		err := NewStorageError("save figure", cause)
		assert.Equal(t, "[STORAGE] save figure: disk full", err.Error())
	})
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewParsingError("read table", MissingColumn("WEEK"))

	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), `"WEEK"`)

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeParsing, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeRender, Message: "draw panel"}
	err.WithContext("panel", 3).WithContext("entity", "FURNITURE")

	assert.Equal(t, 3, err.Context["panel"])
	assert.Equal(t, "FURNITURE", err.Context["entity"])
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name    string
		err     *AppError
		errType ErrorType
	}{
		{"parsing", NewParsingError("m", cause), ErrTypeParsing},
		{"storage", NewStorageError("m", cause), ErrTypeStorage},
		{"validation", NewValidationError("m", nil), ErrTypeValidation},
		{"not found", NewNotFoundError("sheet"), ErrTypeNotFound},
		{"render", NewRenderError("m", cause), ErrTypeRender},
		{"config", NewConfigError("m", cause), ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}

	assert.Equal(t, "sheet not found", NewNotFoundError("sheet").Message)
}

func TestIsType(t *testing.T) {
	inner := NewParsingError("bad cell", nil)
	outer := NewRenderError("render", fmt.Errorf("panel 2: %w", inner))

	assert.True(t, IsType(outer, ErrTypeRender))
	assert.True(t, IsType(outer, ErrTypeParsing))
	assert.False(t, IsType(outer, ErrTypeStorage))
	assert.False(t, IsType(errors.New("plain"), ErrTypeRender))
	assert.False(t, IsType(nil, ErrTypeRender))
}
