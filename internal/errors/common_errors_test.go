package errors

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
	}{
		{
			name:     "parsing with cause",
			err:      NewParsingError("invalid multipart form", errors.New("unexpected EOF")),
			wantType: ErrTypeParsing,
			wantMsg:  "[PARSING] invalid multipart form: unexpected EOF",
		},
		{
			name:     "storage",
			err:      NewStorageError("export failed", fs.ErrPermission),
			wantType: ErrTypeStorage,
			wantMsg:  "[STORAGE] export failed: permission denied",
		},
		{
			name:     "validation",
			err:      NewAppError(ErrTypeValidation, "window must be positive", nil),
			wantType: ErrTypeValidation,
			wantMsg:  "[VALIDATION] window must be positive",
		},
		{
			name:     "not found",
			err:      NewAppError(ErrTypeNotFound, "run not found", nil),
			wantType: ErrTypeNotFound,
			wantMsg:  "[NOT_FOUND] run not found",
		},
		{
			name:     "config",
			err:      NewConfigError("bad config", nil),
			wantType: ErrTypeConfig,
			wantMsg:  "[CONFIG] bad config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewStorageError("export failed", fs.ErrPermission)

	assert.ErrorIs(t, err, fs.ErrPermission)

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewStorageError("export failed", nil).WithContext("run_id", "abc")
	assert.Equal(t, "abc", err.Context["run_id"])

	bare := &AppError{Type: ErrTypeConfig}
	bare.WithContext("key", 1)
	assert.Equal(t, 1, bare.Context["key"])
}
