package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := NewWithDetails(http.StatusBadRequest, CodeMissingParameter, "file is required", "file")

	assert.Equal(t, "file is required", err.Error())
	assert.Equal(t, err, MissingParameter("file"))
}

func TestErrorResponse_JSON(t *testing.T) {
	resp := NewErrorResponse(NewValidationErrors([]ValidationError{
		{Field: "horizon", Message: "horizon must be at least 1"},
	})).WithTraceID("trace-1")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "trace-1", got["trace_id"])

	body := got["error"].(map[string]any)
	assert.Equal(t, float64(400), body["status_code"])
	assert.Equal(t, CodeValidationFailed, body["error_code"])
	assert.Equal(t, "Request validation failed", body["message"])
	errs := body["details"].(map[string]any)["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "horizon", errs[0].(map[string]any)["field"])
}

func TestErrorResponse_OmitsEmpty(t *testing.T) {
	data, err := json.Marshal(NewErrorResponse(ErrNotFound))
	require.NoError(t, err)

	assert.JSONEq(t, `{"success":false,"error":{"status_code":404,"error_code":"NOT_FOUND","message":"Resource not found"}}`, string(data))
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"invalid request", InvalidRequestWithError(fmt.Errorf("bad json")), http.StatusBadRequest, CodeInvalidRequest},
		{"validation", ErrValidation("method", "unknown"), http.StatusBadRequest, CodeValidationFailed},
		{"panic", ErrPanic("boom", ""), http.StatusInternalServerError, CodeInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
		})
	}

	assert.Equal(t, "bad json", InvalidRequestWithError(fmt.Errorf("bad json")).Details)
	assert.Equal(t, PanicRecovery{Message: "boom", Stack: "main.go:12"}, ErrPanic("boom", "main.go:12").Details)
}
