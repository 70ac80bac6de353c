package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/dataprocessing"
	"salespulse/internal/forecasting"
	"salespulse/internal/operations"
	"salespulse/internal/validation"
	"salespulse/pkg/contracts/domain"
)

func TestFromDomain(t *testing.T) {
	insufficient := &forecasting.Error{
		Kind:    forecasting.KindInsufficientData,
		Method:  domain.MethodARIMA,
		Message: "ARIMA requires at least 12 months of historical data",
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "schema error",
			err:        &validation.SchemaError{Missing: []string{"Revenue"}, Expected: domain.RequiredColumns()},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeMissingColumns,
		},
		{
			name:       "field errors",
			err:        validation.FieldErrors{{Field: "horizon", Message: "horizon must be at least 1"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidationFailed,
		},
		{
			name:       "invalid method",
			err:        &forecasting.Error{Kind: forecasting.KindInvalidMethod, Method: "prophet", Message: "Choose a method"},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidMethod,
			wantMsg:    "Choose a method",
		},
		{
			name:       "invalid horizon",
			err:        forecasting.ErrInvalidHorizon,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidHorizon,
		},
		{
			name:       "invalid series",
			err:        forecasting.ErrInvalidSeries,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidSeries,
		},
		{
			name:       "insufficient data",
			err:        insufficient,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   CodeInsufficientData,
			wantMsg:    "ARIMA requires at least 12 months of historical data",
		},
		{
			name:       "fit failure",
			err:        forecasting.ErrFitFailure,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   CodeFitFailure,
		},
		{
			name:       "wrapped in a run error",
			err:        operations.NewValidationError(operations.StepValidate, forecasting.ErrInvalidHorizon),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidHorizon,
		},
		{
			name:       "empty file",
			err:        fmt.Errorf("load upload.csv: %w", dataprocessing.ErrEmptyFile),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeEmptyFile,
		},
		{
			name:       "unsupported format",
			err:        fmt.Errorf("%w %q", dataprocessing.ErrUnsupportedFormat, ".xls"),
			wantStatus: http.StatusUnsupportedMediaType,
			wantCode:   CodeUnsupportedFormat,
		},
		{
			name:       "upload too large",
			err:        fmt.Errorf("parse form: %w", &http.MaxBytesError{Limit: 10}),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   CodePayloadTooLarge,
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   CodeTimeout,
		},
		{
			name:       "parsing app error",
			err:        NewParsingError("invalid multipart form", errors.New("EOF")),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidRequest,
			wantMsg:    "invalid multipart form",
		},
		{
			name:       "storage app error is opaque",
			err:        NewStorageError("disk full", nil),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternalServerError,
			wantMsg:    "Internal server error",
		},
		{
			name:       "api error passes through",
			err:        fmt.Errorf("wrapped: %w", ErrRateLimitExceeded),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   CodeRateLimitExceeded,
		},
		{
			name:       "unknown error is opaque",
			err:        errors.New("nil pointer somewhere"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternalServerError,
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDomain(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantCode, got.ErrorCode)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, got.Message)
			}
		})
	}
}

func TestFromDomain_Nil(t *testing.T) {
	assert.Nil(t, FromDomain(nil))
}

func TestFromDomain_Details(t *testing.T) {
	schema := &validation.SchemaError{Missing: []string{"Revenue", "Region"}, Expected: domain.RequiredColumns()}
	got := FromDomain(schema)
	assert.Equal(t, schema, got.Details)
	assert.Contains(t, got.Message, "Missing required columns: Revenue, Region")

	got = FromDomain(&forecasting.Error{Kind: forecasting.KindFitFailure, Method: domain.MethodExponentialSmoothing, Message: "fit failed"})
	assert.Equal(t, ForecastDetails{Kind: forecasting.KindFitFailure, Method: "exponential_smoothing"}, got.Details)
}
