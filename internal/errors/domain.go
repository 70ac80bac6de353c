package errors

import (
	"context"
	"errors"
	"net/http"

	"salespulse/internal/dataprocessing"
	"salespulse/internal/forecasting"
	"salespulse/internal/validation"
)

// ForecastDetails accompanies forecasting errors.
type ForecastDetails struct {
	Kind   forecasting.ErrorKind `json:"kind"`
	Method string                `json:"method,omitempty"`
}

// FromDomain maps an error from the analysis packages to the API error sent
// to the client. Invalid input is a 400, a valid request whose data cannot
// be forecast is a 422, and anything unrecognized is an opaque 500.
func FromDomain(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, len(fieldErrs))
		for i, fe := range fieldErrs {
			out[i] = ValidationError{Field: fe.Field, Message: fe.Message}
		}
		return NewValidationErrors(out)
	}

	var schemaErr *validation.SchemaError
	if errors.As(err, &schemaErr) {
		return NewWithDetails(http.StatusBadRequest, CodeMissingColumns, schemaErr.Error(), schemaErr)
	}

	var fe *forecasting.Error
	if errors.As(err, &fe) {
		return fromForecast(fe)
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return ErrPayloadTooLarge
	case errors.Is(err, dataprocessing.ErrEmptyFile):
		return New(http.StatusBadRequest, CodeEmptyFile, dataprocessing.ErrEmptyFile.Error())
	case errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		return New(http.StatusUnsupportedMediaType, CodeUnsupportedFormat, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTimeout
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return fromAppError(appErr)
	}

	return ErrInternalServer
}

func fromForecast(fe *forecasting.Error) *APIError {
	details := ForecastDetails{Kind: fe.Kind, Method: string(fe.Method)}
	switch fe.Kind {
	case forecasting.KindInvalidMethod:
		return NewWithDetails(http.StatusBadRequest, CodeInvalidMethod, fe.Message, details)
	case forecasting.KindInvalidHorizon:
		return NewWithDetails(http.StatusBadRequest, CodeInvalidHorizon, fe.Message, details)
	case forecasting.KindInvalidSeries:
		return NewWithDetails(http.StatusBadRequest, CodeInvalidSeries, fe.Message, details)
	case forecasting.KindInsufficientData:
		return NewWithDetails(http.StatusUnprocessableEntity, CodeInsufficientData, fe.Message, details)
	default:
		return NewWithDetails(http.StatusUnprocessableEntity, CodeFitFailure, fe.Message, details)
	}
}

func fromAppError(e *AppError) *APIError {
	switch e.Type {
	case ErrTypeValidation:
		return New(http.StatusBadRequest, CodeValidationFailed, e.Message)
	case ErrTypeParsing:
		return New(http.StatusBadRequest, CodeInvalidRequest, e.Message)
	case ErrTypeNotFound:
		return New(http.StatusNotFound, CodeNotFound, e.Message)
	default:
		return ErrInternalServer
	}
}
