package operations

import (
	"errors"
	"fmt"

	"salespulse/internal/forecasting"
)

// ErrorType represents the type of run error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
)

// RunError is returned when an analysis run cannot produce a report.
type RunError struct {
	Type    ErrorType `json:"type"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *RunError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *RunError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(step string, cause error) *RunError {
	return &RunError{
		Type:    ErrorTypeValidation,
		Step:    step,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// NewExecutionError creates a new execution error
func NewExecutionError(step string, cause error) *RunError {
	return &RunError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Message: "step execution failed",
		Cause:   cause,
	}
}

// NewCancellationError creates a new cancellation error
func NewCancellationError(step string, cause error) *RunError {
	return &RunError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Message: "run cancelled",
		Cause:   cause,
	}
}

// ForecastFailure records why the forecast step produced no result. A failed
// forecast does not fail the run.
type ForecastFailure struct {
	Kind    forecasting.ErrorKind `json:"kind"`
	Message string                `json:"message"`
}

func forecastFailure(err error) *ForecastFailure {
	var fe *forecasting.Error
	if errors.As(err, &fe) {
		return &ForecastFailure{Kind: fe.Kind, Message: fe.Message}
	}
	return &ForecastFailure{Kind: forecasting.KindFitFailure, Message: err.Error()}
}
