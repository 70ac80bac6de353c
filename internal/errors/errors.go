package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeMissingParameter    = "MISSING_PARAMETER"
	CodeMissingColumns      = "MISSING_COLUMNS"
	CodeEmptyFile           = "EMPTY_FILE"
	CodeInvalidMethod       = "INVALID_METHOD"
	CodeInvalidHorizon      = "INVALID_HORIZON"
	CodeInvalidSeries       = "INVALID_SERIES"
	CodeNotFound            = "NOT_FOUND"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	CodePayloadTooLarge     = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedFormat   = "UNSUPPORTED_FORMAT"
	CodeInsufficientData    = "INSUFFICIENT_DATA"
	CodeFitFailure          = "FIT_FAILURE"
	CodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
	CodeTimeout             = "REQUEST_TIMEOUT"
)

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	ErrMissingParameter = New(http.StatusBadRequest, CodeMissingParameter, "Required parameter is missing")

	// 404 Not Found
	ErrNotFound = New(http.StatusNotFound, CodeNotFound, "Resource not found")

	// 413 Payload Too Large
	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "The upload exceeds the maximum allowed size")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded. Please retry later")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, CodeInternalServerError, "Internal server error")

	// 504 Gateway Timeout
	ErrTimeout = New(http.StatusGatewayTimeout, CodeTimeout, "The request took too long to process")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// MissingParameter names the absent parameter.
func MissingParameter(name string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeMissingParameter, fmt.Sprintf("%s is required", name), name)
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewValidationErrors([]ValidationError{{Field: field, Message: message}})
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
	TraceID string    `json:"trace_id,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// WithTraceID attaches the request's trace id.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}

// PanicRecovery represents panic recovery information
type PanicRecovery struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ErrPanic creates a panic recovery error carrying the recovered value and
// the stack it was raised on.
func ErrPanic(rec interface{}, stack string) *APIError {
	return NewWithDetails(
		http.StatusInternalServerError,
		CodeInternalServerError,
		"Internal server error",
		PanicRecovery{
			Message: fmt.Sprintf("%v", rec),
			Stack:   stack,
		},
	)
}
