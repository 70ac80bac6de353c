package errors

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/render"

	"salespulse/internal/infrastructure"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler. includeStack adds the
// underlying error and panic stacks to 5xx responses; use it only in
// development.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       infrastructure.WithComponent(logger, "error_handler"),
		includeStack: includeStack,
	}
}

// HandleError maps err with FromDomain and renders the error envelope.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	apiErr := FromDomain(err)
	level := slog.LevelWarn
	if apiErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.String("error_code", apiErr.ErrorCode),
		slog.Int("status", apiErr.StatusCode),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack && apiErr.StatusCode >= http.StatusInternalServerError && apiErr.Details == nil {
		apiErr = NewWithDetails(apiErr.StatusCode, apiErr.ErrorCode, apiErr.Message, err.Error())
	}
	WriteError(w, r, apiErr)
}

// HandlePanic renders a 500 for a recovered panic.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	stack := string(debug.Stack())
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", stack),
	)

	apiErr := ErrInternalServer
	if h.includeStack {
		apiErr = ErrPanic(recovered, stack)
	}
	WriteError(w, r, apiErr)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, NewWithDetails(http.StatusNotFound, CodeNotFound,
		"The requested resource was not found", r.URL.Path))
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, New(http.StatusMethodNotAllowed, CodeMethodNotAllowed,
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method)))
}

// Middleware recovers panics from downstream handlers.
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.HandlePanic(w, r, rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// WriteError renders err in the error envelope with the request's trace id.
func WriteError(w http.ResponseWriter, r *http.Request, err *APIError) {
	resp := NewErrorResponse(err).WithTraceID(infrastructure.GetTraceID(r.Context()))
	if renderErr := render.Render(w, r, resp); renderErr != nil {
		http.Error(w, err.Message, err.StatusCode)
	}
}

// JSON helper for consistent JSON responses
func (h *ErrorHandler) JSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
