package forecasting

import (
	"errors"
	"fmt"

	"salespulse/pkg/contracts/domain"
)

// ErrorKind classifies a forecasting failure.
type ErrorKind string

const (
	KindInsufficientData ErrorKind = "insufficient_data"
	KindFitFailure       ErrorKind = "fit_failure"
	KindInvalidMethod    ErrorKind = "invalid_method"
	KindInvalidHorizon   ErrorKind = "invalid_horizon"
	KindInvalidSeries    ErrorKind = "invalid_series"
)

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrInsufficientData = &Error{Kind: KindInsufficientData, Message: "insufficient data"}
	ErrFitFailure       = &Error{Kind: KindFitFailure, Message: "model fit failed"}
	ErrInvalidMethod    = &Error{Kind: KindInvalidMethod, Message: "invalid method"}
	ErrInvalidHorizon   = &Error{Kind: KindInvalidHorizon, Message: "invalid horizon"}
	ErrInvalidSeries    = &Error{Kind: KindInvalidSeries, Message: "invalid series"}
)

// Error is returned by every forecasting operation. A failed call never
// returns a partial result alongside it.
type Error struct {
	Kind    ErrorKind     `json:"kind"`
	Method  domain.Method `json:"method,omitempty"`
	Message string        `json:"message"`
	Cause   error         `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "unknown forecasting error"
	}
	msg := e.Message
	if e.Method != "" {
		msg = fmt.Sprintf("%s: %s", e.Method, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches on Kind so callers can compare against the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the kind of a forecasting error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// InvalidMethodError reports a method tag that is not an exact match for a
// supported method.
func InvalidMethodError(method domain.Method) *Error {
	return &Error{
		Kind:    KindInvalidMethod,
		Method:  method,
		Message: "Choose: moving_average, exponential_smoothing, or arima",
	}
}

// InvalidHorizonError reports a horizon below one month.
func InvalidHorizonError(method domain.Method, horizon int) *Error {
	return &Error{
		Kind:    KindInvalidHorizon,
		Method:  method,
		Message: fmt.Sprintf("horizon must be at least 1 month, got %d", horizon),
	}
}

func insufficientData(method domain.Method, msg string) *Error {
	return &Error{Kind: KindInsufficientData, Method: method, Message: msg}
}

func fitFailure(method domain.Method, msg string, cause error) *Error {
	return &Error{Kind: KindFitFailure, Method: method, Message: msg, Cause: cause}
}
