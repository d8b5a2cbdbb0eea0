// Package apperror defines the categorized error taxonomy surfaced by the API.
// Every failure a caller can act on carries a stable machine-readable code and
// a human-readable message.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine-readable error codes.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeEmptyCart         = "EMPTY_CART"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeDependencyFailure = "DEPENDENCY_FAILURE"
	CodeInternalError     = "INTERNAL"
)

// AppError is a categorized application error.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

// New creates an AppError with the given code, message and HTTP status.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match two AppErrors by code.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if !errors.As(target, &appErr) {
		return false
	}
	return e.Code == appErr.Code && e.Message == appErr.Message
}

// NotFound creates a NOT_FOUND error for the named resource.
func NotFound(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusNotFound,
	}
}

// InvalidInput creates an INVALID_INPUT error.
func InvalidInput(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusBadRequest,
	}
}

// Unauthorized creates an UNAUTHORIZED error.
func Unauthorized(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusUnauthorized,
	}
}

// DependencyFailure creates a DEPENDENCY_FAILURE error wrapping the cause.
// These are always caught and logged at the point of use, never propagated
// to the caller as a request failure.
func DependencyFailure(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:       CodeDependencyFailure,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// Internal creates an INTERNAL error wrapping the cause.
func Internal(err error) *AppError {
	return &AppError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
