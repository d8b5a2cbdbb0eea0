package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the wire-level representation of an application error.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

// ToHTTP maps any error to its HTTP representation. Unrecognized errors
// collapse to a generic 500 so internals never leak to callers.
func ToHTTP(err error) *HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "internal server error",
	}
}
