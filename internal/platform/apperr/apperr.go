// Package apperr defines the error taxonomy shared across API handlers.
// Services return *Error values; handlers translate them to HTTP responses
// with a stable JSON shape: {"code": ..., "message": ..., "details": ...}.
package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
)

// Error is a domain error with a machine-readable code. Details carries
// optional structured payload, e.g. the blocking record on a scheduling
// conflict.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Field   string      `json:"field,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return e.Code + ": " + e.Field + ": " + e.Message
	}
	return e.Code + ": " + e.Message
}

func Validation(field, message string) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

func ConflictWith(message string, details interface{}) *Error {
	return &Error{Code: CodeConflict, Message: message, Details: details}
}

func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: resource + " not found"}
}

func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// HTTPStatus maps an error code to its HTTP status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as a JSON response. Unknown error types become an
// opaque 500 so internal messages never leak to clients.
func Respond(c echo.Context, err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return c.JSON(appErr.HTTPStatus(), appErr)
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return err
	}
	return c.JSON(http.StatusInternalServerError, &Error{
		Code:    CodeInternal,
		Message: "internal server error",
	})
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code string) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}
