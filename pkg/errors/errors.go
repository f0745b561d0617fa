package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to the HTTP status surfaced to clients.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrValidation, ErrIneligible:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrSchemaResolution
	ErrIneligible
	ErrInternal
)

// Validation reports malformed or missing user input.
func Validation(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// SchemaResolution reports a required logical field with no physical column.
func SchemaResolution(table, field string) *AppError {
	return &AppError{
		Code:    ErrSchemaResolution,
		Message: fmt.Sprintf("required column %q not found in table %q", field, table),
	}
}

// Ineligible reports a bulk operation rejected because some targets cannot be processed.
func Ineligible(message string) *AppError {
	return &AppError{
		Code:    ErrIneligible,
		Message: message,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As unwraps err into an AppError if it carries one.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// HTTPStatus returns the status and client-facing message for err. Errors
// that carry no AppError become a generic 500.
func HTTPStatus(err error) (int, string) {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode(), appErr.Message
	}
	return http.StatusInternalServerError, "internal server error"
}
