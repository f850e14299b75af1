package http

import (
	"fmt"
	"net/http"
)

// AppError represents an application-level error with an HTTP status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error { return e.Err }

// NotFoundErrorf creates a 404 error with formatting.
func NotFoundErrorf(format string, a ...interface{}) *AppError {
	return &AppError{Code: "ERR_NOT_FOUND", Message: fmt.Sprintf(format, a...), Status: http.StatusNotFound}
}

// BadRequestErrorf creates a 400 error with formatting.
func BadRequestErrorf(format string, a ...interface{}) *AppError {
	return &AppError{Code: "ERR_BAD_REQUEST", Message: fmt.Sprintf(format, a...), Status: http.StatusBadRequest}
}

// ConflictErrorf creates a 409 error with formatting.
func ConflictErrorf(format string, a ...interface{}) *AppError {
	return &AppError{Code: "ERR_CONFLICT", Message: fmt.Sprintf(format, a...), Status: http.StatusConflict}
}

// InternalErrorf creates a 500 error with formatting.
func InternalErrorf(format string, a ...interface{}) *AppError {
	return &AppError{Code: "ERR_INTERNAL", Message: fmt.Sprintf(format, a...), Status: http.StatusInternalServerError}
}
