package common

import (
	"fmt"
	"net/http"
)

// AppError is an error that carries the HTTP status it should be reported with.
// Err keeps the underlying cause so callers can still match it with errors.Is.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with an explicit status code
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewBadRequestError creates a 400 error
func NewBadRequestError(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, message, err)
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(message string, err error) *AppError {
	return NewAppError(http.StatusNotFound, message, err)
}

// NewConflictError creates a 409 error
func NewConflictError(message string, err error) *AppError {
	return NewAppError(http.StatusConflict, message, err)
}

// NewServiceUnavailableError creates a 503 error
func NewServiceUnavailableError(message string, err error) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message, err)
}

// NewInternalServerError creates a 500 error. The cause is kept for logs only.
func NewInternalServerError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, message, err)
}
