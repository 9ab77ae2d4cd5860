// Package errors carries the error taxonomy of the engine. Every failure that
// crosses a package boundary is an *AppError whose Code decides how the
// transport reports it.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an AppError.
type Code string

const (
	CodeConfigInvalid    Code = "CONFIG_INVALID"
	CodeInvalidParameter Code = "INVALID_PARAMETER"
	CodeDataSource       Code = "DATA_SOURCE_ERROR"
	CodeNotFound         Code = "NOT_FOUND"
	CodeInternalError    Code = "INTERNAL_ERROR"
	CodeUnknown          Code = "UNKNOWN"
)

// HTTPStatus is the response status for errors of this code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidParameter:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDataSource:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError represents a structured application error
type AppError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error { return e.Cause }

// New creates an AppError without a cause.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap adds context to err. The code of the nearest AppError in the chain is
// kept; foreign errors become INTERNAL_ERROR.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	code := GetCode(err)
	if code == CodeUnknown {
		code = CodeInternalError
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the code of the first AppError in the chain, or CodeUnknown.
func GetCode(err error) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// InvalidParameter reports a malformed request value. Never retried.
func InvalidParameter(format string, args ...interface{}) *AppError {
	return New(CodeInvalidParameter, fmt.Sprintf(format, args...))
}

// DataSource marks a failure of the association store or another backing
// system. The core never retries these.
func DataSource(message string, cause error) *AppError {
	return &AppError{Code: CodeDataSource, Message: message, Cause: cause}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found")
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
