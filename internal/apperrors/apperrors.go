// internal/apperrors/apperrors.go
package apperrors

import (
	"errors"
	"fmt"
)

// Code identifies a classified failure surfaced to clients.
type Code string

const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeUnavailable   Code = "UNAVAILABLE"
	CodeQuotaExceeded Code = "QUOTA_EXCEEDED"
	CodeInvalidFormat Code = "INVALID_FORMAT"
	CodeUploadTimeout Code = "UPLOAD_TIMEOUT"
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeForbidden     Code = "FORBIDDEN"
	CodeInternal      Code = "INTERNAL_ERROR"
)

// Error carries a classified code alongside a user-facing message.
// Services return these for every expected failure mode; panics are
// reserved for programmer error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: resource + " not found"}
}

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// CodeOf extracts the classified code from err, defaulting to
// CodeInternal for unclassified failures.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// MessageOf extracts the user-facing message from err. Unclassified
// failures pass their message through verbatim.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
