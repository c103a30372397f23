package errors

import (
	"errors"
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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrUnauthorized
	ErrForbidden
	ErrNotAMember
	ErrSelfRecognition
	ErrUnknownBadge
	ErrInvalidStateTransition
	ErrDuplicateName
	ErrInternal
)

// StatusCode maps the error code to an HTTP status so handlers and the
// error middleware agree on the response code.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation, ErrSelfRecognition, ErrUnknownBadge:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden, ErrNotAMember:
		return http.StatusForbidden
	case ErrInvalidStateTransition, ErrDuplicateName:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func Validation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
		Err:     err,
	}
}

func NotAMember(channel string) *AppError {
	return &AppError{
		Code:    ErrNotAMember,
		Message: fmt.Sprintf("not a member of channel %s", channel),
	}
}

func SelfRecognition() *AppError {
	return &AppError{
		Code:    ErrSelfRecognition,
		Message: "cannot send recognition to yourself",
	}
}

func UnknownBadge(key string) *AppError {
	return &AppError{
		Code:    ErrUnknownBadge,
		Message: fmt.Sprintf("unknown badge %q", key),
	}
}

func InvalidStateTransition(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidStateTransition,
		Message: message,
	}
}

func DuplicateName(name string) *AppError {
	return &AppError{
		Code:    ErrDuplicateName,
		Message: fmt.Sprintf("name %q is already taken", name),
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
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

// CodeOf extracts the application error code, defaulting to ErrInternal
// for errors that did not originate here.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
