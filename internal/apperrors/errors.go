// Package apperrors defines the error taxonomy shared by storage, the
// messaging client, the lifecycle coordinator and the HTTP layer.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for propagation and HTTP mapping.
type Kind string

const (
	KindInvalidArgument    Kind = "invalid_argument"
	KindValidation         Kind = "validation"
	KindConflict           Kind = "conflict"
	KindNotFound           Kind = "not_found"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindServiceUnavailable Kind = "service_unavailable"
	KindServiceError       Kind = "service_error"
	KindInternal           Kind = "internal"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind                `json:"code"`
	Message string              `json:"message"`
	Status  int                 `json:"-"`
	Fields  map[string][]string `json:"fields,omitempty"`
	// RemoteStatus is the upstream HTTP status for service errors.
	RemoteStatus int   `json:"remote_status,omitempty"`
	Cause        error `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithFields attaches per-field validation messages.
func (e *Error) WithFields(fields map[string][]string) *Error {
	e.Fields = fields
	return e
}

func newError(kind Kind, status int, format string, args ...any) *Error {
	return &Error{Kind: kind, Status: status, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgument(format string, args ...any) *Error {
	return newError(KindInvalidArgument, http.StatusBadRequest, format, args...)
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidation, http.StatusBadRequest, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, http.StatusConflict, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, http.StatusNotFound, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return newError(KindUnauthorized, http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, http.StatusForbidden, format, args...)
}

func ServiceUnavailable(format string, args ...any) *Error {
	return newError(KindServiceUnavailable, http.StatusBadGateway, format, args...)
}

// ServiceError is a non-transient failure reported by a remote service.
func ServiceError(remoteStatus int, format string, args ...any) *Error {
	e := newError(KindServiceError, http.StatusBadGateway, format, args...)
	e.RemoteStatus = remoteStatus
	return e
}

func Internal(format string, args ...any) *Error {
	return newError(KindInternal, http.StatusInternalServerError, format, args...)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	if appErr, ok := As(err); ok && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
