// Package apperr defines the error taxonomy shared by services and
// handlers. Services return typed errors; the HTTP layer maps kinds to
// status codes and returns kind + message (+ optional field) as the body.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindValidation   Kind = "VALIDATION"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindExternal     Kind = "EXTERNAL"
	KindInternal     Kind = "INTERNAL"
)

// Error carries a kind, a human message and an optional field name for
// validation failures.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) error     { return New(KindNotFound, message) }
func Conflict(message string) error     { return New(KindConflict, message) }
func Unauthorized(message string) error { return New(KindUnauthorized, message) }
func Forbidden(message string) error    { return New(KindForbidden, message) }
func External(message string, err error) error {
	return Wrap(KindExternal, message, err)
}

// Validation creates a validation error tagged with the offending field.
func Validation(field, message string) error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err is a CONFLICT error.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// Status maps an error to the HTTP status the API boundary responds with.
func Status(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Body shapes the JSON error payload: kind + message + optional field.
func Body(err error) map[string]string {
	out := map[string]string{"kind": string(KindOf(err)), "error": MessageOf(err)}
	var ae *Error
	if errors.As(err, &ae) && ae.Field != "" {
		out["field"] = ae.Field
	}
	return out
}

// MessageOf returns the human message without the kind prefix.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
