package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for callers and transport adapters.
type Kind string

const (
	KindValidationFailed  Kind = "validation_failed"
	KindNotFound          Kind = "not_found"
	KindReferenceNotFound Kind = "reference_not_found"
	KindConflict          Kind = "conflict"
	KindUnavailable       Kind = "unavailable"
	KindInternal          Kind = "internal"
)

// FieldError is a single field-level violation. Path is dotted (e.g. "manufacturer.contact.email").
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is the error type returned by the service layer.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Path+": "+f.Message)
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(parts, "; "))
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the caller may retry the operation with backoff.
func (e *Error) Retryable() bool { return e != nil && e.Kind == KindUnavailable }

func Validation(fields []FieldError) *Error {
	return &Error{Kind: KindValidationFailed, Message: "validation failed", Fields: fields}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func ReferenceNotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindReferenceNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Unavailable(msg string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for errors outside the taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FieldsOf returns the field errors carried by err, if any.
func FieldsOf(err error) []FieldError {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
