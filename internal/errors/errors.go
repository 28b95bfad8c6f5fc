// Package errors defines the typed failures the catalog store reports and
// centralizes translation of engine errors into them, keeping the repository
// and service layers free of driver-specific matching.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies a catalog failure for callers that branch on it.
type Kind string

const (
	KindStorageUnavailable Kind = "STORAGE_UNAVAILABLE"
	KindSchema             Kind = "SCHEMA_ERROR"
	KindValidation         Kind = "VALIDATION_ERROR"
	KindConflict           Kind = "CONFLICT"
	KindNotFound           Kind = "NOT_FOUND"
	KindInternal           Kind = "INTERNAL"
)

// Error is a catalog failure with a stable kind. The wrapped engine error is
// kept for diagnostics and unwrapping.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Constructors, one per kind.

func StorageUnavailable(msg string, err error) *Error {
	return &Error{Kind: KindStorageUnavailable, Message: msg, Err: err}
}

func Schema(msg string, err error) *Error {
	return &Error{Kind: KindSchema, Message: msg, Err: err}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NotFound(resource string, id interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %v not found", resource, id)}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal storage error", Err: err}
}

// KindOf returns the kind of a catalog error, or "" for nil and foreign
// errors.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsStorageUnavailable(err error) bool { return KindOf(err) == KindStorageUnavailable }
func IsSchema(err error) bool             { return KindOf(err) == KindSchema }
func IsValidation(err error) bool         { return KindOf(err) == KindValidation }
func IsConflict(err error) bool           { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool           { return KindOf(err) == KindNotFound }

// Map converts engine errors into catalog error kinds. Errors that already
// carry a kind pass through untouched.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if stderrors.As(err, &e) {
		return err
	}

	lower := strings.ToLower(err.Error())
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Message: "record not found", Err: err}

	case strings.Contains(lower, "unique constraint"):
		return &Error{Kind: KindConflict, Message: "uniqueness violation", Err: err}

	case strings.Contains(lower, "foreign key constraint"):
		return &Error{Kind: KindNotFound, Message: "referenced row does not exist", Err: err}

	default:
		return Internal(err)
	}
}
