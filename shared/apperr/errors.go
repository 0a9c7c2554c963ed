// Package apperr carries the error kinds the service layer reports and
// the HTTP layer maps to status codes. Kinds, not exception types: a
// single error value tagged with why the operation was refused.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a service-level failure
type Kind int

const (
	// KindNotFound - referenced entity absent, or (on read paths)
	// belongs to another tenant
	KindNotFound Kind = iota + 1
	// KindForbidden - caller authenticated but lacks tenant/role
	// authorization for a mutation
	KindForbidden
	// KindInvalidOperation - business-rule violation
	KindInvalidOperation
	// KindPersistence - underlying storage failure; surfaced, never
	// silently retried
	KindPersistence
	// KindUnauthorized - caller not authenticated
	KindUnauthorized
)

// Error is a kind-tagged error
type Error struct {
	Knd     Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a missing (or tenant-invisible) entity
func NotFound(format string, args ...interface{}) error {
	return &Error{Knd: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports a tenant/role authorization failure on a mutation
func Forbidden(format string, args ...interface{}) error {
	return &Error{Knd: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// InvalidOperation reports a business-rule violation
func InvalidOperation(format string, args ...interface{}) error {
	return &Error{Knd: KindInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a missing or unusable caller identity
func Unauthorized(format string, args ...interface{}) error {
	return &Error{Knd: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps a storage failure
func Persistence(err error, format string, args ...interface{}) error {
	return &Error{Knd: KindPersistence, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind of err, or 0 when err carries none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Knd
	}
	return 0
}

// IsKind reports whether err carries the given kind
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
