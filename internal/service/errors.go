package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure for callers
type Kind int

// Error kinds
const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalidInput
	KindPartialFailure
)

// Error is a business-layer failure with a caller-facing message
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// NotFoundError reports a missing referenced entity
func NotFoundError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError reports a failed role, ownership or moderator check
func ForbiddenError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a state conflict (duplicate name, already a
// member, owner cannot leave, no successor)
func ConflictError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// InvalidInputError reports malformed input (reason too short, unknown
// ban duration)
func InvalidInputError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from an error chain, KindUnknown if none
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindUnknown
}
