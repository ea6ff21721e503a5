package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Error is the unified container error type.
type Error struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// --- Constructors, one per taxonomy entry ---

// NotRegistered reports that no registration exists for typeName.
func NotRegistered(typeName string) *Error {
	return &Error{
		Code:    ErrCodeNotRegistered,
		Message: fmt.Sprintf("no registration for %s", typeName),
		Details: map[string]any{"type": typeName},
	}
}

// NotRegisteredIn reports that no registration exists for typeName in the
// named scope.
func NotRegisteredIn(typeName, scopeName string) *Error {
	return &Error{
		Code:    ErrCodeNotRegistered,
		Message: fmt.Sprintf("no registration for %s in scope %s", typeName, scopeName),
		Details: map[string]any{"type": typeName, "scope": scopeName},
	}
}

// CircularDependency reports a dependency cycle. path is the ordered chain
// of type names from the first occurrence of the repeated type back to
// itself, e.g. [A B A].
func CircularDependency(path []string) *Error {
	return &Error{
		Code:    ErrCodeCircularDependency,
		Message: fmt.Sprintf("dependency cycle: %s", strings.Join(path, " -> ")),
		Details: map[string]any{"path": path},
	}
}

// ScopeNotFound reports a release against a session/screen bucket that was
// never created or is already released.
func ScopeNotFound(kind, id string) *Error {
	return &Error{
		Code:    ErrCodeScopeNotFound,
		Message: fmt.Sprintf("scope %s(%s) not found", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// InvalidFactory reports a constructor that matches no accepted shape.
func InvalidFactory(reason string) *Error {
	return &Error{
		Code:    ErrCodeInvalidFactory,
		Message: fmt.Sprintf("invalid factory: %s", reason),
	}
}

// InvalidScope reports a malformed scope value.
func InvalidScope(reason string) *Error {
	return &Error{
		Code:    ErrCodeInvalidScope,
		Message: fmt.Sprintf("invalid scope: %s", reason),
	}
}

// Validation reports a configuration or input value that failed validation.
func Validation(message string) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// Internal reports a defensive inconsistency that should be unreachable.
func Internal(cause error) *Error {
	return &Error{
		Code:    ErrCodeInternal,
		Message: "internal container inconsistency",
		Cause:   cause,
	}
}

// --- Matching helpers ---

// CodeOf extracts the ErrorCode from err, walking the wrap chain. Returns
// the empty code for nil or foreign errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsNotRegistered reports whether err is a NOT_REGISTERED failure.
func IsNotRegistered(err error) bool { return Is(err, ErrCodeNotRegistered) }

// IsCircularDependency reports whether err is a CIRCULAR_DEPENDENCY failure.
func IsCircularDependency(err error) bool { return Is(err, ErrCodeCircularDependency) }

// IsScopeNotFound reports whether err is a SCOPE_NOT_FOUND failure.
func IsScopeNotFound(err error) bool { return Is(err, ErrCodeScopeNotFound) }

// IsValidation reports whether err is a VALIDATION_FAILED failure.
func IsValidation(err error) bool { return Is(err, ErrCodeValidation) }

// CyclePath returns the type-name path attached to a CIRCULAR_DEPENDENCY
// error, or nil for other errors.
func CyclePath(err error) []string {
	var e *Error
	if !stderrors.As(err, &e) || e.Code != ErrCodeCircularDependency {
		return nil
	}
	if p, ok := e.Details["path"].([]string); ok {
		return p
	}
	return nil
}
