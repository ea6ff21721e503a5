package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resolution failures
const (
	// ErrCodeNotRegistered indicates no registration exists for the
	// requested type in any searched scope.
	ErrCodeNotRegistered ErrorCode = "NOT_REGISTERED"
	// ErrCodeCircularDependency indicates a dependency cycle, either
	// declared at registration time or detected while a factory was
	// re-entered during its own construction.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeScopeNotFound indicates a release targeted a session/screen
	// bucket that does not exist.
	ErrCodeScopeNotFound ErrorCode = "SCOPE_NOT_FOUND"
)

// Registration failures
const (
	// ErrCodeInvalidFactory indicates the supplied constructor does not
	// match any accepted factory shape.
	ErrCodeInvalidFactory ErrorCode = "INVALID_FACTORY"
	// ErrCodeInvalidScope indicates a malformed scope value (unknown kind,
	// or a keyed kind without an identifier).
	ErrCodeInvalidScope ErrorCode = "INVALID_SCOPE"
)

// Configuration failures
const (
	// ErrCodeValidation indicates a configuration or input struct failed
	// validation.
	ErrCodeValidation ErrorCode = "VALIDATION_FAILED"
)

// Internal errors
const (
	// ErrCodeInternal indicates a defensive, should-be-unreachable
	// inconsistency inside the container.
	ErrCodeInternal ErrorCode = "INTERNAL_INCONSISTENCY"
)
