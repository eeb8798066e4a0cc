package errors

// ErrorCode is a machine-readable classification of a request failure.
type ErrorCode string

// Transport-level failures (retryable).
const (
	// ErrCodeTimeout indicates the request or connection timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeConnection indicates a connection failure (refused, DNS, reset).
	ErrCodeConnection ErrorCode = "CONNECTION_FAILED"
)

// Status-derived failures.
const (
	ErrCodeAuth        ErrorCode = "UNAUTHORIZED"
	ErrCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrCodeConflict    ErrorCode = "CONFLICT"
	ErrCodeRateLimit   ErrorCode = "RATE_LIMITED"
	ErrCodeValidation  ErrorCode = "INVALID_REQUEST"
	ErrCodeServer      ErrorCode = "SERVER_ERROR"
	ErrCodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Client-side outcomes.
const (
	// ErrCodeCanceled indicates the caller canceled the request context.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeCircuitOpen indicates a circuit breaker rejected the call.
	ErrCodeCircuitOpen ErrorCode = "CIRCUIT_OPEN"
	// ErrCodeUnknown is used for failures that match no other code.
	ErrCodeUnknown ErrorCode = "UNKNOWN"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:     true,
	ErrCodeConnection:  true,
	ErrCodeRateLimit:   true,
	ErrCodeServer:      true,
	ErrCodeUnavailable: true,
}

// IsRetryableCode reports whether failures with code are worth retrying.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// String returns the code as a lowercase label suitable for metrics.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeAuth:
		return "auth"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeConflict:
		return "conflict"
	case ErrCodeRateLimit:
		return "rate_limit"
	case ErrCodeValidation:
		return "validation"
	case ErrCodeServer:
		return "server"
	case ErrCodeUnavailable:
		return "unavailable"
	case ErrCodeCanceled:
		return "canceled"
	case ErrCodeCircuitOpen:
		return "circuit_open"
	default:
		return "unknown"
	}
}
