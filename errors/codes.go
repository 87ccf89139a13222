package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Caller errors
const (
	// ErrCodeInvalidEncoding indicates text that cannot cross the host boundary,
	// such as a value with an embedded NUL byte.
	ErrCodeInvalidEncoding ErrorCode = "INVALID_ENCODING"
	// ErrCodeInvalidInput indicates an otherwise invalid argument or configuration.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Host errors
const (
	// ErrCodeHostUnavailable indicates the host capability is not linked into this build.
	ErrCodeHostUnavailable ErrorCode = "HOST_UNAVAILABLE"
	// ErrCodeBoundaryRejected indicates a host call refused its input.
	ErrCodeBoundaryRejected ErrorCode = "BOUNDARY_REJECTED"
	// ErrCodeNonZeroStatus indicates a process finished with a non-zero status
	// and the caller asked for that to be treated as an error.
	ErrCodeNonZeroStatus ErrorCode = "NON_ZERO_STATUS"
)

// Resilience errors
const (
	// ErrCodeServiceUnavailable indicates calls are currently being refused (open circuit, full bulkhead).
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeRateLimited indicates the caller exceeded the configured launch rate.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeTimeout indicates the caller's context expired while waiting.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeBoundaryRejected:   true,
	ErrCodeNonZeroStatus:      true,
	ErrCodeServiceUnavailable: true,
	ErrCodeRateLimited:        true,
	ErrCodeTimeout:            true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
