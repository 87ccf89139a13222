// Package errors provides the structured error type used across hostproc.
//
// Every failure that leaves a package boundary is an *AppError carrying a
// machine-readable code, a human-readable message, optional details and the
// underlying cause. Callers branch on the code (or on sentinel causes with
// errors.Is) instead of matching message text:
//
//	if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrCodeInvalidEncoding {
//	    // reject the caller's input
//	}
//
// Codes are split into caller errors (never retryable), host errors
// (retryable where the host may recover) and resilience errors produced by
// the provider chain.
package errors
