package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad timeout")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidInput, err.Code)
	}
	if err.Message != "bad timeout" {
		t.Errorf("expected message 'bad timeout', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("INVALID_INPUT should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeBoundaryRejected, "host said no")
	if !err.Retryable {
		t.Error("BOUNDARY_REJECTED should be retryable")
	}
}

func TestAppError_InvalidEncoding(t *testing.T) {
	err := InvalidEncoding("argument", "contains NUL byte at offset 3")
	if err.Code != ErrCodeInvalidEncoding {
		t.Errorf("expected INVALID_ENCODING, got %s", err.Code)
	}
	if err.Details["field"] != "argument" {
		t.Errorf("expected field=argument, got %v", err.Details["field"])
	}
	if err.Retryable {
		t.Error("encoding errors must not be retryable")
	}
	if !strings.Contains(err.Error(), "offset 3") {
		t.Errorf("expected reason in message, got %q", err.Error())
	}
}

func TestAppError_BoundaryRejected(t *testing.T) {
	cause := fmt.Errorf("slot busy")
	err := BoundaryRejected("set_stdin", cause)
	if err.Details["step"] != "set_stdin" {
		t.Errorf("expected step=set_stdin, got %v", err.Details["step"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable with errors.Is")
	}
}

func TestAppError_NonZeroStatus(t *testing.T) {
	err := NonZeroStatus("false", 1)
	if err.Details["status"] != int32(1) {
		t.Errorf("expected status detail 1, got %v", err.Details["status"])
	}
	if !IsRetryable(err) {
		t.Error("NON_ZERO_STATUS should be retryable")
	}
}

func TestAppError_HostUnavailable(t *testing.T) {
	err := HostUnavailable("ssvm_process")
	if err.Code != ErrCodeHostUnavailable {
		t.Errorf("expected HOST_UNAVAILABLE, got %s", err.Code)
	}
	if err.Retryable {
		t.Error("a missing host is a linkage problem, not retryable")
	}
}

func TestAppError_ErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"without cause", New(ErrCodeInternal, "boom"), "INTERNAL_ERROR: boom"},
		{"with cause", Internal(fmt.Errorf("disk")), "INTERNAL_ERROR: An unexpected error occurred. (cause: disk)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := New(ErrCodeInvalidInput, "x").
		WithDetail("a", 1).
		WithDetails(map[string]any{"b": 2, "a": 3})
	if err.Details["a"] != 3 || err.Details["b"] != 2 {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", RateLimited())
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AppError in chain")
	}
	if appErr.Code != ErrCodeRateLimited {
		t.Errorf("expected RATE_LIMITED, got %s", appErr.Code)
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("plain error is not an AppError")
	}
}

func TestAsAppError_Joined(t *testing.T) {
	joined := stderrors.Join(fmt.Errorf("first"), InvalidEncoding("program", "nul"))
	appErr, ok := AsAppError(joined)
	if !ok {
		t.Fatal("expected AppError inside joined error")
	}
	if appErr.Code != ErrCodeInvalidEncoding {
		t.Errorf("expected INVALID_ENCODING, got %s", appErr.Code)
	}
}
