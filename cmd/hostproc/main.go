// Command hostproc runs external programs through a process host and
// reports their output and exit status.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	goerrors "github.com/kbukum/hostproc/errors"
)

// Exit codes for failures that are not the child's own status.
const (
	exitUsage    = 2
	exitTimeout  = 124
	exitFailure  = 125
	exitNotFound = 127
)

func main() {
	os.Exit(execute(context.Background(), newApp(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, a *app, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.shutdown(ctx)

	code := exitCode(err)
	if code != 0 && !isStatus(err) {
		fmt.Fprintf(stderr, "hostproc: %v\n", err)
	}
	return code
}

// statusError carries a child's non-zero status out of RunE.
type statusError struct {
	status int32
}

func (e *statusError) Error() string { return fmt.Sprintf("exit status %d", e.status) }

// usageError marks bad flags or arguments.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func isStatus(err error) bool {
	var se *statusError
	return errors.As(err, &se)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var se *statusError
	if errors.As(err, &se) {
		return statusExitCode(se.status)
	}
	var ue *usageError
	if errors.As(err, &ue) {
		return exitUsage
	}
	if errors.Is(err, exec.ErrNotFound) {
		return exitNotFound
	}
	if appErr, ok := goerrors.AsAppError(err); ok {
		switch appErr.Code {
		case goerrors.ErrCodeInvalidInput, goerrors.ErrCodeInvalidEncoding:
			return exitUsage
		}
	}
	return exitFailure
}

// statusExitCode maps a host status onto a shell exit code. Negative
// statuses are host-reported timeouts.
func statusExitCode(status int32) int {
	switch {
	case status < 0:
		return exitTimeout
	case status > 255:
		return 255
	default:
		return int(status)
	}
}
