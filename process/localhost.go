//go:build unix

package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// LocalTimeoutStatus is the status LocalHost reports for a process it killed
// because the timeout elapsed.
const LocalTimeoutStatus int32 = -1

// DefaultGracePeriod is how long LocalHost waits between SIGTERM and SIGKILL.
const DefaultGracePeriod = 5 * time.Second

// LocalHost implements Host by running processes directly with os/exec.
// It lets the same Commands run natively, outside a module runtime.
//
// The child gets exactly the transmitted environment and nothing inherited.
// The program is resolved against this process's PATH. A timeout of 0
// disables the timeout. On timeout the whole process group gets SIGTERM,
// then SIGKILL after the grace period, and Run reports LocalTimeoutStatus.
// A process killed by another signal reports 128 plus the signal number.
type LocalHost struct {
	grace time.Duration
	dir   string

	mu      sync.Mutex
	program string
	args    []string
	env     []string
	timeout uint32
	stdin   []byte
	stdout  []byte
	stderr  []byte
}

// LocalHostOption configures a LocalHost.
type LocalHostOption func(*LocalHost)

// WithGracePeriod sets the delay between SIGTERM and SIGKILL on timeout.
func WithGracePeriod(d time.Duration) LocalHostOption {
	return func(h *LocalHost) {
		if d > 0 {
			h.grace = d
		}
	}
}

// WithDir sets the working directory of started processes.
func WithDir(dir string) LocalHostOption {
	return func(h *LocalHost) { h.dir = dir }
}

// NewLocalHost creates a LocalHost.
func NewLocalHost(opts ...LocalHostOption) *LocalHost {
	h := &LocalHost{grace: DefaultGracePeriod}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *LocalHost) Available() bool { return true }

func (h *LocalHost) SetProgramName(name []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.program = string(name)
	return nil
}

func (h *LocalHost) AddArgument(arg []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.args = append(h.args, string(arg))
	return nil
}

func (h *LocalHost) AddEnvironmentEntry(key, value []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.env = append(h.env, string(key)+"="+string(value))
	return nil
}

func (h *LocalHost) SetTimeout(ms uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.timeout = ms
	return nil
}

func (h *LocalHost) SetStdin(buf []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stdin = append(h.stdin[:0], buf...)
	return nil
}

// Run starts the pending request and waits for it. The pending request is
// cleared afterwards; captured output stays readable until the next Run.
// An error means the process could not be started.
func (h *LocalHost) Run() (int32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	defer h.resetRequest()

	h.stdout, h.stderr = nil, nil
	if h.program == "" {
		return 0, errors.New("process: program name is required")
	}

	ctx := context.Background()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(h.timeout)*time.Millisecond)
		defer cancel()
	}

	c := exec.CommandContext(ctx, h.program, h.args...) //nolint:gosec // running caller-chosen programs is the purpose of this host
	c.Dir = h.dir
	c.Env = h.env
	if c.Env == nil {
		c.Env = []string{}
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if len(h.stdin) > 0 {
		c.Stdin = bytes.NewReader(h.stdin)
	}

	// Own process group so a timeout reaches the whole tree.
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = h.grace

	err := c.Run()
	h.stdout, h.stderr = stdout.Bytes(), stderr.Bytes()

	if c.ProcessState == nil {
		return 0, fmt.Errorf("process: starting %q: %w", h.program, err)
	}
	if ctx.Err() != nil {
		return LocalTimeoutStatus, nil
	}
	if ws, ok := c.ProcessState.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int32(ws.Signal()), nil
	}
	return int32(c.ProcessState.ExitCode()), nil
}

func (h *LocalHost) StdoutLen() (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return uint32(len(h.stdout)), nil
}

func (h *LocalHost) CopyStdout(dst []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return copyCaptured("stdout", dst, h.stdout)
}

func (h *LocalHost) StderrLen() (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return uint32(len(h.stderr)), nil
}

func (h *LocalHost) CopyStderr(dst []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return copyCaptured("stderr", dst, h.stderr)
}

func (h *LocalHost) resetRequest() {
	h.program = ""
	h.args = nil
	h.env = nil
	h.timeout = 0
	h.stdin = nil
}

func copyCaptured(stream string, dst, src []byte) error {
	if len(dst) != len(src) {
		return fmt.Errorf("process: %s buffer is %d bytes, captured %d", stream, len(dst), len(src))
	}
	copy(dst, src)
	return nil
}
