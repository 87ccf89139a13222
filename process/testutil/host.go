package testutil

import (
	"fmt"
	"slices"
	"sync"

	"github.com/kbukum/hostproc/process"
)

var _ process.Host = (*RecordingHost)(nil)

// Call is one recorded boundary call.
type Call struct {
	// Step is one of the process.Step constants.
	Step string
	// Data holds the byte arguments of the call, copied.
	Data [][]byte
	// Timeout is set for process.StepSetTimeout.
	Timeout uint32
}

// Request is what the host received before a Run.
type Request struct {
	Program string
	Args    []string
	Env     [][2]string
	Timeout uint32
	Stdin   []byte
}

// Result is a scripted answer to Run.
type Result struct {
	Status int32
	Stdout []byte
	Stderr []byte
}

// RecordingHost is a process.Host that records calls and replays scripted
// results. It is safe for concurrent use and checks nothing about call
// order; tests assert on Steps.
type RecordingHost struct {
	mu          sync.Mutex
	calls       []Call
	pending     Request
	requests    []Request
	respond     func(Request) Result
	result      Result
	failures    map[string]error
	unavailable bool
	running     int
	maxRunning  int
}

// NewRecordingHost creates a host whose runs succeed with empty output.
func NewRecordingHost() *RecordingHost {
	return &RecordingHost{failures: make(map[string]error)}
}

// SetResult scripts the result of every subsequent Run.
func (h *RecordingHost) SetResult(status int32, stdout, stderr []byte) *RecordingHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.respond = nil
	h.result = Result{Status: status, Stdout: slices.Clone(stdout), Stderr: slices.Clone(stderr)}
	return h
}

// Respond computes each Run's result from the request, e.g. to echo stdin.
func (h *RecordingHost) Respond(fn func(Request) Result) *RecordingHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.respond = fn
	return h
}

// FailAt makes the call for step return err until cleared with a nil err.
func (h *RecordingHost) FailAt(step string, err error) *RecordingHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		delete(h.failures, step)
	} else {
		h.failures[step] = err
	}
	return h
}

// SetUnavailable controls what Available reports.
func (h *RecordingHost) SetUnavailable(unavailable bool) *RecordingHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unavailable = unavailable
	return h
}

// Available implements process.Prober.
func (h *RecordingHost) Available() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.unavailable
}

// Calls returns the recorded calls in order.
func (h *RecordingHost) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.calls)
}

// Steps returns the step names of the recorded calls in order.
func (h *RecordingHost) Steps() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	steps := make([]string, len(h.calls))
	for i, c := range h.calls {
		steps[i] = c.Step
	}
	return steps
}

// Requests returns every request that reached Run.
func (h *RecordingHost) Requests() []Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.requests)
}

// LastRequest returns the most recent request that reached Run.
func (h *RecordingHost) LastRequest() (Request, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.requests) == 0 {
		return Request{}, false
	}
	return h.requests[len(h.requests)-1], true
}

// MaxConcurrentRuns returns the highest number of Runs seen in flight at once.
func (h *RecordingHost) MaxConcurrentRuns() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxRunning
}

// Reset forgets recorded calls and requests. Scripted results and failures stay.
func (h *RecordingHost) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = nil
	h.requests = nil
	h.pending = Request{}
}

func (h *RecordingHost) SetProgramName(name []byte) error {
	return h.record(Call{Step: process.StepSetProgramName, Data: copyAll(name)}, func() {
		h.pending.Program = string(name)
	})
}

func (h *RecordingHost) AddArgument(arg []byte) error {
	return h.record(Call{Step: process.StepAddArgument, Data: copyAll(arg)}, func() {
		h.pending.Args = append(h.pending.Args, string(arg))
	})
}

func (h *RecordingHost) AddEnvironmentEntry(key, value []byte) error {
	return h.record(Call{Step: process.StepAddEnvironment, Data: copyAll(key, value)}, func() {
		h.pending.Env = append(h.pending.Env, [2]string{string(key), string(value)})
	})
}

func (h *RecordingHost) SetTimeout(ms uint32) error {
	return h.record(Call{Step: process.StepSetTimeout, Timeout: ms}, func() {
		h.pending.Timeout = ms
	})
}

func (h *RecordingHost) SetStdin(buf []byte) error {
	return h.record(Call{Step: process.StepSetStdin, Data: copyAll(buf)}, func() {
		h.pending.Stdin = slices.Clone(buf)
	})
}

func (h *RecordingHost) Run() (int32, error) {
	h.mu.Lock()
	h.calls = append(h.calls, Call{Step: process.StepRun})
	if err := h.failures[process.StepRun]; err != nil {
		h.pending = Request{}
		h.mu.Unlock()
		return 0, err
	}
	req := h.pending
	h.pending = Request{}
	h.requests = append(h.requests, req)
	h.running++
	h.maxRunning = max(h.maxRunning, h.running)
	respond := h.respond
	h.mu.Unlock()

	var res Result
	if respond != nil {
		res = respond(req)
	} else {
		h.mu.Lock()
		res = h.result
		h.mu.Unlock()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.running--
	h.result = Result{Status: res.Status, Stdout: slices.Clone(res.Stdout), Stderr: slices.Clone(res.Stderr)}
	return res.Status, nil
}

func (h *RecordingHost) StdoutLen() (uint32, error) {
	var n uint32
	err := h.record(Call{Step: process.StepGetStdoutLength}, func() { n = uint32(len(h.result.Stdout)) })
	return n, err
}

func (h *RecordingHost) CopyStdout(dst []byte) error {
	var copyErr error
	err := h.record(Call{Step: process.StepGetStdout}, func() {
		copyErr = copyExact("stdout", dst, h.result.Stdout)
	})
	if err != nil {
		return err
	}
	return copyErr
}

func (h *RecordingHost) StderrLen() (uint32, error) {
	var n uint32
	err := h.record(Call{Step: process.StepGetStderrLength}, func() { n = uint32(len(h.result.Stderr)) })
	return n, err
}

func (h *RecordingHost) CopyStderr(dst []byte) error {
	var copyErr error
	err := h.record(Call{Step: process.StepGetStderr}, func() {
		copyErr = copyExact("stderr", dst, h.result.Stderr)
	})
	if err != nil {
		return err
	}
	return copyErr
}

// record appends c and, unless a failure is scripted for its step, applies.
func (h *RecordingHost) record(c Call, apply func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, c)
	if err := h.failures[c.Step]; err != nil {
		return err
	}
	apply()
	return nil
}

func copyAll(bufs ...[]byte) [][]byte {
	out := make([][]byte, len(bufs))
	for i, b := range bufs {
		out[i] = slices.Clone(b)
	}
	return out
}

func copyExact(stream string, dst, src []byte) error {
	if len(dst) != len(src) {
		return fmt.Errorf("testutil: %s buffer is %d bytes, have %d", stream, len(dst), len(src))
	}
	copy(dst, src)
	return nil
}
