package process

import "errors"

// ErrHostUnavailable is returned by hosts that are not linked into the
// current build. It is a startup/linkage problem, not a runtime condition.
var ErrHostUnavailable = errors.New("process: host capability unavailable")

// Host is the capability boundary: the host-side calls an Invoker drives.
//
// Calls share one execution context on the host side, so their order
// matters. Byte-bearing calls always pass an explicit length; the bytes are
// never NUL-terminated. Implementations only read argument slices during the
// call and only write into dst during CopyStdout/CopyStderr.
type Host interface {
	// SetProgramName sets the program to run.
	SetProgramName(name []byte) error
	// AddArgument appends one positional argument.
	AddArgument(arg []byte) error
	// AddEnvironmentEntry adds one environment variable.
	AddEnvironmentEntry(key, value []byte) error
	// SetTimeout sets the run timeout in milliseconds.
	SetTimeout(ms uint32) error
	// SetStdin sets the complete stdin buffer. An empty buffer means no stdin.
	SetStdin(buf []byte) error
	// Run blocks until the process terminates and returns its exit code.
	Run() (int32, error)
	// StdoutLen returns the number of captured stdout bytes.
	StdoutLen() (uint32, error)
	// CopyStdout copies the captured stdout into dst, which is exactly StdoutLen bytes.
	CopyStdout(dst []byte) error
	// StderrLen returns the number of captured stderr bytes.
	StderrLen() (uint32, error)
	// CopyStderr copies the captured stderr into dst, which is exactly StderrLen bytes.
	CopyStderr(dst []byte) error
}

// Prober is implemented by hosts that can tell whether they are usable.
type Prober interface {
	Available() bool
}

// available reports whether h is usable; hosts without a probe are assumed usable.
func available(h Host) bool {
	if p, ok := h.(Prober); ok {
		return p.Available()
	}
	return true
}
