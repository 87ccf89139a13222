//go:build !wasip1

package process

// DefaultHost returns the host linked into this build. Outside wasip1 there
// is no imported capability: every call fails with ErrHostUnavailable.
// Native programs should pass LocalHost to NewInvoker instead.
func DefaultHost() Host {
	return unavailableHost{}
}

type unavailableHost struct{}

func (unavailableHost) Available() bool                       { return false }
func (unavailableHost) SetProgramName([]byte) error           { return ErrHostUnavailable }
func (unavailableHost) AddArgument([]byte) error              { return ErrHostUnavailable }
func (unavailableHost) AddEnvironmentEntry(_, _ []byte) error { return ErrHostUnavailable }
func (unavailableHost) SetTimeout(uint32) error               { return ErrHostUnavailable }
func (unavailableHost) SetStdin([]byte) error                 { return ErrHostUnavailable }
func (unavailableHost) Run() (int32, error)                   { return 0, ErrHostUnavailable }
func (unavailableHost) StdoutLen() (uint32, error)            { return 0, ErrHostUnavailable }
func (unavailableHost) CopyStdout([]byte) error               { return ErrHostUnavailable }
func (unavailableHost) StderrLen() (uint32, error)            { return 0, ErrHostUnavailable }
func (unavailableHost) CopyStderr([]byte) error               { return ErrHostUnavailable }
