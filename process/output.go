package process

// Output is the result of one execution. Each Execute call returns a fresh
// Output whose buffers are owned by the caller.
type Output struct {
	// Status is the exit code reported by the host. Its meaning for timeouts
	// and crashes is defined by the host (see LocalTimeoutStatus).
	Status int32
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
}

// Success reports whether the process exited with status 0.
func (o *Output) Success() bool {
	return o.Status == 0
}
