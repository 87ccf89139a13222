// Package process builds process requests and executes them through a
// host-provided "run an external process" capability.
//
// The capability is a fixed set of host calls (see Host) with no
// implementation on this side of the boundary. A Command accumulates the
// program name, arguments, environment, stdin bytes and timeout; an Invoker
// marshals that state across the boundary in a fixed order, triggers the run
// and copies the captured output back:
//
//	cmd := process.New("echo").Args("hello", "world").Timeout(5000)
//	out, err := cmd.Output(ctx)
//	if err != nil {
//	    return err // encoding error or boundary failure
//	}
//	fmt.Printf("status=%d stdout=%q\n", out.Status, out.Stdout)
//
// A non-zero exit status is data, not an error: it is reported in
// Output.Status unchanged. Only encoding errors (text with an embedded NUL
// byte) and host call failures are returned as errors.
//
// # Hosts
//
// On wasip1 builds DefaultHost binds the ssvm_process import module. On every
// other platform DefaultHost reports ErrHostUnavailable; native programs use
// LocalHost (unix), which implements the same capability with os/exec.
//
// # Concurrency
//
// A host is a single shared execution slot. Invoker serializes Execute calls
// with a mutex, so one Invoker per host session is safe for concurrent use.
// A Command itself is not safe for concurrent mutation.
package process
