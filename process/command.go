package process

import (
	"context"
	"errors"
	"iter"
	"maps"
	"os"
	"slices"
	"strconv"
)

// DefaultTimeout is the timeout, in milliseconds, of a new Command.
const DefaultTimeout uint32 = 10000

// Command describes a process to run through a Host.
//
// Mutators return the receiver so calls can be chained. A mutator that is
// handed text containing a NUL byte leaves the Command unchanged for that
// value and records an encoding error, visible immediately through Err.
// Output and Invoker.Execute refuse to run a Command with a recorded error.
//
// The zero value is not usable; create Commands with New.
type Command struct {
	program string
	args    []string
	env     map[string]string
	stdin   []byte
	timeout uint32
	errs    []error
}

// Option configures a Command at construction.
type Option func(*Command)

// InheritEnv seeds the environment with a copy of os.Environ taken when New
// runs. Later changes to the real environment are not reflected; use Env to
// override or extend individual entries.
func InheritEnv() Option {
	return InheritEnvFrom(os.Environ())
}

// InheritEnvFrom seeds the environment from KEY=VALUE entries.
// Entries without '=' are ignored.
func InheritEnvFrom(environ []string) Option {
	return func(c *Command) {
		splitEnviron(environ, func(key, value string) {
			c.Env(key, value)
		})
	}
}

// New creates a Command for program with an empty environment, no
// arguments, no stdin and DefaultTimeout.
func New(program string, opts ...Option) *Command {
	c := &Command{
		env:     make(map[string]string),
		timeout: DefaultTimeout,
	}
	if err := checkText("program", program); err != nil {
		c.errs = append(c.errs, err)
	} else {
		c.program = program
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Arg appends a single argument.
func (c *Command) Arg(arg string) *Command {
	if err := checkText("argument", arg); err != nil {
		c.errs = append(c.errs, err.WithDetail("index", len(c.args)))
		return c
	}
	c.args = append(c.args, arg)
	return c
}

// Args appends arguments in order. Each argument is validated on its own:
// a rejected argument does not undo the ones appended before it, and the
// ones after it are still appended.
func (c *Command) Args(args ...string) *Command {
	for _, arg := range args {
		c.Arg(arg)
	}
	return c
}

// ClearArgs removes all arguments.
func (c *Command) ClearArgs() *Command {
	c.args = c.args[:0]
	return c
}

// Env sets an environment variable, replacing any previous value for key.
func (c *Command) Env(key, value string) *Command {
	if err := checkText("env key", key); err != nil {
		c.errs = append(c.errs, err)
		return c
	}
	if err := checkText("env value", value); err != nil {
		c.errs = append(c.errs, err.WithDetail("key", key))
		return c
	}
	c.env[key] = value
	return c
}

// Envs sets environment variables in iteration order, so the last pair for a
// duplicated key wins. Use maps.All to pass a map.
func (c *Command) Envs(vars iter.Seq2[string, string]) *Command {
	for key, value := range vars {
		c.Env(key, value)
	}
	return c
}

// Stdin appends text to the stdin buffer. No terminator is added.
func (c *Command) Stdin(text string) *Command {
	if err := checkText("stdin text", text); err != nil {
		c.errs = append(c.errs, err)
		return c
	}
	c.stdin = append(c.stdin, text...)
	return c
}

// StdinByte appends a single raw byte to the stdin buffer. Any value,
// including 0, is accepted.
func (c *Command) StdinByte(b byte) *Command {
	c.stdin = append(c.stdin, b)
	return c
}

// StdinBytes appends raw bytes to the stdin buffer.
func (c *Command) StdinBytes(p []byte) *Command {
	c.stdin = append(c.stdin, p...)
	return c
}

// Timeout sets the timeout the host enforces, in milliseconds.
// The last call before execution wins.
func (c *Command) Timeout(ms uint32) *Command {
	c.timeout = ms
	return c
}

// Err returns the encoding errors recorded by mutators, joined, or nil.
func (c *Command) Err() error {
	return errors.Join(c.errs...)
}

// Program returns the program name.
func (c *Command) Program() string { return c.program }

// Arguments returns a copy of the arguments in order.
func (c *Command) Arguments() []string { return slices.Clone(c.args) }

// Environment returns a copy of the environment.
func (c *Command) Environment() map[string]string { return maps.Clone(c.env) }

// LookupEnv returns the value set for key.
func (c *Command) LookupEnv(key string) (string, bool) {
	v, ok := c.env[key]
	return v, ok
}

// StdinData returns a copy of the stdin buffer.
func (c *Command) StdinData() []byte { return slices.Clone(c.stdin) }

// TimeoutMillis returns the timeout in milliseconds.
func (c *Command) TimeoutMillis() uint32 { return c.timeout }

// Output runs the Command through DefaultInvoker and returns its output.
// It blocks until the host reports the process finished or timed out.
func (c *Command) Output(ctx context.Context) (*Output, error) {
	return DefaultInvoker().Execute(ctx, c)
}

// String renders the program and arguments for logs.
func (c *Command) String() string {
	s := c.program
	for _, a := range c.args {
		s += " " + strconv.Quote(a)
	}
	return s
}
