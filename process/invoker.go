package process

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	goerrors "github.com/kbukum/hostproc/errors"
	"github.com/kbukum/hostproc/logger"
	"github.com/kbukum/hostproc/observability"
)

// Boundary protocol steps, in call order.
const (
	StepSetProgramName   = "set_program_name"
	StepAddArgument      = "add_argument"
	StepAddEnvironment   = "add_environment_entry"
	StepSetTimeout       = "set_timeout"
	StepSetStdin         = "set_stdin"
	StepRun              = "run"
	StepGetStdoutLength  = "get_stdout_length"
	StepGetStdout        = "get_stdout"
	StepGetStderrLength  = "get_stderr_length"
	StepGetStderr        = "get_stderr"
	defaultInvokerName   = "process"
	invokerComponentName = "process.invoker"
)

// Invoker drives the boundary protocol against one Host.
//
// The host is a single shared execution slot, so Execute holds a mutex for
// the whole protocol: concurrent callers are serialized, never interleaved.
type Invoker struct {
	host    Host
	name    string
	log     *logger.Logger
	metrics *observability.ExecMetrics

	mu sync.Mutex
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithName names the invoker in logs, spans and errors.
func WithName(name string) InvokerOption {
	return func(inv *Invoker) { inv.name = name }
}

// WithLogger sets the logger. The default is logger.Get("process.invoker").
func WithLogger(l *logger.Logger) InvokerOption {
	return func(inv *Invoker) { inv.log = l }
}

// WithMetrics records execution metrics. Metrics are off by default.
func WithMetrics(m *observability.ExecMetrics) InvokerOption {
	return func(inv *Invoker) { inv.metrics = m }
}

// NewInvoker creates an Invoker bound to host.
func NewInvoker(host Host, opts ...InvokerOption) *Invoker {
	inv := &Invoker{host: host, name: defaultInvokerName}
	for _, opt := range opts {
		opt(inv)
	}
	if inv.log == nil {
		inv.log = logger.Get(invokerComponentName)
	}
	return inv
}

// Name returns the invoker name.
func (inv *Invoker) Name() string { return inv.name }

// Available reports whether the bound host is usable.
func (inv *Invoker) Available() bool { return available(inv.host) }

// request is a Command encoded for transmission. Building it validates every
// value, so a bad value is caught before the first host call.
type request struct {
	program []byte
	args    [][]byte
	env     [][2][]byte
	timeout uint32
	stdin   []byte
}

func marshal(cmd *Command) (*request, error) {
	if err := cmd.Err(); err != nil {
		return nil, err
	}
	if cmd.program == "" {
		return nil, goerrors.InvalidInput("program", "program name is required")
	}
	if err := checkText("program", cmd.program); err != nil {
		return nil, err
	}

	req := &request{
		program: []byte(cmd.program),
		args:    make([][]byte, 0, len(cmd.args)),
		env:     make([][2][]byte, 0, len(cmd.env)),
		timeout: cmd.timeout,
		stdin:   slices.Clone(cmd.stdin),
	}
	for i, arg := range cmd.args {
		if err := checkText("argument", arg); err != nil {
			return nil, err.WithDetail("index", i)
		}
		if err := checkLength("argument", len(arg)); err != nil {
			return nil, err
		}
		req.args = append(req.args, []byte(arg))
	}
	// Pair order is not significant to the host; sorting keeps runs reproducible.
	for _, key := range slices.Sorted(maps.Keys(cmd.env)) {
		value := cmd.env[key]
		if err := checkText("env key", key); err != nil {
			return nil, err
		}
		if err := checkText("env value", value); err != nil {
			return nil, err.WithDetail("key", key)
		}
		if err := checkLength("env value", len(value)); err != nil {
			return nil, err
		}
		req.env = append(req.env, [2][]byte{[]byte(key), []byte(value)})
	}
	if err := checkLength("program", len(req.program)); err != nil {
		return nil, err
	}
	if err := checkLength("stdin", len(req.stdin)); err != nil {
		return nil, err
	}
	return req, nil
}

// Execute transmits cmd to the host, runs it and collects its output.
//
// The calls are made in this order: program name, each argument, each
// environment entry, timeout, stdin, run, then stdout length and bytes and
// stderr length and bytes. A non-zero exit status is returned in
// Output.Status with a nil error. Errors are returned only for invalid
// input (before any host call) and for failing host calls.
//
// ctx is checked before the first host call; once the protocol starts it
// runs to completion. The host enforces the Command's timeout.
func (inv *Invoker) Execute(ctx context.Context, cmd *Command) (*Output, error) {
	if cmd == nil {
		return nil, goerrors.InvalidInput("command", "command is nil")
	}
	req, err := marshal(cmd)
	if err != nil {
		return nil, err
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, goerrors.Timeout("waiting for host slot").WithCause(err)
	}

	execID := uuid.NewString()
	log := inv.log.WithFields(logger.Fields(
		logger.FieldExecutionID, execID,
		logger.FieldProgram, cmd.program,
	))

	ctx, span := observability.StartSpan(ctx, observability.SpanExecute)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrExecutionID, execID)
	observability.SetSpanAttribute(ctx, observability.AttrProgram, cmd.program)
	observability.SetSpanAttribute(ctx, observability.AttrArgCount, len(req.args))
	observability.SetSpanAttribute(ctx, observability.AttrTimeoutMS, req.timeout)

	if inv.metrics != nil {
		inv.metrics.RecordStart(ctx)
		defer inv.metrics.RecordEnd(ctx)
	}

	log.Debug("execution started", logger.Fields(
		logger.FieldArgCount, len(req.args),
		logger.FieldEnvCount, len(req.env),
		logger.FieldStdinBytes, len(req.stdin),
		logger.FieldTimeoutMS, req.timeout,
	))

	start := time.Now()
	out, step, err := inv.invoke(req)
	duration := time.Since(start)

	if err != nil {
		appErr := inv.boundaryError(step, err)
		observability.SetSpanAttribute(ctx, observability.AttrStep, step)
		observability.SetSpanError(ctx, appErr)
		if inv.metrics != nil {
			inv.metrics.RecordBoundaryError(ctx, cmd.program, step)
		}
		log.WithError(err).Error("boundary call failed", logger.Fields(logger.FieldStep, step))
		return nil, appErr
	}

	observability.SetSpanAttribute(ctx, observability.AttrStatus, out.Status)
	observability.SetSpanAttribute(ctx, observability.AttrStdoutBytes, len(out.Stdout))
	observability.SetSpanAttribute(ctx, observability.AttrStderrBytes, len(out.Stderr))
	if inv.metrics != nil {
		inv.metrics.RecordExecution(ctx, cmd.program, out.Status, len(out.Stdout), len(out.Stderr), duration)
	}
	log.Debug("execution finished", logger.MergeWithDuration(logger.Fields(
		logger.FieldStatus, out.Status,
		logger.FieldStdoutBytes, len(out.Stdout),
		logger.FieldStderrBytes, len(out.Stderr),
	), duration))

	return out, nil
}

// invoke runs the boundary protocol and reports the step that failed.
func (inv *Invoker) invoke(req *request) (*Output, string, error) {
	h := inv.host

	if err := h.SetProgramName(req.program); err != nil {
		return nil, StepSetProgramName, err
	}
	for _, arg := range req.args {
		if err := h.AddArgument(arg); err != nil {
			return nil, StepAddArgument, err
		}
	}
	for _, kv := range req.env {
		if err := h.AddEnvironmentEntry(kv[0], kv[1]); err != nil {
			return nil, StepAddEnvironment, err
		}
	}
	if err := h.SetTimeout(req.timeout); err != nil {
		return nil, StepSetTimeout, err
	}
	if err := h.SetStdin(req.stdin); err != nil {
		return nil, StepSetStdin, err
	}

	status, err := h.Run()
	if err != nil {
		return nil, StepRun, err
	}

	stdout, step, err := fetch(h.StdoutLen, h.CopyStdout, StepGetStdoutLength, StepGetStdout)
	if err != nil {
		return nil, step, err
	}
	stderr, step, err := fetch(h.StderrLen, h.CopyStderr, StepGetStderrLength, StepGetStderr)
	if err != nil {
		return nil, step, err
	}

	return &Output{Status: status, Stdout: stdout, Stderr: stderr}, "", nil
}

// fetch asks the host for an output's size, then has it copy exactly that
// many bytes into a fresh buffer.
func fetch(length func() (uint32, error), copyTo func([]byte) error, lenStep, copyStep string) ([]byte, string, error) {
	n, err := length()
	if err != nil {
		return nil, lenStep, err
	}
	buf := make([]byte, n)
	if err := copyTo(buf); err != nil {
		return nil, copyStep, err
	}
	return buf, "", nil
}

func (inv *Invoker) boundaryError(step string, err error) *goerrors.AppError {
	if errors.Is(err, ErrHostUnavailable) {
		return goerrors.HostUnavailable(inv.name).WithCause(err).WithDetail("step", step)
	}
	return goerrors.BoundaryRejected(step, err).WithDetail("invoker", inv.name)
}
