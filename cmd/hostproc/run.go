package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	goerrors "github.com/kbukum/hostproc/errors"
	"github.com/kbukum/hostproc/logger"
	"github.com/kbukum/hostproc/observability"
	"github.com/kbukum/hostproc/process"
	"github.com/kbukum/hostproc/provider"
	"github.com/kbukum/hostproc/validation"
)

type runOptions struct {
	timeout      uint32
	env          []string
	inheritEnv   bool
	stdin        string
	stdinFile    string
	host         string
	dir          string
	failOnStatus bool
}

func newRunCommand(a *app) *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run [flags] [--] program [args...]",
		Short: "Run a program and relay its output and exit status",
		Long: `Run transmits the program, its arguments, environment, timeout and
stdin to the process host, waits for the process to finish and writes its
captured stdout and stderr. hostproc exits with the program's status, or
124 when the host reports a timeout.

The program starts with an empty environment unless --inherit-env is set.`,
		Example: `  hostproc run -- echo hello
  hostproc run --timeout 2000 --env LANG=C -- sort -r
  printf 'b\na\n' | hostproc run --stdin-file - -- sort`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.applyConfig(cmd, a)
			if err := o.validate(args); err != nil {
				return &usageError{err: err}
			}
			command, err := o.build(cmd.InOrStdin(), a, args)
			if err != nil {
				return err
			}
			return a.run(cmd, command, o)
		},
	}

	f := cmd.Flags()
	// Flags after the program name belong to the program.
	f.SetInterspersed(false)
	f.Uint32VarP(&o.timeout, "timeout", "t", 0, "timeout in milliseconds (default from config, 10000)")
	f.StringArrayVarP(&o.env, "env", "e", nil, "environment entry KEY=VALUE (repeatable)")
	f.BoolVar(&o.inheritEnv, "inherit-env", false, "start from a copy of the current environment")
	f.StringVar(&o.stdin, "stdin", "", "text to send on stdin")
	f.StringVar(&o.stdinFile, "stdin-file", "", "file to send on stdin, - for hostproc's stdin")
	f.StringVar(&o.host, "host", "", "process host: auto, module or local")
	f.StringVar(&o.dir, "dir", "", "working directory (local host only)")
	f.BoolVar(&o.failOnStatus, "fail-on-status", false, "treat a non-zero status as a failure for retries")
	return cmd
}

// applyConfig fills options not given on the command line.
func (o *runOptions) applyConfig(cmd *cobra.Command, a *app) {
	p := &a.cfg.Process
	if !cmd.Flags().Changed("timeout") {
		o.timeout = p.TimeoutMS
	}
	if o.host == "" {
		o.host = p.Host
	}
	if o.dir != "" {
		p.Dir = o.dir
	}
	o.inheritEnv = o.inheritEnv || p.InheritEnv
	o.failOnStatus = o.failOnStatus || p.FailOnStatus
}

func (o *runOptions) validate(args []string) error {
	v := validation.New()
	if len(args) == 0 {
		v.AddError("program", "is required")
	} else {
		v.Required("program", args[0])
	}
	for _, entry := range o.env {
		v.EnvEntry("env", entry)
	}
	v.Custom(o.stdin == "" || o.stdinFile == "", "stdin", "cannot be combined with --stdin-file")
	v.OneOf("host", o.host, hostNames)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// build turns the options into a Command. Base environment entries apply in
// order: inherited, configured, then --env, so later ones win.
func (o *runOptions) build(stdin io.Reader, a *app, args []string) (*process.Command, error) {
	var opts []process.Option
	if o.inheritEnv {
		opts = append(opts, process.InheritEnv())
	}
	opts = append(opts, process.InheritEnvFrom(a.cfg.Process.Env))

	c := process.New(args[0], opts...).Args(args[1:]...).Timeout(o.timeout)
	for _, entry := range o.env {
		key, value, _ := strings.Cut(entry, "=")
		c.Env(key, value)
	}
	if o.stdin != "" {
		c.Stdin(o.stdin)
	}
	if o.stdinFile != "" {
		data, err := readInput(stdin, o.stdinFile)
		if err != nil {
			return nil, err
		}
		c.StdinBytes(data)
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerrors.InvalidInput("stdin-file", err.Error()).WithCause(err)
	}
	return data, nil
}

// run selects a host, executes command and relays its output.
func (a *app) run(cmd *cobra.Command, command *process.Command, o runOptions) error {
	ctx := cmd.Context()

	execMetrics, err := observability.NewExecMetrics(a.meter())
	if err != nil {
		return err
	}
	opMetrics, err := observability.NewMetrics(a.meter())
	if err != nil {
		return err
	}

	reg := a.hosts(a.cfg,
		process.WithLogger(a.log.WithComponent("process.invoker")),
		process.WithMetrics(execMetrics),
	)
	exec, err := reg.Select(ctx, &provider.PrioritySelector[executor]{Priority: hostPriority(o.host)}, nil)
	if err != nil {
		return goerrors.HostUnavailable(o.host).WithCause(err)
	}
	exec = provider.Chain(
		provider.WithTracing[*process.Command, *process.Output](a.cfg.Base.Name),
		provider.WithLogging[*process.Command, *process.Output](a.log.WithComponent("provider")),
		provider.WithMetrics[*process.Command, *process.Output](opMetrics),
	)(exec)

	runner := process.NewRunner(exec, process.RunnerConfig{
		Resilience:   a.cfg.Resilience,
		FailOnStatus: o.failOnStatus,
	})

	a.log.Debug("running command", logger.Fields(
		logger.FieldProgram, command.Program(),
		"host", exec.Name(),
	))
	out, err := runner.Run(ctx, command)
	if out != nil {
		if werr := relay(cmd, out); werr != nil {
			return werr
		}
	}
	if err != nil {
		if appErr, ok := goerrors.AsAppError(err); ok && appErr.Code == goerrors.ErrCodeNonZeroStatus && out != nil {
			return &statusError{status: out.Status}
		}
		return err
	}
	if out.Status != 0 {
		return &statusError{status: out.Status}
	}
	return nil
}

func relay(cmd *cobra.Command, out *process.Output) error {
	if _, err := cmd.OutOrStdout().Write(out.Stdout); err != nil {
		return fmt.Errorf("writing stdout: %w", err)
	}
	if _, err := cmd.ErrOrStderr().Write(out.Stderr); err != nil {
		return fmt.Errorf("writing stderr: %w", err)
	}
	return nil
}
