package process

import (
	"context"

	goerrors "github.com/kbukum/hostproc/errors"
	"github.com/kbukum/hostproc/provider"
)

var _ provider.RequestResponse[*Command, *Output] = (*Runner)(nil)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Resilience policies applied to every run. Nil policies are skipped.
	Resilience provider.ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
	// FailOnStatus turns a non-zero exit status into a NON_ZERO_STATUS error,
	// which makes it visible to the retry and circuit breaker policies.
	FailOnStatus bool `yaml:"fail_on_status" mapstructure:"fail_on_status"`
}

// Runner runs Commands through a resilience chain whose state persists
// across calls: repeated failures trip the breaker for every caller.
type Runner struct {
	exec         provider.RequestResponse[*Command, *Output]
	state        *provider.ResilienceState
	failOnStatus bool
}

// NewRunner creates a Runner on top of exec, usually an Adapter.
//
// A circuit breaker without its own IsFailure ignores invalid-input and
// encoding errors, since those are the caller's mistakes and say nothing
// about the host.
func NewRunner(exec provider.RequestResponse[*Command, *Output], cfg RunnerConfig) *Runner {
	res := cfg.Resilience
	if res.CircuitBreaker != nil && res.CircuitBreaker.IsFailure == nil {
		cb := *res.CircuitBreaker
		cb.IsFailure = countsAgainstHost
		res.CircuitBreaker = &cb
	}
	return &Runner{
		exec:         exec,
		state:        provider.BuildResilience(res),
		failOnStatus: cfg.FailOnStatus,
	}
}

// Name returns the wrapped provider's name.
func (r *Runner) Name() string { return r.exec.Name() }

// IsAvailable reports whether the wrapped provider is usable.
func (r *Runner) IsAvailable(ctx context.Context) bool { return r.exec.IsAvailable(ctx) }

// Execute is Run.
func (r *Runner) Execute(ctx context.Context, cmd *Command) (*Output, error) {
	return r.Run(ctx, cmd)
}

// Run executes cmd through the resilience chain. With FailOnStatus, the
// Output of the last attempt is returned alongside the NON_ZERO_STATUS error.
func (r *Runner) Run(ctx context.Context, cmd *Command) (*Output, error) {
	var last *Output
	out, err := provider.ExecuteWithResilience(ctx, r.state, func() (*Output, error) {
		last = nil
		out, err := r.exec.Execute(ctx, cmd)
		if err != nil {
			return nil, err
		}
		last = out
		if r.failOnStatus && !out.Success() {
			return out, goerrors.NonZeroStatus(cmd.Program(), out.Status)
		}
		return out, nil
	})
	if err != nil {
		return last, err
	}
	return out, nil
}

func countsAgainstHost(err error) bool {
	if appErr, ok := goerrors.AsAppError(err); ok {
		switch appErr.Code {
		case goerrors.ErrCodeInvalidEncoding, goerrors.ErrCodeInvalidInput:
			return false
		}
	}
	return true
}
