package process

import (
	"context"

	"github.com/kbukum/hostproc/provider"
)

var _ provider.RequestResponse[*Command, *Output] = (*Adapter)(nil)

// Adapter exposes an Invoker as a provider.RequestResponse, so provider
// middleware and resilience can wrap process execution.
type Adapter struct {
	invoker *Invoker
}

// NewAdapter creates an Adapter for inv. It takes the invoker's name.
func NewAdapter(inv *Invoker) *Adapter {
	return &Adapter{invoker: inv}
}

// Name returns the invoker name.
func (a *Adapter) Name() string {
	return a.invoker.Name()
}

// IsAvailable reports whether the invoker's host is usable.
func (a *Adapter) IsAvailable(_ context.Context) bool {
	return a.invoker.Available()
}

// Execute runs cmd through the invoker.
func (a *Adapter) Execute(ctx context.Context, cmd *Command) (*Output, error) {
	return a.invoker.Execute(ctx, cmd)
}

// NewCommandProvider builds a typed provider on top of exec. build turns the
// input into a Command and parse turns the Output into the result. A parse
// function that cares about failures should check Output.Status itself.
func NewCommandProvider[I, O any](
	name string,
	exec provider.RequestResponse[*Command, *Output],
	build func(I) (*Command, error),
	parse func(*Output) (O, error),
) provider.RequestResponse[I, O] {
	return provider.Adapt(exec, name,
		func(_ context.Context, in I) (*Command, error) {
			cmd, err := build(in)
			if err != nil {
				return nil, err
			}
			// Surface encoding mistakes here rather than as an execution failure.
			if err := cmd.Err(); err != nil {
				return nil, err
			}
			return cmd, nil
		},
		parse,
	)
}
