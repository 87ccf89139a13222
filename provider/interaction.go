package provider

import "context"

// RequestResponse takes one input and returns one output. A process
// execution is the canonical case: a Command in, an Output back.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}
