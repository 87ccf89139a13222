// Package provider defines the request/response contract shared by process
// executors and the middleware that wraps them.
//
// A RequestResponse[I, O] takes one input and returns one output. The
// process package implements it for *process.Command and *process.Output,
// and Adapt maps domain types onto that contract.
//
// # Middleware
//
// Middleware[I, O] wraps a RequestResponse. Chain composes several, first
// outermost:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[*process.Command, *process.Output](log),
//	    provider.WithMetrics[*process.Command, *process.Output](metrics),
//	    provider.WithTracing[*process.Command, *process.Output]("hostproc"),
//	)(adapter)
//
// # Resilience
//
// WithResilience runs each call through RateLimiter, Bulkhead,
// CircuitBreaker and Retry, skipping the ones left nil in ResilienceConfig.
//
// # Selection
//
// Registry holds named factories, and PrioritySelector picks the first
// available instance:
//
//	reg := provider.NewRegistry[*process.Adapter]()
//	reg.RegisterFactory("local", newLocal)
//	reg.RegisterFactory("module", newModule)
//	p, err := reg.Select(ctx, &provider.PrioritySelector[*process.Adapter]{
//	    Priority: []string{"module", "local"},
//	}, nil)
package provider
