// Package resilience guards process launches against misbehaving hosts and
// programs.
//
// It provides four primitives, each usable on its own:
//   - CircuitBreaker: stops launching after repeated failures
//   - Retry: retries a failed launch with exponential backoff
//   - Bulkhead: caps the number of callers waiting on a host
//   - RateLimiter: caps the launch rate with a token bucket
//
// The provider package composes them into one chain:
//
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 5, Burst: 5})
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 4})
//
//	out, err := resilience.ExecuteWithResult(ctx, bh, func() (*process.Output, error) {
//	    if err := rl.Wait(ctx); err != nil {
//	        return nil, err
//	    }
//	    return cmd.Output(ctx)
//	})
//
// Config structs carry mapstructure tags so they can be loaded by the config
// package. Callback fields are code-only.
package resilience
