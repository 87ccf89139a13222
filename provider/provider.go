package provider

import "context"

// Provider is the base interface all providers implement.
type Provider interface {
	// Name returns the provider's name.
	Name() string
	// IsAvailable reports whether the provider can handle requests.
	IsAvailable(ctx context.Context) bool
}

// Factory creates a provider from loosely typed configuration.
type Factory[T Provider] func(cfg map[string]any) (T, error)
