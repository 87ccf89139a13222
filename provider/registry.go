package provider

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Registry holds named provider factories and the instances created from them.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
	instances map[string]T
}

// NewRegistry creates an empty Registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
		instances: make(map[string]T),
	}
}

// RegisterFactory registers a named factory, replacing any previous one.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
	delete(r.instances, name)
}

// Create returns the instance for name, building it from its factory on
// first use.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inst, ok := r.instances[name]; ok {
		return inst, nil
	}
	factory, ok := r.factories[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("provider factory %q not registered", name)
	}
	inst, err := factory(cfg)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("create provider %q: %w", name, err)
	}
	r.instances[name] = inst
	return inst, nil
}

// List returns the registered factory names, sorted.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// Select builds every registered provider and lets sel choose one.
// Providers whose factory fails are left out.
func (r *Registry[T]) Select(ctx context.Context, sel Selector[T], cfg map[string]any) (T, error) {
	candidates := make(map[string]T)
	for _, name := range r.List() {
		if inst, err := r.Create(name, cfg); err == nil {
			candidates[name] = inst
		}
	}
	return sel.Select(ctx, candidates)
}
