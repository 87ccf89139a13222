package main

import (
	"slices"

	"github.com/kbukum/hostproc/config"
	"github.com/kbukum/hostproc/process"
	"github.com/kbukum/hostproc/provider"
)

// Host names accepted by --host and process.host.
const (
	hostAuto   = "auto"
	hostModule = "module"
	hostLocal  = "local"
)

var hostNames = []string{hostAuto, hostModule, hostLocal}

// newHostRegistry registers the module host, which is only available when
// running under a host runtime, and the platform's local host if any.
func newHostRegistry(cfg *config.Config, opts ...process.InvokerOption) *provider.Registry[executor] {
	reg := provider.NewRegistry[executor]()
	reg.RegisterFactory(hostModule, func(map[string]any) (executor, error) {
		inv := process.NewInvoker(process.DefaultHost(), named(hostModule, opts)...)
		return process.NewAdapter(inv), nil
	})
	registerLocalHost(reg, cfg, opts...)
	return reg
}

// hostPriority lists the hosts to try for a --host value.
func hostPriority(name string) []string {
	if name == hostAuto || name == "" {
		return []string{hostModule, hostLocal}
	}
	return []string{name}
}

// named appends the invoker name without touching the caller's slice.
func named(name string, opts []process.InvokerOption) []process.InvokerOption {
	return append(slices.Clip(opts), process.WithName(name))
}
