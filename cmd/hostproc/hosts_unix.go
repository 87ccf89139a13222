//go:build unix

package main

import (
	"github.com/kbukum/hostproc/config"
	"github.com/kbukum/hostproc/process"
	"github.com/kbukum/hostproc/provider"
)

func registerLocalHost(reg *provider.Registry[executor], cfg *config.Config, opts ...process.InvokerOption) {
	reg.RegisterFactory(hostLocal, func(map[string]any) (executor, error) {
		host := process.NewLocalHost(
			process.WithGracePeriod(cfg.Process.GracePeriod),
			process.WithDir(cfg.Process.Dir),
		)
		return process.NewAdapter(process.NewInvoker(host, named(hostLocal, opts)...)), nil
	})
}
