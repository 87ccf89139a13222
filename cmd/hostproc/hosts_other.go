//go:build !unix

package main

import (
	"github.com/kbukum/hostproc/config"
	"github.com/kbukum/hostproc/process"
	"github.com/kbukum/hostproc/provider"
)

// No local host outside unix; only the module host is registered.
func registerLocalHost(*provider.Registry[executor], *config.Config, ...process.InvokerOption) {}
