package process

import "sync"

var (
	defaultInvoker     *Invoker
	defaultInvokerOnce sync.Once
)

// DefaultInvoker returns the process-wide Invoker bound to DefaultHost.
// Command.Output uses it.
func DefaultInvoker() *Invoker {
	defaultInvokerOnce.Do(func() {
		defaultInvoker = NewInvoker(DefaultHost())
	})
	return defaultInvoker
}
