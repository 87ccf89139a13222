// Package version reports hostproc build information.
//
// Release builds set the variables with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/hostproc/version.Version=1.0.0" ./cmd/hostproc
//
// Builds without ldflags fall back to the module version and VCS settings
// recorded by the Go toolchain.
package version
