package main

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/hostproc/config"
	"github.com/kbukum/hostproc/logger"
	"github.com/kbukum/hostproc/observability"
	"github.com/kbukum/hostproc/process"
	"github.com/kbukum/hostproc/provider"
)

// executor is what the run command drives.
type executor = provider.RequestResponse[*process.Command, *process.Output]

// hostRegistry builds the named process hosts for a configuration.
type hostRegistry func(cfg *config.Config, opts ...process.InvokerOption) *provider.Registry[executor]

// app holds the state shared by the subcommands of one invocation.
type app struct {
	configFile string
	envFile    string
	logLevel   string

	cfg     *config.Config
	log     *logger.Logger
	hosts   hostRegistry
	closers []func(context.Context) error
}

func newApp() *app {
	return &app{hosts: newHostRegistry}
}

// shutdown flushes telemetry exporters.
func (a *app) shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, closeFn := range a.closers {
		if err := closeFn(ctx); err != nil && a.log != nil {
			a.log.WithError(err).Warn("telemetry shutdown failed")
		}
	}
	a.closers = nil
}

// loadConfig reads the configuration and applies flag overrides.
func (a *app) loadConfig() error {
	var opts []config.LoaderOption
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if a.envFile != "" {
		opts = append(opts, config.WithEnvFile(a.envFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		if err := cfg.Logging.Validate(); err != nil {
			return &usageError{err: err}
		}
	}
	a.cfg = cfg
	return nil
}

// initTelemetry installs OTLP exporters when telemetry is enabled.
func (a *app) initTelemetry(ctx context.Context) error {
	if !a.cfg.Telemetry.Enabled {
		return nil
	}
	tp, err := observability.InitTracer(ctx, a.cfg.TracerConfig())
	if err != nil {
		return err
	}
	a.closers = append(a.closers, tp.Shutdown)

	mp, err := observability.InitMeter(ctx, a.cfg.MeterConfig())
	if err != nil {
		return err
	}
	a.closers = append(a.closers, mp.Shutdown)
	return nil
}

func (a *app) meter() metric.Meter {
	return observability.Meter(a.cfg.Base.Name)
}
