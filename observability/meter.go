package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/hostproc/logger"
	"github.com/kbukum/hostproc/security"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// TLS configures the exporter's client TLS. Ignored when Insecure.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	} else {
		tlsCfg, err := config.TLS.Build()
		if err != nil {
			return nil, fmt.Errorf("building exporter TLS: %w", err)
		}
		if tlsCfg != nil {
			opts = append(opts, otlpmetrichttp.WithTLSClientConfig(tlsCfg))
		}
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds generic operation instruments used by provider middleware.
type Metrics struct {
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
}

// NewMetrics creates operation instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	operationTotal, err := meter.Int64Counter("operation.total",
		metric.WithDescription("Total number of operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation.total counter: %w", err)
	}

	operationDuration, err := meter.Float64Histogram("operation.duration",
		metric.WithDescription("Duration of operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		operationTotal:    operationTotal,
		operationDuration: operationDuration,
		errorTotal:        errorTotal,
	}, nil
}

// RecordOperation records an operation execution.
func (m *Metrics) RecordOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
	))
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}

// ExecMetrics holds the instruments recorded by the process invoker.
type ExecMetrics struct {
	executions     metric.Int64Counter
	duration       metric.Float64Histogram
	active         metric.Int64UpDownCounter
	outputBytes    metric.Int64Counter
	boundaryErrors metric.Int64Counter
}

// NewExecMetrics creates execution instruments on the given meter.
func NewExecMetrics(meter metric.Meter) (*ExecMetrics, error) {
	executions, err := meter.Int64Counter("process.executions",
		metric.WithDescription("Completed executions by program and status class"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.executions counter: %w", err)
	}

	duration, err := meter.Float64Histogram("process.duration",
		metric.WithDescription("Wall time of executions, boundary calls included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.duration histogram: %w", err)
	}

	active, err := meter.Int64UpDownCounter("process.active",
		metric.WithDescription("Executions currently holding the host slot"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.active counter: %w", err)
	}

	outputBytes, err := meter.Int64Counter("process.output.bytes",
		metric.WithDescription("Bytes captured from stdout and stderr"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.output.bytes counter: %w", err)
	}

	boundaryErrors, err := meter.Int64Counter("process.boundary.errors",
		metric.WithDescription("Host calls that failed, by protocol step"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.boundary.errors counter: %w", err)
	}

	return &ExecMetrics{
		executions:     executions,
		duration:       duration,
		active:         active,
		outputBytes:    outputBytes,
		boundaryErrors: boundaryErrors,
	}, nil
}

// RecordStart marks an execution as holding the host slot.
func (m *ExecMetrics) RecordStart(ctx context.Context) {
	m.active.Add(ctx, 1)
}

// RecordEnd releases the slot taken by RecordStart.
func (m *ExecMetrics) RecordEnd(ctx context.Context) {
	m.active.Add(ctx, -1)
}

// RecordExecution records a completed execution.
func (m *ExecMetrics) RecordExecution(ctx context.Context, program string, status int32, stdoutBytes, stderrBytes int, d time.Duration) {
	class := "ok"
	if status != 0 {
		class = "nonzero"
	}
	m.executions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("program", program),
		attribute.String("status_class", class),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("program", program)))
	m.outputBytes.Add(ctx, int64(stdoutBytes), metric.WithAttributes(attribute.String("stream", "stdout")))
	m.outputBytes.Add(ctx, int64(stderrBytes), metric.WithAttributes(attribute.String("stream", "stderr")))
}

// RecordBoundaryError records a failed host call.
func (m *ExecMetrics) RecordBoundaryError(ctx context.Context, program, step string) {
	m.boundaryErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("program", program),
		attribute.String("step", step),
	))
}
