// Package observability provides OpenTelemetry tracing and metrics for
// process executions.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("hostproc"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("hostproc"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewExecMetrics(observability.Meter("hostproc"))
//	metrics.RecordExecution(ctx, "echo", 0, 12, 0, duration)
//
// Without InitTracer/InitMeter the global otel providers are no-ops, so
// instrumented code costs nothing when observability is off.
package observability
