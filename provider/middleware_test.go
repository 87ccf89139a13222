package provider_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/hostproc/logger"
	"github.com/kbukum/hostproc/observability"
	"github.com/kbukum/hostproc/provider"
)

type orderTracker struct {
	inner provider.RequestResponse[string, string]
	tag   string
	order *[]string
}

func (o *orderTracker) Name() string                         { return o.inner.Name() }
func (o *orderTracker) IsAvailable(ctx context.Context) bool { return o.inner.IsAvailable(ctx) }
func (o *orderTracker) Execute(ctx context.Context, in string) (string, error) {
	*o.order = append(*o.order, o.tag+":before")
	out, err := o.inner.Execute(ctx, in)
	*o.order = append(*o.order, o.tag+":after")
	return out, err
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(tag string) provider.Middleware[string, string] {
		return func(inner provider.RequestResponse[string, string]) provider.RequestResponse[string, string] {
			return &orderTracker{inner: inner, tag: tag, order: &order}
		}
	}

	wrapped := provider.Chain(mw("A"), mw("B"))(&echoProvider{name: "test"})
	if _, err := wrapped.Execute(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}

	want := []string{"A:before", "B:before", "B:after", "A:after"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestChain_Empty(t *testing.T) {
	wrapped := provider.Chain[string, string]()(&echoProvider{name: "test"})
	got, err := wrapped.Execute(context.Background(), "hello")
	if err != nil || got != "echo:hello" {
		t.Fatalf("expected echo:hello, got %q, err %v", got, err)
	}
}

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)

	wrapped := provider.WithLogging[string, string](log)(&echoProvider{name: "local", failUntil: 1})
	_, _ = wrapped.Execute(context.Background(), "a")
	_, _ = wrapped.Execute(context.Background(), "b")

	out := buf.String()
	if !strings.Contains(out, "provider execute failed") || !strings.Contains(out, "provider execute ok") {
		t.Errorf("expected failure and success lines, got %q", out)
	}
	if !strings.Contains(out, `"provider":"local"`) {
		t.Errorf("expected provider field, got %q", out)
	}
}

func TestWithMetrics(t *testing.T) {
	metrics, err := observability.NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	p := &echoProvider{name: "local", failUntil: 1}
	wrapped := provider.WithMetrics[string, string](metrics)(p)

	if _, err := wrapped.Execute(context.Background(), "a"); err == nil {
		t.Error("expected first call to fail")
	}
	if got, err := wrapped.Execute(context.Background(), "b"); err != nil || got != "echo:b" {
		t.Errorf("expected echo:b, got %q (%v)", got, err)
	}
	if wrapped.Name() != "local" || !wrapped.IsAvailable(context.Background()) {
		t.Error("expected Name and IsAvailable to delegate")
	}
}

func TestWithTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	}()

	wrapped := provider.WithTracing[string, string]("hostproc")(&echoProvider{name: "local", failUntil: 1})
	_, _ = wrapped.Execute(context.Background(), "a")

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "hostproc.local" {
		t.Errorf("expected span hostproc.local, got %q", spans[0].Name)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected the failure to be recorded on the span")
	}
}
