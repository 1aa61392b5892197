// Package otel bridges cursortools observations to OpenTelemetry.
package otel

import (
	"context"
	"errors"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/petal-labs/cursortools/tool"
)

// EnvOTLPEndpoint enables OTLP/HTTP trace export when set.
const EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"

const instrumentationName = "github.com/petal-labs/cursortools"

// Telemetry owns the tracer provider installed for one CLI process.
type Telemetry struct {
	Observer *ToolObserver

	tracerProvider *sdktrace.TracerProvider
}

// TelemetryOptions configures Setup.
type TelemetryOptions struct {
	ServiceName    string
	ServiceVersion string
	// Endpoint overrides OTEL_EXPORTER_OTLP_ENDPOINT.
	Endpoint string
	// Exporter replaces the OTLP exporter, mainly for tests.
	Exporter sdktrace.SpanExporter
}

// Setup builds a ToolObserver on the global meter provider and, when an
// endpoint or exporter is configured, an SDK tracer provider exporting spans.
// Without either, spans go to a no-op tracer. The observer is installed with
// tool.SetObserver.
func Setup(ctx context.Context, opts TelemetryOptions) (*Telemetry, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = strings.TrimSpace(os.Getenv(EnvOTLPEndpoint))
	}

	t := &Telemetry{}
	var tracer trace.Tracer = noop.NewTracerProvider().Tracer(instrumentationName)

	exporter := opts.Exporter
	if exporter == nil && endpoint != "" {
		exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
		if err != nil {
			return nil, err
		}
		exporter = exp
	}
	if exporter != nil {
		name := opts.ServiceName
		if name == "" {
			name = "cursortools"
		}
		res := resource.NewSchemaless(
			attribute.String("service.name", name),
			attribute.String("service.version", opts.ServiceVersion),
		)
		t.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		tracer = t.tracerProvider.Tracer(instrumentationName)
	}

	observer, err := NewToolObserver(otel.GetMeterProvider().Meter(instrumentationName), tracer)
	if err != nil {
		if t.tracerProvider != nil {
			_ = t.tracerProvider.Shutdown(ctx)
		}
		return nil, err
	}
	t.Observer = observer
	tool.SetObserver(observer)
	return t, nil
}

// Exporting reports whether spans leave the process.
func (t *Telemetry) Exporting() bool {
	return t != nil && t.tracerProvider != nil
}

// ForceFlush exports any buffered spans.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if !t.Exporting() {
		return nil
	}
	return t.tracerProvider.ForceFlush(ctx)
}

// Shutdown flushes pending spans and restores the no-op tool observer.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	tool.SetObserver(nil)
	if t.tracerProvider == nil {
		return nil
	}
	if err := t.tracerProvider.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
