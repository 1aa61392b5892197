package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/petal-labs/cursortools/tool"
)

// ToolObserver records tool invocation and discovery signals into
// OpenTelemetry.
type ToolObserver struct {
	tracer trace.Tracer

	invocations metric.Int64Counter
	latency     metric.Float64Histogram
	discoveries metric.Int64Counter
	registered  metric.Int64Counter
	skipped     metric.Int64Counter
}

// NewToolObserver creates a tool observer bound to the provided meter/tracer.
// A nil tracer disables spans.
func NewToolObserver(meter metric.Meter, tracer trace.Tracer) (*ToolObserver, error) {
	invocations, err := meter.Int64Counter(
		"cursortools.tool.invocations",
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"cursortools.tool.latency",
		metric.WithDescription("Tool latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	discoveries, err := meter.Int64Counter(
		"cursortools.discovery.runs",
		metric.WithDescription("Number of discovery passes"),
	)
	if err != nil {
		return nil, err
	}
	registered, err := meter.Int64Counter(
		"cursortools.discovery.registered",
		metric.WithDescription("Number of tools registered by discovery"),
	)
	if err != nil {
		return nil, err
	}
	skipped, err := meter.Int64Counter(
		"cursortools.discovery.skipped",
		metric.WithDescription("Number of broken units skipped by discovery"),
	)
	if err != nil {
		return nil, err
	}

	return &ToolObserver{
		tracer:      tracer,
		invocations: invocations,
		latency:     latency,
		discoveries: discoveries,
		registered:  registered,
		skipped:     skipped,
	}, nil
}

// ObserveInvoke records one invocation result.
func (o *ToolObserver) ObserveInvoke(observation tool.InvokeObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tool_name", observation.ToolName),
		attribute.Bool("success", observation.Success),
	}
	if observation.ErrorCode != "" {
		attrs = append(attrs, attribute.String("error_code", observation.ErrorCode))
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.invocations.Add(ctx, 1, options)
	o.latency.Record(ctx, seconds(observation.DurationMS), options)

	if o.tracer == nil {
		return
	}
	_, span := o.tracer.Start(ctx, "tool.invoke", trace.WithAttributes(attrs...))
	if !observation.Success {
		span.SetStatus(codes.Error, observation.ErrorCode)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// ObserveDiscovery records one discovery pass.
func (o *ToolObserver) ObserveDiscovery(observation tool.DiscoveryObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("source", observation.Source),
		attribute.Bool("success", observation.Success),
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.discoveries.Add(ctx, 1, options)
	o.registered.Add(ctx, int64(observation.Registered), options)
	o.skipped.Add(ctx, int64(observation.Skipped), options)

	if o.tracer == nil {
		return
	}
	_, span := o.tracer.Start(ctx, "tool.discover", trace.WithAttributes(append(attrs,
		attribute.Int("registered", observation.Registered),
		attribute.Int("skipped", observation.Skipped),
		attribute.Int64("duration_ms", observation.DurationMS),
	)...))
	if !observation.Success {
		span.SetStatus(codes.Error, "discovery failed")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func seconds(ms int64) float64 {
	return float64(time.Duration(ms)*time.Millisecond) / float64(time.Second)
}

var _ tool.Observer = (*ToolObserver)(nil)
