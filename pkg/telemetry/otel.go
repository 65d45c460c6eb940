package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "weave"

// TracerConfig configures the OpenTelemetry tracer this package uses.
type TracerConfig struct {
	// TracerName names the tracer (default: "weave").
	TracerName string
}

// TracerOption configures a TracerConfig.
type TracerOption func(*TracerConfig)

func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) { c.TracerName = name }
}

// Tracer wraps an OpenTelemetry tracer for the scheduler tick loop and
// the STWS reconciler, modeled on the teacher's OpenTelemetry
// middleware (pkg/middleware/otel.go): one span per traced operation,
// error recorded via span.RecordError plus codes.Error status.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer resolves a tracer from the global OpenTelemetry provider.
// Configure that provider in main() before constructing a Tracer.
func NewTracer(opts ...TracerOption) *Tracer {
	cfg := TracerConfig{TracerName: defaultTracerName}
	for _, o := range opts {
		o(&cfg)
	}
	return &Tracer{tracer: otel.Tracer(cfg.TracerName)}
}

// TraceTick starts a span named "weave.tick" around fn, a scheduler
// queue drain.
func (t *Tracer) TraceTick(ctx context.Context, fn func()) {
	_, span := t.tracer.Start(ctx, "weave.tick", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	fn()
	span.SetStatus(codes.Ok, "")
}

// TraceReconcile starts a span named "weave.reconcile" around fn, one
// stws.Reconcile call, recording the operation counts fn returns as
// span attributes and any error as a failed span.
func (t *Tracer) TraceReconcile(ctx context.Context, fn func() (ReconcileCounts, error)) error {
	ctx, span := t.tracer.Start(ctx, "weave.reconcile", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	counts, err := fn()
	span.SetAttributes(
		attribute.Int("weave.reconcile.inserts", counts.Inserts),
		attribute.Int("weave.reconcile.removes", counts.Removes),
		attribute.Int("weave.reconcile.replaces", counts.Replaces),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
