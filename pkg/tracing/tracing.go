// Package tracing wraps the process-wide otel tracer so call sites can
// start a span without threading a *trace.Tracer through every
// constructor.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer

// SetTracer installs the tracer used by StartSpan. Call once at startup.
func SetTracer(t trace.Tracer) {
	tracer = t
}

// StartSpan starts a span named name. If no tracer has been installed it
// returns ctx unchanged and the (no-op) span already on it.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name)
}
