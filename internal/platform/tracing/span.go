// Package tracing holds small helpers around the global OpenTelemetry tracer.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Child starts name under the span already carried by ctx. Without a valid
// parent, or with an empty name, ctx is returned as is with a no-op span so
// probes and background work never produce orphan root spans.
func Child(ctx context.Context, tracer trace.Tracer, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if name == "" || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, noop.Span{}
	}
	return tracer.Start(ctx, name, opts...)
}
