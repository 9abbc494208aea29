package httpapi

import (
	"context"
	"strings"

	"github.com/riskibarqy/b1g-analytics/internal/platform/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var tracer = otel.Tracer("github.com/riskibarqy/b1g-analytics/internal/interfaces/httpapi")

// startSpan only traces handler entry points. Helpers run inside them.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !isHandlerSpan(name) {
		return ctx, noop.Span{}
	}
	return tracing.Child(ctx, tracer, name)
}

func isHandlerSpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}
