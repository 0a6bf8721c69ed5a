package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	httpapiTracerName = "fantasy-racing/internal/interfaces/httpapi"
	handlerSpanPrefix = "httpapi.Handler."
)

// startSpan opens a child span for handler entry points only. Middleware and
// response helpers keep their names at call sites but share the request span,
// and untraced requests such as health probes never start a root span here.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	current := trace.SpanFromContext(ctx)
	if !current.SpanContext().IsValid() || !isHandlerSpan(name) {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return otel.Tracer(httpapiTracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func isHandlerSpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix) && len(name) > len(handlerSpanPrefix)
}
