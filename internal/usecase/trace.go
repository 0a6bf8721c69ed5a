package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const usecaseTracerName = "fantasy-racing/internal/usecase"

// startUsecaseSpan only opens a child span; without a sampled parent (tests,
// background work) the context is returned unchanged with a no-op span.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if name == "" || !parent.SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return otel.Tracer(usecaseTracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func leagueAttr(leagueID string) attribute.KeyValue {
	return attribute.String("fantasy.league_id", leagueID)
}

func roundAttr(round int) attribute.KeyValue {
	return attribute.Int("fantasy.round", round)
}
