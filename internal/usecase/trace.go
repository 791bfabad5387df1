package usecase

import (
	"context"
	"strings"

	"github.com/riskibarqy/matchfeed/internal/domain/sensor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("matchfeed/internal/usecase")
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// startUsecaseSpan only opens a child span; scheduler ticks without a
// parent stay untraced.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, usecaseNoopSpan
	}
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func sensorAttributes(cfg sensor.Config) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("sensor.id", cfg.ID),
		attribute.String("sensor.source", string(cfg.Source)),
		attribute.String("sensor.kind", string(cfg.Kind)),
		attribute.String("sensor.competition", cfg.CompetitionCode),
	}
}
