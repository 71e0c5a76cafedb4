package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Run executes fn inside a span named name. A returned error is recorded on
// the span and marks it failed; otherwise the span ends with status OK.
// A nil tracer runs fn untraced.
func Run(ctx context.Context, tracer trace.Tracer, name string, attrs []attribute.KeyValue, fn func(ctx context.Context, span trace.Span) error) error {
	if tracer == nil {
		return fn(ctx, trace.SpanFromContext(ctx))
	}

	ctx, span := tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	if err := fn(ctx, span); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
