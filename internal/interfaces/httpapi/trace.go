package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/riskibarqy/nfl-pickem/internal/interfaces/httpapi")

// handlerSpan opens a child span named after the handler and tagged with the
// matched route. Requests the tracing middleware skipped (health probes)
// have no parent and keep the no-op span.
func handlerSpan(r *http.Request, name string) (context.Context, trace.Span) {
	ctx := r.Context()
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	opts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}
	if r.Pattern != "" {
		opts = append(opts, trace.WithAttributes(attribute.String("http.route", r.Pattern)))
	}
	return tracer.Start(ctx, "httpapi."+name, opts...)
}
