package storage

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var storageTracer = otel.Tracer("competehq/internal/storage")
var storageNoopSpan = trace.SpanFromContext(context.Background())

func startStorageSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, storageNoopSpan
	}
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, storageNoopSpan
	}
	return storageTracer.Start(ctx, name)
}
