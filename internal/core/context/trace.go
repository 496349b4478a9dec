// Package context carries request-scoped identifiers between the HTTP
// layer, the transaction manager and the logger.
package context

import (
	"context"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// TraceContext identifies one request as it moves through the engine.
type TraceContext struct {
	TraceID   string
	RequestID string
}

type traceContextKey struct{}

// WithTrace attaches trace identifiers to the context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns the attached trace identifiers, or nil.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// TraceID resolves the request's trace ID: the HTTP-assigned one when
// present, falling back to the active span. Empty outside a request.
func TraceID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.TraceID
	}
	if sc := oteltrace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// RequestID returns the request ID, or empty outside a request.
func RequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}
