package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestTraceRoundTrip(t *testing.T) {
	ctx := WithTrace(context.Background(), &TraceContext{
		TraceID:   "trace-1",
		RequestID: "req-1",
	})

	assert.Equal(t, "trace-1", TraceID(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestTraceIDFallsBackToSpan(t *testing.T) {
	tid, err := oteltrace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	assert.NoError(t, err)
	sc := oteltrace.NewSpanContext(oteltrace.SpanContextConfig{TraceID: tid})
	ctx := oteltrace.ContextWithSpanContext(context.Background(), sc)

	assert.Equal(t, "0123456789abcdef0123456789abcdef", TraceID(ctx))
}

func TestEmptyOutsideRequest(t *testing.T) {
	assert.Nil(t, GetTrace(context.Background()))
	assert.Empty(t, TraceID(context.Background()))
	assert.Empty(t, RequestID(context.Background()))
}
