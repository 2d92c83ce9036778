package messaging

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrier(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "existing", Value: []byte("a")}}}
	c := carrierFor(&msg)

	c.Set("existing", "b")
	c.Set("traceparent", "00-abc")

	assert.Equal(t, "b", c.Get("existing"))
	assert.Equal(t, "00-abc", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"existing", "traceparent"}, c.Keys())
	assert.Len(t, msg.Headers, 2)
}

func TestHeaderCarrier_TraceContextRoundTrip(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	prop := propagation.TraceContext{}
	var msg kafka.Message
	prop.Inject(ctx, carrierFor(&msg))
	require.NotEmpty(t, msg.Headers)

	extracted := trace.SpanContextFromContext(prop.Extract(context.Background(), carrierFor(&msg)))
	assert.Equal(t, traceID, extracted.TraceID())
	assert.Equal(t, spanID, extracted.SpanID())
	assert.True(t, extracted.IsRemote())
}
