package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Call outcomes.
const (
	OutcomeSuccess           = "success"
	OutcomeNoContent         = "no_content"
	OutcomeProtocolViolation = "protocol_violation"
	OutcomeTransportFault    = "transport_fault"
)

// Call tracks the span and metrics of one HTTP call.
type Call struct {
	method  string
	start   time.Time
	span    trace.Span
	metrics *Metrics
}

// StartCall starts a span for a call and records the call start. A nil
// metrics skips metric recording.
func StartCall(ctx context.Context, metrics *Metrics, method, target string) (context.Context, *Call) {
	ctx, span := StartSpan(ctx, SpanCall,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrMethod, method),
			attribute.String(AttrURL, target),
		),
	)
	if metrics != nil {
		metrics.RecordCallStart(ctx, method)
	}
	return ctx, &Call{method: method, start: time.Now(), span: span, metrics: metrics}
}

// SetAttributes adds attributes to the call span.
func (c *Call) SetAttributes(attrs ...attribute.KeyValue) {
	c.span.SetAttributes(attrs...)
}

// End finishes the span and records the outcome. status is 0 when no
// response was received.
func (c *Call) End(ctx context.Context, outcome string, status int, err error) {
	duration := time.Since(c.start)

	if status > 0 {
		c.span.SetAttributes(attribute.Int(AttrStatusCode, status))
	}
	c.span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	if err != nil {
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, outcome)
	}
	c.span.End()

	if c.metrics != nil {
		c.metrics.RecordCallEnd(ctx, c.method, outcome, duration)
	}
}

// Duration returns the elapsed time since the call started.
func (c *Call) Duration() time.Duration {
	return time.Since(c.start)
}
