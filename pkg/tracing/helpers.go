package tracing

import (
	"context"
	"errors"

	"go.opencensus.io/trace"
)

// StartServiceSpan starts a span named "<service>.<method>" carrying attrs
func StartServiceSpan(ctx context.Context, service, method string, attrs ...trace.Attribute) (context.Context, *trace.Span) {
	ctx, span := trace.StartSpan(ctx, service+"."+method)
	if len(attrs) > 0 {
		span.AddAttributes(attrs...)
	}
	return ctx, span
}

// DocumentAttribute tags a span with the document it works on
func DocumentAttribute(documentID string) trace.Attribute {
	return trace.StringAttribute("document_id", documentID)
}

// statusOf maps an operation error to a span status. Cancelled and timed out
// requests keep their own codes.
func statusOf(err error) trace.Status {
	switch {
	case errors.Is(err, context.Canceled):
		return trace.Status{Code: trace.StatusCodeCancelled, Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return trace.Status{Code: trace.StatusCodeDeadlineExceeded, Message: err.Error()}
	default:
		return trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()}
	}
}

// EndSpan records err on span, if any, and ends it
func EndSpan(span *trace.Span, err error) {
	if err != nil {
		span.SetStatus(statusOf(err))
	}
	span.End()
}

// Traced runs fn inside a service span and records its error on the span
func Traced[T any](ctx context.Context, service, method string, fn func(context.Context) (T, error), attrs ...trace.Attribute) (T, error) {
	ctx, span := StartServiceSpan(ctx, service, method, attrs...)
	result, err := fn(ctx)
	EndSpan(span, err)
	return result, err
}

// MarkSpanError marks the span of ctx as failed with err
func MarkSpanError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if span := trace.FromContext(ctx); span != nil {
		span.SetStatus(statusOf(err))
	}
}
