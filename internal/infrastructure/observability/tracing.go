package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "chat-api"
)

// GetTracer returns the tracer for the chat-api service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// ConversationAttributes returns common attributes for conversation spans.
func ConversationAttributes(conversationID, ownerID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("conversation.id", conversationID),
		attribute.String("conversation.owner_id", ownerID),
	}
}

// MessageAttributes returns common attributes for message spans.
func MessageAttributes(messageID string, sequence int, fromAI bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("message.id", messageID),
		attribute.Int("message.sequence", sequence),
		attribute.Bool("message.from_ai", fromAI),
	}
}

// StartResponderSpan starts a new span for a responder call.
func StartResponderSpan(ctx context.Context, historyLen int) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "responder.respond",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int("responder.history_length", historyLen),
		),
	)
	return ctx, span
}

// StartCascadeSpan starts a new span for an edit-and-regenerate cascade.
func StartCascadeSpan(ctx context.Context, messageID string, sequence int) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "message.edit_cascade",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(MessageAttributes(messageID, sequence, false)...),
	)
	return ctx, span
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
