package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// spanAttributes builds the span attributes for a message moving through
// the bus. Module and event names are lifted from the lifecycle metadata
// when the message carries them, so traces group naturally by module.
func spanAttributes(operation, topic string, wmMsg *message.Message) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("messaging.system", "watermill"),
		attribute.String("messaging.operation", operation),
		attribute.String("messaging.destination.name", topic),
		attribute.String("messaging.message.id", wmMsg.UUID),
		attribute.Int("messaging.message.body.size", len(wmMsg.Payload)),
	}
	if module := wmMsg.Metadata.Get(MetaKeyModule); module != "" {
		attrs = append(attrs, attribute.String("remora.module", module))
	}
	if event := wmMsg.Metadata.Get(MetaKeyEvent); event != "" {
		attrs = append(attrs, attribute.String("remora.event", event))
	}
	if userID := wmMsg.Metadata.Get(metaKeyUserID); userID != "" {
		attrs = append(attrs, attribute.String("user.id", userID))
	}
	return attrs
}

// TracingMiddleware wraps a watermill handler so every processed message
// gets its own span, linked to the publish span through the message context.
func TracingMiddleware(tracer trace.Tracer) func(message.HandlerFunc) message.HandlerFunc {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(wmMsg *message.Message) ([]*message.Message, error) {
			ctx := wmMsg.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			topic := wmMsg.Metadata.Get(metaKeyTopic)
			spanCtx, span := tracer.Start(ctx, topic+" process",
				trace.WithAttributes(spanAttributes("process", topic, wmMsg)...))
			defer span.End()

			wmMsg.SetContext(spanCtx)

			produced, err := h(wmMsg)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}

			span.SetAttributes(attribute.Int("messaging.batch.message_count", len(produced)))
			return produced, nil
		}
	}
}

// TracedPublisher decorates a watermill publisher with one span per
// published message.
type TracedPublisher struct {
	publisher message.Publisher
	tracer    trace.Tracer
}

// NewTracedPublisher wraps pub so every Publish call records spans.
func NewTracedPublisher(pub message.Publisher, tracer trace.Tracer) *TracedPublisher {
	return &TracedPublisher{publisher: pub, tracer: tracer}
}

// Publish starts a span per message, delegates to the wrapped publisher,
// and records the outcome on each span before ending it. The span context
// is stored on the message so downstream handlers continue the trace.
func (p *TracedPublisher) Publish(topic string, messages ...*message.Message) error {
	spans := make([]trace.Span, 0, len(messages))
	for _, wmMsg := range messages {
		ctx := wmMsg.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		spanCtx, span := p.tracer.Start(ctx, topic+" publish",
			trace.WithAttributes(spanAttributes("publish", topic, wmMsg)...))
		wmMsg.SetContext(spanCtx)
		spans = append(spans, span)
	}

	err := p.publisher.Publish(topic, messages...)
	for _, span := range spans {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
	return err
}

// Close closes the wrapped publisher.
func (p *TracedPublisher) Close() error {
	return p.publisher.Close()
}
