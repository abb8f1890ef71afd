// Package notification hands lifecycle notifications to the delivery
// pipeline. Delivery itself happens out of process in the notifier service.
package notification

import (
	"context"
	"fmt"
	"venuebook/pkg/kafka"
	"venuebook/pkg/middleware"
	"venuebook/pkg/model"
)

type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaNotifier publishes notifications keyed by reservation id, so every
// event for one reservation lands on the same partition in order.
type KafkaNotifier struct {
	publisher Publisher
	source    string
}

func NewKafkaNotifier(publisher Publisher, source string) *KafkaNotifier {
	return &KafkaNotifier{publisher: publisher, source: source}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n model.Notification) error {
	builder := kafka.NewMessage().
		WithKey(n.ReservationID).
		WithValue(n).
		WithEventType(n.EventType).
		WithSource(k.source).
		WithTimestamp(n.CreatedAt)
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		builder.WithCorrelationID(requestID)
	}

	msg, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build notification message: %w", err)
	}
	if err := k.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s notification: %w", n.EventType, err)
	}
	return nil
}
