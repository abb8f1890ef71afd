// Package notifier consumes notification requests published by the
// reservations service and delivers them as email.
package notifier

import (
	"context"
	"errors"
	"venuebook/pkg/kafka"
	"venuebook/pkg/logger"
	"venuebook/pkg/model"
	"venuebook/pkg/sanitizer"
)

var ErrNoRecipient = errors.New("notification has no recipient")

type Handler struct {
	mailer Mailer
	log    *logger.Logger
}

func NewHandler(mailer Mailer, log *logger.Logger) *Handler {
	return &Handler{mailer: mailer, log: log.Component("notifier")}
}

// Handle is a kafka.MessageHandler. Malformed requests are permanent
// failures and go straight to the DLQ.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var n model.Notification
	if err := msg.DecodeValue(&n); err != nil {
		return err
	}
	n.Recipient = sanitizer.NormalizeEmail(n.Recipient)
	if n.Recipient == "" {
		return kafka.NewPermanentError("invalid notification", ErrNoRecipient)
	}
	if n.EventType == "" {
		n.EventType = msg.GetEventType()
	}

	id, err := h.mailer.Send(ctx, n)
	if err != nil {
		return err
	}

	h.log.Info("Notification delivered",
		"event_type", n.EventType,
		"reservation_id", n.ReservationID,
		"message_id", id,
		"correlation_id", msg.GetCorrelationID(),
	)
	return nil
}
