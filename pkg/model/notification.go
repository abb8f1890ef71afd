package model

import "time"

const (
	EventCodeIssued = "reservation.code_issued"
	EventConfirmed  = "reservation.confirmed"
	EventApproved   = "reservation.approved"
	EventRejected   = "reservation.rejected"
	EventCancelled  = "reservation.cancelled"
	EventExpired    = "reservation.expired"
)

// Notification is a delivery request for the mailer.
type Notification struct {
	ReservationID string    `json:"reservation_id"`
	EventType     string    `json:"event_type"`
	Recipient     string    `json:"recipient"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
}
