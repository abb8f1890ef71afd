package model

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Reservation statuses. Only provisional is non-terminal.
const (
	StatusProvisional = "provisional"
	StatusConfirmed   = "confirmed"
	StatusRejected    = "rejected"
	StatusCancelled   = "cancelled"
)

type Reservation struct {
	ID                string     `json:"id,omitempty" bson:"_id,omitempty"`
	VenueID           string     `json:"venue_id" bson:"venue_id"`
	VenueName         string     `json:"venue_name,omitempty" bson:"venue_name,omitempty"`
	RequesterID       string     `json:"requester_id" bson:"requester_id"`
	RequesterEmail    string     `json:"requester_email,omitempty" bson:"requester_email,omitempty"`
	Date              string     `json:"date" bson:"date"`
	StartTime         string     `json:"start_time" bson:"start_time"`
	EndTime           string     `json:"end_time" bson:"end_time"`
	Status            string     `json:"status" bson:"status"`
	Title             string     `json:"title" bson:"title"`
	Purpose           string     `json:"purpose" bson:"purpose"`
	Description       string     `json:"description,omitempty" bson:"description,omitempty"`
	ExpectedAttendees int        `json:"expected_attendees,omitempty" bson:"expected_attendees,omitempty"`
	Code              string     `json:"-" bson:"code,omitempty"`
	CodeExpiresAt     *time.Time `json:"code_expires_at,omitempty" bson:"code_expires_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" bson:"updated_at"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
	ApprovedBy        string     `json:"approved_by,omitempty" bson:"approved_by,omitempty"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	RejectedAt        *time.Time `json:"rejected_at,omitempty" bson:"rejected_at,omitempty"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

// ValidStatus reports whether s names a reservation status.
func ValidStatus(s string) bool {
	switch s {
	case StatusProvisional, StatusConfirmed, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func (r *Reservation) IsActive() bool {
	return r.Status == StatusProvisional || r.Status == StatusConfirmed
}

func (r *Reservation) IsTerminal() bool {
	return r.Status != StatusProvisional
}

type ReservationRequest struct {
	VenueID           string `json:"venue_id" validate:"required,mongodb"`
	Date              string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime         string `json:"start_time" validate:"required,clock"`
	EndTime           string `json:"end_time" validate:"required,clock"`
	Title             string `json:"title,omitempty" validate:"omitempty,max=200"`
	Purpose           string `json:"purpose,omitempty" validate:"omitempty,max=200"`
	Description       string `json:"description,omitempty" validate:"omitempty,max=1000"`
	ExpectedAttendees int    `json:"expected_attendees,omitempty" validate:"omitempty,min=1"`
}

// ReservationReceipt is what create and resend hand back. The code is never
// serialized; it travels to the requester only through a notification.
type ReservationReceipt struct {
	Reservation   *Reservation `json:"reservation"`
	IssuedCode    string       `json:"-"`
	CodeExpiresAt time.Time    `json:"code_expires_at"`
}

type StatusCount struct {
	Status string `json:"status" bson:"_id"`
	Count  int64  `json:"count" bson:"count"`
}
