package validator

import (
	"testing"
	"venuebook/pkg/logger"
	"venuebook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *ReservationValidator {
	return NewReservationValidator(logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	}))
}

func validRequest() *model.ReservationRequest {
	return &model.ReservationRequest{
		VenueID:   "65f000000000000000000001",
		Date:      "2025-03-10",
		StartTime: "10:00",
		EndTime:   "11:00",
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, newTestValidator().Validate(validRequest()))
}

func TestValidate_FieldErrors(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name   string
		mutate func(*model.ReservationRequest)
		field  string
	}{
		{"missing venue", func(r *model.ReservationRequest) { r.VenueID = "" }, "venue_id"},
		{"bad venue id", func(r *model.ReservationRequest) { r.VenueID = "hall-a" }, "venue_id"},
		{"bad date", func(r *model.ReservationRequest) { r.Date = "10/03/2025" }, "date"},
		{"bad start", func(r *model.ReservationRequest) { r.StartTime = "9am" }, "start_time"},
		{"out of range end", func(r *model.ReservationRequest) { r.EndTime = "24:30" }, "end_time"},
		{"end before start", func(r *model.ReservationRequest) { r.StartTime, r.EndTime = "11:00", "10:00" }, "end_time"},
		{"empty interval", func(r *model.ReservationRequest) { r.EndTime = r.StartTime }, "end_time"},
		{"negative attendees", func(r *model.ReservationRequest) { r.ExpectedAttendees = -1 }, "expected_attendees"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := v.Validate(req)

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.Details(), tt.field)
		})
	}
}
