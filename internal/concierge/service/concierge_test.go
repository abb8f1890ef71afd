package service

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"testing"
	"time"
	concierge "venuebook/internal/concierge/core"
	"venuebook/internal/concierge/flows"
	"venuebook/pkg/client"
	"venuebook/pkg/config"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/logger"
	"venuebook/pkg/model"
	"venuebook/pkg/sealer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "caller-token"

type fakeReservations struct {
	created     []*model.ReservationRequest
	createErr   error
	suggestions []model.Suggestion
	slots       map[string][]model.SlotAvailability
	mine        []*model.Reservation
	mineErr     error
	cancelled   []string
	tokens      []string
}

func (f *fakeReservations) Create(ctx context.Context, token string, req *model.ReservationRequest) (*model.ReservationReceipt, error) {
	f.tokens = append(f.tokens, token)
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &model.ReservationReceipt{
		Reservation: &model.Reservation{
			ID:        "res-1",
			VenueID:   req.VenueID,
			Date:      req.Date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Status:    model.StatusProvisional,
		},
		CodeExpiresAt: time.Date(2025, 3, 9, 8, 10, 0, 0, time.UTC),
	}, nil
}

func (f *fakeReservations) Verify(ctx context.Context, token, id, code string) (*model.Reservation, error) {
	if code != "482193" {
		return nil, &client.APIError{Status: http.StatusBadRequest, Code: apperrors.CodeCodeInvalid, Message: "Invalid verification code"}
	}
	return &model.Reservation{ID: id, Date: "2025-03-10", StartTime: "14:00", EndTime: "15:00", Status: model.StatusConfirmed}, nil
}

func (f *fakeReservations) Cancel(ctx context.Context, token, id string) (*model.Reservation, error) {
	f.cancelled = append(f.cancelled, id)
	return &model.Reservation{ID: id, Date: "2025-03-10", StartTime: "14:00", EndTime: "15:00", Status: model.StatusCancelled}, nil
}

func (f *fakeReservations) Mine(ctx context.Context, token string) ([]*model.Reservation, error) {
	return f.mine, f.mineErr
}

func (f *fakeReservations) Slots(ctx context.Context, token, venueID, date string) ([]model.SlotAvailability, error) {
	return f.slots[venueID], nil
}

func (f *fakeReservations) Suggestions(ctx context.Context, token, venueID, date, start, end string) ([]model.Suggestion, error) {
	return f.suggestions, nil
}

type fakeVenues struct {
	venues []*model.Venue
}

func (f *fakeVenues) GetByID(ctx context.Context, token, id string) (*model.Venue, error) {
	for _, v := range f.venues {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, &client.APIError{Status: http.StatusNotFound, Code: apperrors.CodeNotFound, Message: "Venue not found"}
}

func (f *fakeVenues) ListActive(ctx context.Context, token string) ([]*model.Venue, error) {
	var active []*model.Venue
	for _, v := range f.venues {
		if v.Active {
			active = append(active, v)
		}
	}
	return active, nil
}

func (f *fakeVenues) SearchByName(ctx context.Context, token, name string) ([]*model.Venue, error) {
	var found []*model.Venue
	for _, v := range f.venues {
		if v.Name == name {
			found = append(found, v)
		}
	}
	return found, nil
}

type fixture struct {
	svc          ConciergeService
	reservations *fakeReservations
	tokens       *sealer.Sealer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	key, err := sealer.GenerateKey()
	require.NoError(t, err)
	tokens, err := sealer.New(key)
	require.NoError(t, err)

	reservations := &fakeReservations{slots: map[string][]model.SlotAvailability{}}
	venues := &fakeVenues{venues: []*model.Venue{
		{ID: "v1", Name: "Main Hall", Capacity: 200, Active: true},
		{ID: "v2", Name: "Conference Room A", Capacity: 12, Active: true},
		{ID: "v3", Name: "Old Annex", Capacity: 30, Active: false},
	}}

	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:     "info",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		SlotLength: time.Hour,
	}
	now := func() time.Time { return time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC) }

	svc := NewConciergeService(&concierge.Backends{
		Reservations: reservations,
		Venues:       venues,
		SlotTokens:   tokens,
	}, cfg, WithClock(now))

	return &fixture{svc: svc, reservations: reservations, tokens: tokens}
}

func TestChat_BookingFromFreeText(t *testing.T) {
	f := newFixture(t)

	reply, err := f.svc.Chat(context.Background(), testToken, "Book the Main Hall tomorrow at 2 pm", nil)

	require.NoError(t, err)
	assert.Equal(t, "booking", reply.Intent)
	assert.Equal(t, flows.FlowBooking, reply.Flow)
	require.Len(t, f.reservations.created, 1)
	req := f.reservations.created[0]
	assert.Equal(t, "v1", req.VenueID)
	assert.Equal(t, "2025-03-10", req.Date)
	assert.Equal(t, "14:00", req.StartTime)
	assert.Equal(t, "15:00", req.EndTime)
	assert.Equal(t, []string{testToken}, f.reservations.tokens)
	assert.Contains(t, reply.Response, "provisional")
	assert.NotNil(t, reply.Output[flows.OutputReservation])
}

func TestChat_BookingAsksForMissingVenue(t *testing.T) {
	f := newFixture(t)

	reply, err := f.svc.Chat(context.Background(), testToken, "I want to book something tomorrow at 10:00", nil)

	require.NoError(t, err)
	assert.Equal(t, concierge.InputVenue, reply.Missing)
	assert.Len(t, reply.Output[flows.OutputVenues], 2)
	assert.Empty(t, f.reservations.created)
}

func TestChat_BookingAsksForMissingTime(t *testing.T) {
	f := newFixture(t)

	reply, err := f.svc.Chat(context.Background(), testToken, "Book the Main Hall tomorrow", nil)

	require.NoError(t, err)
	assert.Equal(t, concierge.InputStartTime, reply.Missing)
	assert.Empty(t, f.reservations.created)
}

func TestChat_ConflictOffersAlternatesThatCanBeBooked(t *testing.T) {
	f := newFixture(t)
	f.reservations.createErr = &client.APIError{
		Status:  http.StatusConflict,
		Code:    apperrors.CodeConflict,
		Message: "Time slot conflicts with an existing reservation",
		Details: map[string]any{"conflict_type": "overlap with confirmed"},
	}
	f.reservations.suggestions = []model.Suggestion{
		{Date: "2025-03-11", StartTime: "14:00", EndTime: "15:00", Kind: "same_time_other_day"},
		{Date: "2025-03-10", StartTime: "16:00", EndTime: "17:00", Kind: "other_slot_same_day"},
	}

	reply, err := f.svc.Chat(context.Background(), testToken, "Book the Main Hall tomorrow at 2 pm", nil)

	require.NoError(t, err)
	offers, ok := reply.Output[flows.OutputSuggestions].([]flows.SlotOffer)
	require.True(t, ok)
	require.Len(t, offers, 2)
	assert.Contains(t, reply.Response, "already taken")
	assert.Nil(t, reply.Output[flows.OutputReservation])

	parts, err := f.tokens.Open(offers[1].Token, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "2025-03-10", "16:00", "17:00"}, parts)

	f.reservations.createErr = nil
	reply, err = f.svc.Chat(context.Background(), testToken, "book this one", map[string]any{
		concierge.InputSlotToken: offers[1].Token,
	})

	require.NoError(t, err)
	assert.Equal(t, flows.FlowReserveSlot, reply.Flow)
	last := f.reservations.created[len(f.reservations.created)-1]
	assert.Equal(t, "v1", last.VenueID)
	assert.Equal(t, "2025-03-10", last.Date)
	assert.Equal(t, "16:00", last.StartTime)
	assert.Equal(t, "17:00", last.EndTime)
}

func TestExecute_ReserveSlotRejectsTamperedToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Execute(context.Background(), testToken, flows.FlowReserveSlot, map[string]any{
		concierge.InputSlotToken: "not-a-real-token",
	})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
	assert.Empty(t, f.reservations.created)
}

func TestChat_AvailabilityAcrossVenues(t *testing.T) {
	f := newFixture(t)
	f.reservations.slots["v1"] = []model.SlotAvailability{
		{Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00", Free: true},
		{Date: "2025-03-10", StartTime: "10:00", EndTime: "11:00", Free: false, BlockingID: "r9"},
	}
	f.reservations.slots["v2"] = []model.SlotAvailability{
		{Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00", Free: true},
	}

	reply, err := f.svc.Chat(context.Background(), testToken, "Is anything free tomorrow?", nil)

	require.NoError(t, err)
	assert.Equal(t, "availability", reply.Intent)
	results, ok := reply.Output[flows.OutputSlots].([]flows.VenueSlots)
	require.True(t, ok)
	require.Len(t, results, 2)
	assert.Equal(t, "Conference Room A", results[0].Venue.Name)
	assert.Equal(t, "Main Hall", results[1].Venue.Name)
	require.Len(t, results[1].Slots, 1, "busy slots are not offered")

	parts, err := f.tokens.Open(results[1].Slots[0].Token, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "2025-03-10", "09:00", "10:00"}, parts)
}

func TestChat_AvailabilityForNamedVenueDefaultsToToday(t *testing.T) {
	f := newFixture(t)
	f.reservations.slots["v2"] = []model.SlotAvailability{
		{Date: "2025-03-09", StartTime: "09:00", EndTime: "10:00", Free: false},
	}

	reply, err := f.svc.Chat(context.Background(), testToken, "Is Conference Room A available?", nil)

	require.NoError(t, err)
	results := reply.Output[flows.OutputSlots].([]flows.VenueSlots)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Slots)
	assert.Contains(t, reply.Response, "fully booked on 2025-03-09")
}

func TestChat_VenuesSorted(t *testing.T) {
	f := newFixture(t)

	reply, err := f.svc.Chat(context.Background(), testToken, "show me the venues", nil)

	require.NoError(t, err)
	venues := reply.Output[flows.OutputVenues].([]*model.Venue)
	names := []string{}
	for _, v := range venues {
		names = append(names, v.Name)
	}
	assert.True(t, sort.StringsAreSorted(names))
	assert.NotContains(t, names, "Old Annex")
}

func TestChat_CancelNamedReservation(t *testing.T) {
	f := newFixture(t)

	reply, err := f.svc.Chat(context.Background(), testToken, "cancel it please", map[string]any{
		concierge.InputReservation: "res-7",
	})

	require.NoError(t, err)
	assert.Equal(t, "my_bookings", reply.Intent)
	assert.Equal(t, []string{"res-7"}, f.reservations.cancelled)
	assert.Contains(t, reply.Response, "cancelled")
}

func TestExecute_MyBookings(t *testing.T) {
	f := newFixture(t)

	reply, err := f.svc.Execute(context.Background(), testToken, flows.FlowMyBookings, nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "don't have any bookings")

	f.reservations.mine = []*model.Reservation{{ID: "res-1"}}
	reply, err = f.svc.Execute(context.Background(), testToken, flows.FlowMyBookings, nil)
	require.NoError(t, err)
	assert.Len(t, reply.Output[flows.OutputReservations], 1)
	assert.Empty(t, f.reservations.cancelled)
}

func TestExecute_VerifyCode(t *testing.T) {
	f := newFixture(t)

	reply, err := f.svc.Execute(context.Background(), testToken, flows.FlowVerifyCode, map[string]any{
		concierge.InputReservation: "res-1",
		concierge.InputCode:        "482193",
	})
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "confirmed")

	_, err = f.svc.Execute(context.Background(), testToken, flows.FlowVerifyCode, map[string]any{
		concierge.InputReservation: "res-1",
		concierge.InputCode:        "000000",
	})
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeCodeInvalid, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestChat_DownstreamErrorKeepsStatus(t *testing.T) {
	f := newFixture(t)
	f.reservations.mineErr = &client.APIError{Status: http.StatusUnauthorized, Code: apperrors.CodeUnauthorized, Message: "invalid bearer token"}

	_, err := f.svc.Execute(context.Background(), testToken, flows.FlowMyBookings, nil)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
}

func TestChat_UnexpectedErrorIsInternal(t *testing.T) {
	f := newFixture(t)
	f.reservations.mineErr = errors.New("connection refused")

	_, err := f.svc.Execute(context.Background(), testToken, flows.FlowMyBookings, nil)

	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestChat_HelpAndGeneral(t *testing.T) {
	f := newFixture(t)

	reply, err := f.svc.Chat(context.Background(), testToken, "help", nil)
	require.NoError(t, err)
	assert.Equal(t, "help", reply.Intent)
	assert.Contains(t, reply.Response, "booking assistant")

	reply, err = f.svc.Chat(context.Background(), testToken, "hello, tomorrow at 9am", nil)
	require.NoError(t, err)
	assert.Equal(t, "general", reply.Intent)
	assert.Equal(t, map[string]string{
		concierge.InputDate:      "2025-03-10",
		concierge.InputStartTime: "09:00",
		concierge.InputEndTime:   "10:00",
	}, reply.Output[flows.OutputDetails])
}

func TestChat_EmptyMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Chat(context.Background(), testToken, "   ", nil)

	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestExecute_UnknownFlow(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Execute(context.Background(), testToken, "launch_rockets", nil)

	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.Contains(t, f.svc.Flows(), flows.FlowReserveSlot)
}
