package service

import (
	"context"
	"time"
	"venuebook/internal/scheduling"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/model"
)

func (s *reservationService) AvailableSlots(ctx context.Context, venueID, date string) ([]model.SlotAvailability, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	if _, err := s.lookupVenue(ctx, venueID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByVenueAndDate(ctx, venueID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to load reservations for availability", "venue_id", venueID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to compute availability", err)
	}

	slots := make([]model.SlotAvailability, 0, s.grid.Len())
	for state := range s.grid.Availability(venueID, date, existing) {
		slot := model.SlotAvailability{
			Date:      date,
			StartTime: state.Slot.Start.String(),
			EndTime:   state.Slot.End.String(),
			Free:      state.Free(),
		}
		if c := state.Conflict; c != nil {
			slot.BlockingID = c.Reservation.ID
			slot.ConflictType = string(c.Type)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// DayAvailability rolls the slot grid up per day of the given month.
func (s *reservationService) DayAvailability(ctx context.Context, venueID string, year int, month time.Month) ([]model.DayAvailability, error) {
	if month < time.January || month > time.December {
		return nil, apperrors.InvalidInput("Month must be between 1 and 12")
	}
	if _, err := s.lookupVenue(ctx, venueID); err != nil {
		return nil, err
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	byDate, err := s.reservationsByDate(ctx, venueID, first, last)
	if err != nil {
		return nil, err
	}

	days := make([]model.DayAvailability, 0, last.Day())
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := d.Format(model.DateLayout)
		status := s.grid.Day(venueID, date, byDate[date])
		days = append(days, model.DayAvailability{
			Date:       date,
			Available:  status.Available(),
			FreeSlots:  status.FreeSlots,
			TotalSlots: status.TotalSlots,
		})
	}
	return days, nil
}

func (s *reservationService) SuggestAlternates(ctx context.Context, venueID, date, start, end string) ([]model.Suggestion, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	slot, err := scheduling.ParseInterval(start, end)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if _, err := s.lookupVenue(ctx, venueID); err != nil {
		return nil, err
	}

	from, to := s.suggester.Window(day)
	byDate, err := s.reservationsByDate(ctx, venueID, from, to)
	if err != nil {
		return nil, err
	}

	found := s.suggester.Suggest(venueID, day, slot, byDate)
	suggestions := make([]model.Suggestion, 0, len(found))
	for _, sg := range found {
		suggestions = append(suggestions, model.Suggestion{
			Date:      sg.Date,
			StartTime: sg.Slot.Start.String(),
			EndTime:   sg.Slot.End.String(),
			Kind:      string(sg.Kind),
		})
	}
	return suggestions, nil
}

func (s *reservationService) reservationsByDate(ctx context.Context, venueID string, from, to time.Time) (map[string][]*model.Reservation, error) {
	fromDate, toDate := from.Format(model.DateLayout), to.Format(model.DateLayout)
	reservations, err := s.repo.FindByVenueAndDateRange(ctx, venueID, fromDate, toDate)
	if err != nil {
		s.cfg.Log.Error("Failed to load reservations", "venue_id", venueID, "from", fromDate, "to", toDate, "error", err)
		return nil, apperrors.Internal("Failed to compute availability", err)
	}

	byDate := make(map[string][]*model.Reservation)
	for _, r := range reservations {
		byDate[r.Date] = append(byDate[r.Date], r)
	}
	return byDate, nil
}
