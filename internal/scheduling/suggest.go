package scheduling

import (
	"time"
	"venuebook/pkg/model"
)

type SuggestionKind string

const (
	SameTimeDifferentDay SuggestionKind = "same time, different day"
	DifferentTimeSameDay SuggestionKind = "different time, same day"
)

const DefaultLookaheadDays = 7

type Suggestion struct {
	Date string
	Slot Interval
	Kind SuggestionKind
}

type Suggester struct {
	Grid          Grid
	LookaheadDays int
}

// Window returns the inclusive date range Suggest reads from.
func (s Suggester) Window(date time.Time) (time.Time, time.Time) {
	return date, date.AddDate(0, 0, s.LookaheadDays)
}

// Suggest lists free alternatives to slot on date: the same interval on each
// following day of the lookahead, then the other free grid slots of the same
// day. byDate must hold the venue's reservations keyed by model.DateLayout
// for every date in Window(date).
func (s Suggester) Suggest(venueID string, date time.Time, slot Interval, byDate map[string][]*model.Reservation) []Suggestion {
	var out []Suggestion

	for i := 1; i <= s.LookaheadDays; i++ {
		day := date.AddDate(0, 0, i).Format(model.DateLayout)
		if FindConflict(venueID, day, slot, byDate[day]) == nil {
			out = append(out, Suggestion{Date: day, Slot: slot, Kind: SameTimeDifferentDay})
		}
	}

	day := date.Format(model.DateLayout)
	for state := range s.Grid.Availability(venueID, day, byDate[day]) {
		if state.Slot.Start == slot.Start || !state.Free() {
			continue
		}
		out = append(out, Suggestion{Date: day, Slot: state.Slot, Kind: DifferentTimeSameDay})
	}

	return out
}
