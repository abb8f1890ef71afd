package scheduling

import (
	"errors"
	"fmt"
	"iter"
	"time"
	"venuebook/pkg/model"
)

var ErrInvalidGrid = errors.New("invalid operating grid")

// Grid is the fixed daily operating window split into equal slots.
type Grid struct {
	Open       Clock
	Close      Clock
	SlotLength time.Duration
}

func NewGrid(open, close string, slotLength time.Duration) (Grid, error) {
	o, err := ParseClock(open)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: opening time: %v", ErrInvalidGrid, err)
	}
	c, err := ParseClock(close)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: closing time: %v", ErrInvalidGrid, err)
	}
	g := Grid{Open: o, Close: c, SlotLength: slotLength}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

func (g Grid) Validate() error {
	if g.Open >= g.Close {
		return fmt.Errorf("%w: opening %s must be before closing %s", ErrInvalidGrid, g.Open, g.Close)
	}
	step := g.step()
	if step <= 0 || g.SlotLength%time.Minute != 0 {
		return fmt.Errorf("%w: slot length must be a positive whole number of minutes, got %s", ErrInvalidGrid, g.SlotLength)
	}
	if int(g.Close-g.Open)%step != 0 {
		return fmt.Errorf("%w: slot length %s does not divide %s-%s", ErrInvalidGrid, g.SlotLength, g.Open, g.Close)
	}
	return nil
}

func (g Grid) step() int {
	return int(g.SlotLength / time.Minute)
}

// Len is the number of slots per day. It is the day-full threshold.
func (g Grid) Len() int {
	step := g.step()
	if step <= 0 {
		return 0
	}
	return int(g.Close-g.Open) / step
}

// Slots yields the grid slots in order. Each call starts a fresh pass.
func (g Grid) Slots() iter.Seq[Interval] {
	return func(yield func(Interval) bool) {
		step := Clock(g.step())
		if step <= 0 {
			return
		}
		for start := g.Open; start+step <= g.Close; start += step {
			if !yield(Interval{Start: start, End: start + step}) {
				return
			}
		}
	}
}

type SlotState struct {
	Slot     Interval
	Conflict *Conflict
}

func (s SlotState) Free() bool {
	return s.Conflict == nil
}

// Availability marks every grid slot of venueID/date as free or occupied.
func (g Grid) Availability(venueID, date string, existing []*model.Reservation) iter.Seq[SlotState] {
	return func(yield func(SlotState) bool) {
		for slot := range g.Slots() {
			state := SlotState{Slot: slot, Conflict: FindConflict(venueID, date, slot, existing)}
			if !yield(state) {
				return
			}
		}
	}
}

type DayStatus struct {
	Date       string
	FreeSlots  int
	TotalSlots int
}

// Available is true while at least one slot is free.
func (d DayStatus) Available() bool {
	return d.FreeSlots > 0
}

func (g Grid) Day(venueID, date string, existing []*model.Reservation) DayStatus {
	status := DayStatus{Date: date, TotalSlots: g.Len()}
	for state := range g.Availability(venueID, date, existing) {
		if state.Free() {
			status.FreeSlots++
		}
	}
	return status
}
