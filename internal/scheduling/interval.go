// Package scheduling holds the storage-free parts of the booking engine:
// interval overlap, conflict detection, the daily slot grid and
// alternate-slot suggestions. Nothing here performs I/O.
package scheduling

import (
	"errors"
	"fmt"
	"time"
	"venuebook/pkg/model"
)

var (
	ErrInvalidClock    = errors.New("time of day must be HH:MM")
	ErrInvalidInterval = errors.New("start time must be before end time")
)

// Clock is a time of day in minutes after midnight.
type Clock int

func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(model.TimeLayout, s)
	if err != nil || len(s) != len(model.TimeLayout) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Interval is the half-open range [Start, End).
type Interval struct {
	Start Clock
	End   Clock
}

func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	iv := Interval{Start: s, End: e}
	if !iv.Valid() {
		return Interval{}, fmt.Errorf("%w: %s-%s", ErrInvalidInterval, start, end)
	}
	return iv, nil
}

func (i Interval) Valid() bool {
	return i.Start < i.End
}

// Overlaps reports whether two half-open intervals share any instant.
// Back-to-back intervals do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && i.End > o.Start
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}
