package scheduling

import (
	"fmt"
	"venuebook/pkg/model"
)

type ConflictType string

const (
	OverlapWithConfirmed   ConflictType = "overlap with confirmed"
	OverlapWithProvisional ConflictType = "overlap with provisional"
)

// Conflict describes the reservation that blocks a requested interval.
type Conflict struct {
	Reservation *model.Reservation
	Status      string
	Type        ConflictType
}

func (c *Conflict) Reason() string {
	return fmt.Sprintf("Time slot conflicts with existing %s booking", c.Status)
}

// FindConflict returns the first active reservation on venueID/date whose
// interval overlaps slot, in the order the reservations were given.
// Cancelled and rejected reservations never block.
func FindConflict(venueID, date string, slot Interval, existing []*model.Reservation) *Conflict {
	for _, r := range existing {
		if r == nil || !r.IsActive() {
			continue
		}
		if r.VenueID != venueID || r.Date != date {
			continue
		}
		other, err := ParseInterval(r.StartTime, r.EndTime)
		if err != nil {
			continue
		}
		if slot.Overlaps(other) {
			return &Conflict{
				Reservation: r,
				Status:      r.Status,
				Type:        conflictTypeFor(r.Status),
			}
		}
	}
	return nil
}

func conflictTypeFor(status string) ConflictType {
	if status == model.StatusConfirmed {
		return OverlapWithConfirmed
	}
	return OverlapWithProvisional
}
