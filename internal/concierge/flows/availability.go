package flows

import (
	"fmt"
	concierge "venuebook/internal/concierge/core"
	"venuebook/pkg/model"

	"golang.org/x/sync/errgroup"
)

const FlowAvailability = "availability"

func Availability() *concierge.Flow {
	return concierge.NewFlow(FlowAvailability,
		concierge.NewStep("resolve_venues", resolveVenues),
		concierge.NewStep("load_free_slots", loadFreeSlots),
		concierge.NewStep("summarize_availability", summarizeAvailability),
	)
}

// resolveVenues narrows to the venue the user named, or falls back to the
// first active venues.
func resolveVenues(ctx *concierge.ConciergeContext) error {
	venue, active, err := identifyVenue(ctx)
	if err != nil {
		return err
	}
	if venue != nil {
		ctx.Process[VENUES] = []*model.Venue{venue}
		return nil
	}
	active = sortedByName(active)
	if len(active) > MaxVenuesPerAvailability {
		active = active[:MaxVenuesPerAvailability]
	}
	ctx.Process[VENUES] = active
	return nil
}

func loadFreeSlots(ctx *concierge.ConciergeContext) error {
	venues := ctx.Process[VENUES].([]*model.Venue)
	date := ctx.ExtractString(concierge.InputDate)
	if concierge.IsMissing(date) {
		date = ctx.Today
		ctx.Input[concierge.InputDate] = date
	}

	results := make([]VenueSlots, len(venues))
	g, gctx := errgroup.WithContext(ctx.Ctx)
	g.SetLimit(MaxConcurrentServiceCalls)
	for i, venue := range venues {
		g.Go(func() error {
			slots, err := ctx.Reservations.Slots(gctx, ctx.Token, venue.ID, date)
			if err != nil {
				return fmt.Errorf("load slots for venue %s: %w", venue.ID, err)
			}
			offers := []SlotOffer{}
			for _, s := range slots {
				if !s.Free {
					continue
				}
				offer, err := sealOffer(ctx, venue, s.Date, s.StartTime, s.EndTime)
				if err != nil {
					return err
				}
				offers = append(offers, offer)
			}
			results[i] = VenueSlots{Venue: venue, Slots: offers}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ctx.Output[OutputSlots] = results
	return nil
}

func summarizeAvailability(ctx *concierge.ConciergeContext) error {
	results := ctx.Output[OutputSlots].([]VenueSlots)
	date := ctx.ExtractString(concierge.InputDate)

	switch {
	case len(results) == 0:
		ctx.Reply("There are no active venues at the moment.")
	case len(results) == 1 && len(results[0].Slots) == 0:
		ctx.Reply(fmt.Sprintf("%s is fully booked on %s.", results[0].Venue.Name, date))
	case len(results) == 1:
		ctx.Reply(fmt.Sprintf("Here's the availability for %s on %s:", results[0].Venue.Name, date))
	default:
		ctx.Reply(fmt.Sprintf("Here's the availability on %s:", date))
	}
	return nil
}
