package flows

import (
	"strings"
	concierge "venuebook/internal/concierge/core"
)

const FlowMyBookings = "my_bookings"

func MyBookings() *concierge.Flow {
	return concierge.NewFlow(FlowMyBookings,
		concierge.NewStep("cancel_requested", cancelRequested),
		concierge.NewStep("list_mine", listMine),
	)
}

// cancelRequested cancels when the user names a reservation and asks to
// cancel it. Otherwise the flow falls through to the listing.
func cancelRequested(ctx *concierge.ConciergeContext) error {
	id := ctx.ExtractString(concierge.InputReservation)
	if concierge.IsMissing(id) || !strings.Contains(strings.ToLower(ctx.Message), "cancel") {
		return nil
	}
	r, err := ctx.Reservations.Cancel(ctx.Ctx, ctx.Token, id)
	if err != nil {
		return err
	}
	ctx.Output[OutputReservation] = r
	ctx.Reply("Your booking on " + r.Date + " from " + r.StartTime + " to " + r.EndTime + " has been cancelled.")
	return concierge.ErrStop
}

func listMine(ctx *concierge.ConciergeContext) error {
	mine, err := ctx.Reservations.Mine(ctx.Ctx, ctx.Token)
	if err != nil {
		return err
	}
	if len(mine) == 0 {
		ctx.Reply("You don't have any bookings yet. Would you like to make one?")
		return nil
	}
	ctx.Output[OutputReservations] = mine
	ctx.Reply("Here are your recent bookings:")
	return nil
}
