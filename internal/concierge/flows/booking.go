package flows

import concierge "venuebook/internal/concierge/core"

const (
	FlowBooking     = "booking"
	FlowReserveSlot = "reserve_slot"
	FlowVerifyCode  = "verify_code"
)

// Booking books the venue and interval described in the conversation.
func Booking() *concierge.Flow {
	return concierge.NewFlow(FlowBooking,
		concierge.NewStep("resolve_venue", ResolveVenue),
		concierge.NewStep("require_interval", RequireInterval),
		concierge.NewStep("create_reservation", CreateReservation),
		concierge.NewStep("suggest_alternates", SuggestAlternates),
		concierge.NewStep("summarize_receipt", SummarizeReceipt),
	)
}

// ReserveSlot books a slot previously offered as a sealed token.
func ReserveSlot() *concierge.Flow {
	return concierge.NewFlow(FlowReserveSlot,
		concierge.NewStep("open_slot_token", OpenSlotToken),
		concierge.NewStep("resolve_venue", ResolveVenue),
		concierge.NewStep("create_reservation", CreateReservation),
		concierge.NewStep("suggest_alternates", SuggestAlternates),
		concierge.NewStep("summarize_receipt", SummarizeReceipt),
	)
}

func VerifyCode() *concierge.Flow {
	return concierge.NewFlow(FlowVerifyCode,
		concierge.NewStep("verify_code", func(ctx *concierge.ConciergeContext) error {
			id, err := ctx.RequireString(concierge.InputReservation)
			if err != nil {
				return err
			}
			code, err := ctx.RequireString(concierge.InputCode)
			if err != nil {
				return err
			}
			r, err := ctx.Reservations.Verify(ctx.Ctx, ctx.Token, id, code)
			if err != nil {
				return err
			}
			ctx.Output[OutputReservation] = r
			ctx.Reply("Your booking on " + r.Date + " from " + r.StartTime + " to " + r.EndTime + " is confirmed.")
			return nil
		}),
	)
}
