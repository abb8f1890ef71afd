package flows

import concierge "venuebook/internal/concierge/core"

const (
	FlowHelp    = "help"
	FlowGeneral = "general"
)

const helpMessage = "I'm your booking assistant! Here's what I can help you with:\n\n" +
	"Make bookings: \"Book the Main Hall tomorrow at 14:00\"\n" +
	"Check availability: \"Is Conference Room A free on 2025-03-14?\"\n" +
	"Browse venues: \"Show me all venues\"\n" +
	"View your bookings: \"Show me my bookings\"\n" +
	"Cancel bookings: \"Cancel my booking\" with the reservation id\n\n" +
	"Just tell me what you need and I'll help you out!"

func Help() *concierge.Flow {
	return concierge.NewFlow(FlowHelp,
		concierge.NewStep("reply_help", func(ctx *concierge.ConciergeContext) error {
			ctx.Reply(helpMessage)
			return nil
		}),
	)
}

// General echoes back what could be understood so the caller can follow up
// with a booking.
func General() *concierge.Flow {
	return concierge.NewFlow(FlowGeneral,
		concierge.NewStep("collect_details", func(ctx *concierge.ConciergeContext) error {
			details := map[string]string{}
			for _, key := range []string{concierge.InputDate, concierge.InputStartTime, concierge.InputEndTime} {
				if v := ctx.ExtractString(key); !concierge.IsMissing(v) {
					details[key] = v
				}
			}
			if len(details) > 0 {
				ctx.Output[OutputDetails] = details
			}
			ctx.Reply("I'm not sure what you'd like to do. Ask me to book a venue, check availability, " +
				"list venues or show your bookings, or type \"help\".")
			return nil
		}),
	)
}

// All returns every flow the concierge can run.
func All() []*concierge.Flow {
	return []*concierge.Flow{
		Booking(),
		ReserveSlot(),
		VerifyCode(),
		Availability(),
		Venues(),
		MyBookings(),
		Help(),
		General(),
	}
}
