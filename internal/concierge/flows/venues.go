package flows

import concierge "venuebook/internal/concierge/core"

const FlowVenues = "venues"

func Venues() *concierge.Flow {
	return concierge.NewFlow(FlowVenues,
		concierge.NewStep("list_venues", func(ctx *concierge.ConciergeContext) error {
			if name := ctx.ExtractString(concierge.InputVenue); !concierge.IsMissing(name) {
				found, err := ctx.Venues.SearchByName(ctx.Ctx, ctx.Token, name)
				if err != nil {
					return err
				}
				ctx.Output[OutputVenues] = found
				if len(found) == 0 {
					ctx.Reply("I couldn't find a venue matching \"" + name + "\".")
					return nil
				}
				ctx.Reply("Here are the venues matching \"" + name + "\":")
				return nil
			}

			active, err := ctx.Venues.ListActive(ctx.Ctx, ctx.Token)
			if err != nil {
				return err
			}
			ctx.Output[OutputVenues] = sortedByName(active)
			ctx.Reply("Here are our available venues:")
			return nil
		}),
	)
}
