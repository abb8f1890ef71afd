package flows

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	concierge "venuebook/internal/concierge/core"
	"venuebook/pkg/client"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/model"
)

const (
	VENUE    = "venue"
	VENUES   = "venues"
	RECEIPT  = "receipt"
	CONFLICT = "conflict"

	OutputVenues       = "available_venues"
	OutputSlots        = "slots"
	OutputSuggestions  = "suggestions"
	OutputReservation  = "reservation"
	OutputReservations = "bookings"
	OutputDetails      = "details"

	MaxVenuesPerAvailability  = 5
	MaxConcurrentServiceCalls = 8
)

// SlotOffer is a bookable slot handed to the user together with the token
// that books it through the reserve_slot flow.
type SlotOffer struct {
	VenueID   string `json:"venue_id"`
	VenueName string `json:"venue_name,omitempty"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Kind      string `json:"kind,omitempty"`
	Token     string `json:"slot_token"`
}

type VenueSlots struct {
	Venue *model.Venue `json:"venue"`
	Slots []SlotOffer  `json:"slots"`
}

// identifyVenue finds the venue the user means: an explicit id, then an
// explicit name, then any active venue named in the message. It returns the
// active venue list when nothing matched so callers can offer it.
func identifyVenue(ctx *concierge.ConciergeContext) (*model.Venue, []*model.Venue, error) {
	if id := ctx.ExtractString(concierge.InputVenueID); !concierge.IsMissing(id) {
		venue, err := ctx.Venues.GetByID(ctx.Ctx, ctx.Token, id)
		return venue, nil, err
	}

	if name := ctx.ExtractString(concierge.InputVenue); !concierge.IsMissing(name) {
		found, err := ctx.Venues.SearchByName(ctx.Ctx, ctx.Token, name)
		if err != nil {
			return nil, nil, err
		}
		if venue := firstActive(found); venue != nil {
			return venue, nil, nil
		}
	}

	active, err := ctx.Venues.ListActive(ctx.Ctx, ctx.Token)
	if err != nil {
		return nil, nil, err
	}
	return mentionedVenue(ctx.Message, active), active, nil
}

func firstActive(venues []*model.Venue) *model.Venue {
	for _, v := range venues {
		if v.Active {
			return v
		}
	}
	return nil
}

// mentionedVenue prefers the longest name so "Main Hall B" beats "Main Hall".
func mentionedVenue(message string, venues []*model.Venue) *model.Venue {
	lower := strings.ToLower(message)
	var best *model.Venue
	for _, v := range venues {
		name := strings.ToLower(v.Name)
		if name == "" || !strings.Contains(lower, name) {
			continue
		}
		if best == nil || len(name) > len(best.Name) {
			best = v
		}
	}
	return best
}

func ResolveVenue(ctx *concierge.ConciergeContext) error {
	venue, active, err := identifyVenue(ctx)
	if err != nil {
		return err
	}
	if venue == nil {
		ctx.Output[OutputVenues] = active
		return concierge.MissingParamErr(concierge.InputVenue)
	}
	ctx.Process[VENUE] = venue
	return nil
}

func RequireInterval(ctx *concierge.ConciergeContext) error {
	for _, key := range []string{concierge.InputDate, concierge.InputStartTime, concierge.InputEndTime} {
		if _, err := ctx.RequireString(key); err != nil {
			return err
		}
	}
	return nil
}

func OpenSlotToken(ctx *concierge.ConciergeContext) error {
	token, err := ctx.RequireString(concierge.InputSlotToken)
	if err != nil {
		return err
	}
	parts, err := ctx.SlotTokens.Open(token, 4)
	if err != nil {
		return apperrors.InvalidInput("The slot token is invalid or has been tampered with")
	}
	ctx.Input[concierge.InputVenueID] = parts[0]
	ctx.Input[concierge.InputDate] = parts[1]
	ctx.Input[concierge.InputStartTime] = parts[2]
	ctx.Input[concierge.InputEndTime] = parts[3]
	return nil
}

func CreateReservation(ctx *concierge.ConciergeContext) error {
	venue := ctx.Process[VENUE].(*model.Venue)
	req := &model.ReservationRequest{
		VenueID:     venue.ID,
		Date:        ctx.ExtractString(concierge.InputDate),
		StartTime:   ctx.ExtractString(concierge.InputStartTime),
		EndTime:     ctx.ExtractString(concierge.InputEndTime),
		Title:       ctx.ExtractString(concierge.InputTitle),
		Purpose:     ctx.ExtractString(concierge.InputPurpose),
		Description: ctx.Message,
	}
	if n, ok := ctx.ExtractInt(concierge.InputAttendees); ok {
		req.ExpectedAttendees = n
	}

	receipt, err := ctx.Reservations.Create(ctx.Ctx, ctx.Token, req)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Code == apperrors.CodeConflict {
			ctx.Process[CONFLICT] = apiErr
			return nil
		}
		return err
	}
	ctx.Process[RECEIPT] = receipt
	return nil
}

// SuggestAlternates answers a conflicting request with sealed alternatives
// and ends the flow.
func SuggestAlternates(ctx *concierge.ConciergeContext) error {
	conflict, ok := ctx.Process[CONFLICT].(*client.APIError)
	if !ok {
		return nil
	}
	venue := ctx.Process[VENUE].(*model.Venue)
	date := ctx.ExtractString(concierge.InputDate)

	suggestions, err := ctx.Reservations.Suggestions(ctx.Ctx, ctx.Token, venue.ID, date,
		ctx.ExtractString(concierge.InputStartTime), ctx.ExtractString(concierge.InputEndTime))
	if err != nil {
		return err
	}

	offers := make([]SlotOffer, 0, len(suggestions))
	for _, s := range suggestions {
		offer, err := sealOffer(ctx, venue, s.Date, s.StartTime, s.EndTime)
		if err != nil {
			return err
		}
		offer.Kind = s.Kind
		offers = append(offers, offer)
	}

	ctx.Output[OutputSuggestions] = offers
	ctx.Output[CONFLICT] = conflict.Details
	if len(offers) == 0 {
		ctx.Reply("That time is already taken at " + venue.Name + " and I could not find a nearby alternative.")
	} else {
		ctx.Reply("That time is already taken at " + venue.Name + ". Here are some alternatives you can book instead:")
	}
	return concierge.ErrStop
}

func SummarizeReceipt(ctx *concierge.ConciergeContext) error {
	receipt := ctx.Process[RECEIPT].(*model.ReservationReceipt)
	venue := ctx.Process[VENUE].(*model.Venue)
	r := receipt.Reservation
	ctx.Output[OutputReservation] = r
	ctx.Reply(fmt.Sprintf("Your booking for %s on %s from %s to %s is provisional. "+
		"Check your email for the 6-digit verification code, it expires at %s.",
		venue.Name, r.Date, r.StartTime, r.EndTime, receipt.CodeExpiresAt.Format(model.TimeLayout)))
	return nil
}

func sealOffer(ctx *concierge.ConciergeContext, venue *model.Venue, date, start, end string) (SlotOffer, error) {
	token, err := ctx.SlotTokens.Seal(venue.ID, date, start, end)
	if err != nil {
		return SlotOffer{}, err
	}
	return SlotOffer{
		VenueID:   venue.ID,
		VenueName: venue.Name,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Token:     token,
	}, nil
}

func sortedByName(venues []*model.Venue) []*model.Venue {
	sorted := slices.Clone(venues)
	slices.SortFunc(sorted, func(a, b *model.Venue) int { return strings.Compare(a.Name, b.Name) })
	return sorted
}
