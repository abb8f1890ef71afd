package core

import (
	"context"
	"venuebook/pkg/model"
	"venuebook/pkg/sealer"
)

// Reservations is the slice of the reservations API the concierge drives.
type Reservations interface {
	Create(ctx context.Context, token string, req *model.ReservationRequest) (*model.ReservationReceipt, error)
	Verify(ctx context.Context, token, id, code string) (*model.Reservation, error)
	Cancel(ctx context.Context, token, id string) (*model.Reservation, error)
	Mine(ctx context.Context, token string) ([]*model.Reservation, error)
	Slots(ctx context.Context, token, venueID, date string) ([]model.SlotAvailability, error)
	Suggestions(ctx context.Context, token, venueID, date, start, end string) ([]model.Suggestion, error)
}

type Venues interface {
	GetByID(ctx context.Context, token, id string) (*model.Venue, error)
	ListActive(ctx context.Context, token string) ([]*model.Venue, error)
	SearchByName(ctx context.Context, token, name string) ([]*model.Venue, error)
}

type Backends struct {
	Reservations Reservations
	Venues       Venues
	SlotTokens   *sealer.Sealer
}

// ConciergeContext carries one conversation turn through a flow. Input holds
// what the caller sent, Process holds intermediate step results and Output
// is returned to the caller.
type ConciergeContext struct {
	Ctx     context.Context
	Token   string
	Message string
	Today   string
	Input   map[string]any
	Process map[string]any
	Output  map[string]any
	*Backends
}

func NewConciergeContext(ctx context.Context, token, today string, input map[string]any, backends *Backends) *ConciergeContext {
	if input == nil {
		input = make(map[string]any)
	}
	return &ConciergeContext{
		Ctx:      ctx,
		Token:    token,
		Today:    today,
		Input:    input,
		Process:  make(map[string]any),
		Output:   make(map[string]any),
		Backends: backends,
	}
}

// Reply sets the human readable answer of the turn.
func (c *ConciergeContext) Reply(message string) {
	c.Output[OutputResponse] = message
}
