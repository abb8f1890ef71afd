package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	concierge "venuebook/internal/concierge/core"
	"venuebook/internal/concierge/flows"
	"venuebook/pkg/client"
	"venuebook/pkg/config"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/model"
)

type Reply struct {
	Intent   string         `json:"intent,omitempty"`
	Flow     string         `json:"flow"`
	Response string         `json:"response"`
	Missing  string         `json:"missing,omitempty"`
	Output   map[string]any `json:"output,omitempty"`
}

type ConciergeService interface {
	Chat(ctx context.Context, token, message string, input map[string]any) (*Reply, error)
	Execute(ctx context.Context, token, flow string, input map[string]any) (*Reply, error)
	Flows() []string
}

type conciergeService struct {
	engine   *concierge.Engine
	backends *concierge.Backends
	cfg      *config.Config
	now      func() time.Time
}

type Option func(*conciergeService)

func WithClock(now func() time.Time) Option {
	return func(s *conciergeService) { s.now = now }
}

func NewConciergeService(backends *concierge.Backends, cfg *config.Config, opts ...Option) ConciergeService {
	s := &conciergeService{
		engine:   concierge.NewEngine(flows.All()...),
		backends: backends,
		cfg:      cfg,
		now:      cfg.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var prompts = map[string]string{
	concierge.InputVenue:       "Which venue would you like? Here are the ones available.",
	concierge.InputDate:        "Which date? Please use YYYY-MM-DD, or say today or tomorrow.",
	concierge.InputStartTime:   "What time should it start? For example 14:00 or 2 pm.",
	concierge.InputEndTime:     "What time should it end?",
	concierge.InputSlotToken:   "Which slot? Pick one of the offered slots.",
	concierge.InputReservation: "Which booking? Please give the reservation id.",
	concierge.InputCode:        "Please enter the 6-digit code from your email.",
}

func (s *conciergeService) Chat(ctx context.Context, token, message string, input map[string]any) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.Validation("Message is required", map[string]any{"message": "is required"})
	}

	intent := concierge.Classify(message)
	flow := string(intent)
	if intent == concierge.IntentBooking && input[concierge.InputSlotToken] != nil {
		flow = flows.FlowReserveSlot
	}

	cc := s.newContext(ctx, token, input)
	cc.Message = message

	entities := concierge.ExtractEntities(message, s.now(), s.cfg.SlotLength)
	cc.SetDefault(concierge.InputDate, entities.Date)
	cc.SetDefault(concierge.InputStartTime, entities.StartTime)
	cc.SetDefault(concierge.InputEndTime, entities.EndTime)

	reply, err := s.run(flow, cc)
	if err != nil {
		return nil, err
	}
	reply.Intent = string(intent)
	s.cfg.Log.Info("Concierge turn handled", "intent", intent, "flow", flow, "missing", reply.Missing)
	return reply, nil
}

func (s *conciergeService) Execute(ctx context.Context, token, flow string, input map[string]any) (*Reply, error) {
	if !s.engine.Has(flow) {
		return nil, apperrors.NotFoundWithID("Flow", flow)
	}
	cc := s.newContext(ctx, token, input)
	cc.Message = cc.ExtractString(concierge.InputMessage)
	return s.run(flow, cc)
}

func (s *conciergeService) Flows() []string {
	return s.engine.Flows()
}

func (s *conciergeService) newContext(ctx context.Context, token string, input map[string]any) *concierge.ConciergeContext {
	return concierge.NewConciergeContext(ctx, token, s.now().Format(model.DateLayout), input, s.backends)
}

func (s *conciergeService) run(flow string, cc *concierge.ConciergeContext) (*Reply, error) {
	err := s.engine.Run(flow, cc)

	var missing *concierge.MissingParamError
	if errors.As(err, &missing) {
		prompt, ok := prompts[missing.Param]
		if !ok {
			prompt = "I need a bit more information: " + missing.Param + "."
		}
		cc.Reply(prompt)
		err = nil
	}
	if err != nil {
		s.cfg.Log.Warn("Concierge flow failed", "flow", flow, "error", err)
		return nil, mapError(err)
	}

	reply := &Reply{Flow: flow, Output: cc.Output}
	if missing != nil {
		reply.Missing = missing.Param
	}
	if msg, ok := cc.Output[concierge.OutputResponse].(string); ok {
		reply.Response = msg
		delete(cc.Output, concierge.OutputResponse)
	}
	return reply, nil
}

// mapError keeps the downstream service's answer intact so the caller sees
// the same code it would have seen calling the service directly.
func mapError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.Code
		if code == "" {
			code = apperrors.CodeInternal
		}
		status := apiErr.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return apperrors.Wrap(apiErr, code, apiErr.Message, status).WithDetails(apiErr.Details)
	}
	if apperrors.IsAppError(err) {
		return apperrors.AsAppError(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout("The booking service did not answer in time")
	}
	return apperrors.Internal("Concierge request failed", err)
}
