package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	reservationserrors "venuebook/internal/reservations/errors"
	"venuebook/internal/reservations/repository"
	"venuebook/internal/reservations/validator"
	"venuebook/internal/scheduling"
	venueserrors "venuebook/internal/venues/errors"
	"venuebook/pkg/config"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/model"
	"venuebook/pkg/notification"
	"venuebook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationService interface {
	Create(ctx context.Context, actor model.Actor, req *model.ReservationRequest) (*model.ReservationReceipt, error)
	Verify(ctx context.Context, id, code string) (*model.Reservation, error)
	ResendCode(ctx context.Context, actor model.Actor, id string) (*model.ReservationReceipt, error)
	Approve(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error)
	Reject(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error)
	Cancel(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error)
	AdminCancel(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error)

	GetByID(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error)
	ListMine(ctx context.Context, actor model.Actor, status string, limit int) ([]*model.Reservation, error)
	ListPending(ctx context.Context, limit int) ([]*model.Reservation, error)
	ListForVenueDate(ctx context.Context, venueID, date string) ([]*model.Reservation, error)
	Stats(ctx context.Context) ([]model.StatusCount, error)

	AvailableSlots(ctx context.Context, venueID, date string) ([]model.SlotAvailability, error)
	DayAvailability(ctx context.Context, venueID string, year int, month time.Month) ([]model.DayAvailability, error)
	SuggestAlternates(ctx context.Context, venueID, date, start, end string) ([]model.Suggestion, error)

	ListStale(ctx context.Context, limit int) ([]*model.Reservation, error)
	Expire(ctx context.Context, reservation *model.Reservation) error
}

// VenueDirectory is the read side of the venue store the lifecycle needs.
type VenueDirectory interface {
	FindByID(ctx context.Context, id string) (*model.Venue, error)
}

type Option func(*reservationService)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *reservationService) { s.now = now }
}

// WithCodeGenerator replaces the one-time code source.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *reservationService) { s.newCode = gen }
}

type reservationService struct {
	repo      repository.ReservationRepository
	locks     repository.LockRepository
	venues    VenueDirectory
	validator *validator.ReservationValidator
	notifier  notification.Notifier
	cfg       *config.Config
	grid      scheduling.Grid
	suggester scheduling.Suggester
	now       func() time.Time
	newCode   func() (string, error)
}

func NewReservationService(
	repo repository.ReservationRepository,
	locks repository.LockRepository,
	venues VenueDirectory,
	validator *validator.ReservationValidator,
	notifier notification.Notifier,
	cfg *config.Config,
	opts ...Option,
) (ReservationService, error) {
	grid, err := scheduling.NewGrid(cfg.OpeningTime, cfg.ClosingTime, cfg.SlotLength)
	if err != nil {
		return nil, err
	}

	s := &reservationService{
		repo:      repo,
		locks:     locks,
		venues:    venues,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
		grid:      grid,
		suggester: scheduling.Suggester{Grid: grid, LookaheadDays: cfg.SuggestionLookaheadDays},
		now:       cfg.Now,
		newCode:   GenerateCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *reservationService) Create(ctx context.Context, actor model.Actor, req *model.ReservationRequest) (*model.ReservationReceipt, error) {
	if actor.ID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "venue_id", req.VenueID, "error", err)
		return nil, validationError(err)
	}

	now := s.now()
	if req.Date < s.today(now) {
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"date": "cannot book for past dates"})
	}

	venue, err := s.lookupVenue(ctx, req.VenueID)
	if err != nil {
		return nil, err
	}
	if !venue.Active {
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"venue_id": "venue is not available for booking"})
	}
	if req.ExpectedAttendees > venue.Capacity {
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{
			"expected_attendees": fmt.Sprintf("must not exceed venue capacity of %d", venue.Capacity),
		})
	}

	code, err := s.newCode()
	if err != nil {
		return nil, apperrors.Internal("Failed to generate verification code", err)
	}
	reservation := s.newReservation(actor, venue, req, now)
	expiresAt := now.Add(s.cfg.CodeTTL).UTC().Truncate(time.Millisecond)
	reservation.Code = code
	reservation.CodeExpiresAt = &expiresAt

	slot, _ := scheduling.ParseInterval(req.StartTime, req.EndTime)
	err = s.withSlotLock(ctx, venue.ID, req.Date, func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			existing, err := s.repo.FindByVenueAndDate(sessCtx, venue.ID, req.Date)
			if err != nil {
				return apperrors.Internal("Failed to check existing reservations", err)
			}
			if conflict := scheduling.FindConflict(venue.ID, req.Date, slot, existing); conflict != nil {
				return conflictError(conflict)
			}
			if err := s.repo.Create(sessCtx, reservation); err != nil {
				return apperrors.Internal("Failed to create reservation", err)
			}
			return nil
		})
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			s.cfg.Log.Info("Reservation rejected by conflict", "venue_id", venue.ID, "date", req.Date, "slot", slot.String())
		} else {
			s.cfg.Log.Error("Failed to create reservation", "venue_id", venue.ID, "date", req.Date, "error", err)
		}
		return nil, mapError(err, "")
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"venue_id", reservation.VenueID,
		"date", reservation.Date,
		"start_time", reservation.StartTime,
		"end_time", reservation.EndTime,
	)
	s.notify(ctx, reservation, model.EventCodeIssued, "Your Booking Verification Code", codeBody(reservation, code, expiresAt))

	return &model.ReservationReceipt{Reservation: reservation, IssuedCode: code, CodeExpiresAt: expiresAt}, nil
}

// Verify confirms a provisional reservation. Expiry is checked before the
// code itself, so a correct code past its expiry still reports expiry.
func (s *reservationService) Verify(ctx context.Context, id, code string) (*model.Reservation, error) {
	reservation, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.IsTerminal() {
		return nil, notProvisional()
	}
	if reservation.Code == "" || reservation.CodeExpiresAt == nil {
		return nil, apperrors.StateGuard("No verification code is pending for this reservation")
	}

	now := s.now()
	if !now.Before(*reservation.CodeExpiresAt) {
		return nil, apperrors.CodeExpired("Verification code has expired, request a new one")
	}
	if !CodesEqual(code, reservation.Code) {
		return nil, apperrors.CodeInvalid("Verification code is incorrect")
	}

	change := repository.StatusChange{
		From: model.StatusProvisional,
		To:   model.StatusConfirmed,
		At:   now,
		Code: reservation.Code,
	}
	if err := s.transition(ctx, reservation, change); err != nil {
		return nil, err
	}

	s.notify(ctx, reservation, model.EventConfirmed, "Booking Confirmed", fmt.Sprintf(
		"Your booking for %s on %s from %s to %s is confirmed.",
		reservation.VenueName, reservation.Date, reservation.StartTime, reservation.EndTime,
	))
	return reservation, nil
}

// ResendCode replaces the stored code, invalidating the previous one.
func (s *reservationService) ResendCode(ctx context.Context, actor model.Actor, id string) (*model.ReservationReceipt, error) {
	reservation, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.RequesterID != actor.ID && !actor.IsStaff() {
		return nil, apperrors.Forbidden("Only the requester can request a new code")
	}
	if reservation.IsTerminal() {
		return nil, notProvisional()
	}

	code, err := s.newCode()
	if err != nil {
		return nil, apperrors.Internal("Failed to generate verification code", err)
	}
	expiresAt := s.now().Add(s.cfg.CodeTTL).UTC().Truncate(time.Millisecond)
	if err := s.repo.SetCode(ctx, id, code, expiresAt); err != nil {
		return nil, mapError(err, id)
	}
	reservation.Code = code
	reservation.CodeExpiresAt = &expiresAt

	s.cfg.Log.Info("Verification code reissued", "id", id)
	s.notify(ctx, reservation, model.EventCodeIssued, "Your Booking Verification Code", codeBody(reservation, code, expiresAt))

	return &model.ReservationReceipt{Reservation: reservation, IssuedCode: code, CodeExpiresAt: expiresAt}, nil
}

func (s *reservationService) Approve(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error) {
	approver := actor.Email
	if approver == "" {
		approver = actor.ID
	}
	reservation, err := s.guardedTransition(ctx, id, repository.StatusChange{
		From:       model.StatusProvisional,
		To:         model.StatusConfirmed,
		ApprovedBy: approver,
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Reservation approved", "id", id, "approved_by", approver)
	s.notify(ctx, reservation, model.EventApproved, "Booking Approved", fmt.Sprintf(
		"Your booking for %s on %s from %s to %s has been approved.",
		reservation.VenueName, reservation.Date, reservation.StartTime, reservation.EndTime,
	))
	return reservation, nil
}

func (s *reservationService) Reject(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error) {
	reservation, err := s.guardedTransition(ctx, id, repository.StatusChange{
		From: model.StatusProvisional,
		To:   model.StatusRejected,
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Reservation rejected", "id", id, "rejected_by", actor.ID)
	s.notify(ctx, reservation, model.EventRejected, "Booking Rejected", fmt.Sprintf(
		"Your booking for %s on %s from %s to %s has been rejected.",
		reservation.VenueName, reservation.Date, reservation.StartTime, reservation.EndTime,
	))
	return reservation, nil
}

// Cancel lets the requester withdraw a reservation that is still provisional.
func (s *reservationService) Cancel(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error) {
	reservation, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.RequesterID != actor.ID {
		return nil, apperrors.Forbidden("Only the requester can cancel this reservation")
	}
	if reservation.IsTerminal() {
		return nil, apperrors.StateGuard("Only provisional reservations can be cancelled")
	}

	change := repository.StatusChange{From: model.StatusProvisional, To: model.StatusCancelled, At: s.now()}
	if err := s.transition(ctx, reservation, change); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Reservation cancelled by requester", "id", id)
	s.notify(ctx, reservation, model.EventCancelled, "Booking Cancelled", cancelledBody(reservation))
	return reservation, nil
}

func (s *reservationService) AdminCancel(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error) {
	reservation, err := s.guardedTransition(ctx, id, repository.StatusChange{
		From: model.StatusProvisional,
		To:   model.StatusCancelled,
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Reservation cancelled by staff", "id", id, "cancelled_by", actor.ID)
	s.notify(ctx, reservation, model.EventCancelled, "Booking Cancelled", cancelledBody(reservation))
	return reservation, nil
}

func (s *reservationService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error) {
	reservation, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.RequesterID != actor.ID && !actor.IsStaff() {
		return nil, apperrors.Forbidden("Not allowed to view this reservation")
	}
	return reservation, nil
}

func (s *reservationService) ListMine(ctx context.Context, actor model.Actor, status string, limit int) ([]*model.Reservation, error) {
	if actor.ID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if status != "" && !model.ValidStatus(status) {
		return nil, apperrors.InvalidInput("unknown reservation status: " + status)
	}
	reservations, err := s.repo.FindByRequester(ctx, actor.ID, status, config.NormalizePaginationLimit(limit))
	if err != nil {
		s.cfg.Log.Error("Failed to list requester reservations", "requester_id", actor.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return reservations, nil
}

// ListPending is the staff review queue, oldest first.
func (s *reservationService) ListPending(ctx context.Context, limit int) ([]*model.Reservation, error) {
	reservations, err := s.repo.FindPending(ctx, config.NormalizePaginationLimit(limit))
	if err != nil {
		s.cfg.Log.Error("Failed to list pending reservations", "error", err)
		return nil, apperrors.Internal("Failed to retrieve pending reservations", err)
	}
	return reservations, nil
}

func (s *reservationService) ListForVenueDate(ctx context.Context, venueID, date string) ([]*model.Reservation, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	reservations, err := s.repo.FindByVenueAndDate(ctx, venueID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to list venue reservations", "venue_id", venueID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return reservations, nil
}

func (s *reservationService) Stats(ctx context.Context) ([]model.StatusCount, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count reservations by status", "error", err)
		return nil, apperrors.Internal("Failed to compute reservation statistics", err)
	}
	return counts, nil
}

// ListStale returns provisional reservations created strictly before
// now minus the grace period.
func (s *reservationService) ListStale(ctx context.Context, limit int) ([]*model.Reservation, error) {
	cutoff := s.now().Add(-s.cfg.ProvisionalGrace)
	reservations, err := s.repo.FindProvisionalCreatedBefore(ctx, cutoff, limit)
	if err != nil {
		return nil, apperrors.Internal("Failed to find stale reservations", err)
	}
	return reservations, nil
}

// Expire cancels a stale provisional reservation. It uses the same guard as
// AdminCancel, so one that was approved in the meantime is left untouched.
func (s *reservationService) Expire(ctx context.Context, reservation *model.Reservation) error {
	change := repository.StatusChange{From: model.StatusProvisional, To: model.StatusCancelled, At: s.now()}
	if err := s.transition(ctx, reservation, change); err != nil {
		return err
	}

	s.notify(ctx, reservation, model.EventExpired, "Booking Expired", fmt.Sprintf(
		"Your booking for %s on %s from %s to %s was not confirmed in time and has expired.",
		reservation.VenueName, reservation.Date, reservation.StartTime, reservation.EndTime,
	))
	return nil
}

func (s *reservationService) guardedTransition(ctx context.Context, id string, change repository.StatusChange) (*model.Reservation, error) {
	reservation, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.Status != change.From {
		return nil, notProvisional()
	}
	change.At = s.now()
	if err := s.transition(ctx, reservation, change); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *reservationService) transition(ctx context.Context, reservation *model.Reservation, change repository.StatusChange) error {
	if err := s.repo.Transition(ctx, reservation.ID, change); err != nil {
		return mapError(err, reservation.ID)
	}
	change.Apply(reservation)
	return nil
}

func (s *reservationService) find(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapError(err, id)
	}
	return reservation, nil
}

func (s *reservationService) lookupVenue(ctx context.Context, venueID string) (*model.Venue, error) {
	venue, err := s.venues.FindByID(ctx, venueID)
	if err != nil {
		switch {
		case errors.Is(err, venueserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Venue", venueID)
		case errors.Is(err, venueserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid venue ID format")
		}
		s.cfg.Log.Error("Failed to look up venue", "venue_id", venueID, "error", err)
		return nil, apperrors.Internal("Failed to look up venue", err)
	}
	return venue, nil
}

// withSlotLock runs fn while holding the advisory lock for venue/date, so
// the conflict check and the insert behind it cannot interleave with
// another create for the same day.
func (s *reservationService) withSlotLock(ctx context.Context, venueID, date string, fn func() error) error {
	key := repository.LockKey(venueID, date)

	var owner string
	var err error
	for attempt := 1; attempt <= s.cfg.LockRetryAttempts; attempt++ {
		owner, err = s.locks.Acquire(ctx, key, s.cfg.LockTTL)
		if err == nil {
			break
		}
		if !errors.Is(err, reservationserrors.ErrLockHeld) {
			return apperrors.Internal("Failed to acquire reservation lock", err)
		}
		if attempt == s.cfg.LockRetryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return apperrors.Timeout("Timed out waiting for reservation lock")
		case <-time.After(s.cfg.LockRetryDelay):
		}
	}
	if err != nil {
		return apperrors.Conflict("This venue is currently being booked by another request. Please try again.")
	}

	defer func() {
		if err := s.locks.Release(ctx, key, owner); err != nil {
			s.cfg.Log.Warn("Failed to release reservation lock", "lock_id", key, "error", err)
		}
	}()
	return fn()
}

func (s *reservationService) newReservation(actor model.Actor, venue *model.Venue, req *model.ReservationRequest, now time.Time) *model.Reservation {
	title := sanitizer.TrimAndNormalize(req.Title)
	if title == "" {
		title = fmt.Sprintf("Booking for %s on %s", venue.Name, req.Date)
	}
	purpose := sanitizer.TrimAndNormalize(req.Purpose)
	if purpose == "" {
		purpose = config.DefaultPurpose
	}

	return &model.Reservation{
		VenueID:           venue.ID,
		VenueName:         venue.Name,
		RequesterID:       actor.ID,
		RequesterEmail:    sanitizer.NormalizeEmail(actor.Email),
		Date:              req.Date,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Status:            model.StatusProvisional,
		Title:             title,
		Purpose:           purpose,
		Description:       sanitizer.TrimAndNormalize(req.Description),
		ExpectedAttendees: req.ExpectedAttendees,
		CreatedAt:         now.UTC().Truncate(time.Millisecond),
	}
}

// notify is best-effort: failures are logged and never returned.
func (s *reservationService) notify(ctx context.Context, r *model.Reservation, event, subject, body string) {
	if s.notifier == nil {
		return
	}
	if r.RequesterEmail == "" {
		s.cfg.Log.Debug("Skipping notification without recipient", "id", r.ID, "event", event)
		return
	}

	n := model.Notification{
		ReservationID: r.ID,
		EventType:     event,
		Recipient:     r.RequesterEmail,
		Subject:       subject,
		Body:          body,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.cfg.Log.Warn("Failed to send notification", "id", r.ID, "event", event, "error", err)
	}
}

func (s *reservationService) today(now time.Time) string {
	if s.cfg.Location != nil {
		now = now.In(s.cfg.Location)
	}
	return now.Format(model.DateLayout)
}

func codeBody(r *model.Reservation, code string, expiresAt time.Time) string {
	return fmt.Sprintf(
		"Your verification code for %s on %s from %s to %s is %s. It expires at %s.",
		r.VenueName, r.Date, r.StartTime, r.EndTime, code, expiresAt.Format(time.RFC3339),
	)
}

func cancelledBody(r *model.Reservation) string {
	return fmt.Sprintf(
		"Your booking for %s on %s from %s to %s has been cancelled.",
		r.VenueName, r.Date, r.StartTime, r.EndTime,
	)
}
