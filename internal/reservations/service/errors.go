package service

import (
	"errors"
	"time"
	reservationserrors "venuebook/internal/reservations/errors"
	"venuebook/internal/reservations/validator"
	"venuebook/internal/scheduling"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/model"
)

// mapError turns repository sentinels into AppErrors. AppErrors pass through.
func mapError(err error, id string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, reservationserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Reservation", id)
	case errors.Is(err, reservationserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid reservation ID format")
	case errors.Is(err, reservationserrors.ErrStatusChanged):
		return notProvisional()
	}
	return apperrors.Internal("Reservation storage failure", err)
}

func notProvisional() error {
	return apperrors.StateGuard("Reservation is not in a PROVISIONAL state")
}

func conflictError(c *scheduling.Conflict) error {
	return apperrors.Conflict(c.Reason()).WithDetails(map[string]any{
		"conflict_type":           string(c.Type),
		"blocking_reservation_id": c.Reservation.ID,
		"blocking_status":         c.Status,
		"blocking_start":          c.Reservation.StartTime,
		"blocking_end":            c.Reservation.EndTime,
	})
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Reservation validation failed", verrs.Details())
	}
	return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
}

func parseDate(date string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("Invalid date, expected YYYY-MM-DD: " + date)
	}
	return d, nil
}
