package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"venuebook/internal/scheduling"
	"venuebook/pkg/logger"
	"venuebook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, e := range v {
		details[e.Field] = e.Message
	}
	return details
}

type ReservationValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonTagName)

	if err := v.RegisterValidation("clock", validateClock); err != nil {
		log.Fatal("Failed to register clock validator", "error", err)
	}

	return &ReservationValidator{validate: v, log: log}
}

func (v *ReservationValidator) Validate(req *model.ReservationRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	if _, err := scheduling.ParseInterval(req.StartTime, req.EndTime); err != nil {
		return ValidationErrors{{Field: "end_time", Message: "must be after start_time"}}
	}
	return nil
}

// validateClock accepts a 24h HH:MM time of day.
func validateClock(fl validator.FieldLevel) bool {
	_, err := scheduling.ParseClock(fl.Field().String())
	return err == nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, err := range errs {
		out = append(out, ValidationError{
			Field:   err.Field(),
			Message: message(err),
		})
	}
	return out
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "clock":
		return "must be a time of day in HH:MM format"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "mongodb":
		return "must be a valid id"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	}
	return fmt.Sprintf("failed %q validation", err.Tag())
}

func jsonTagName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
