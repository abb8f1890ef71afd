package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   NotFound("Reservation"),
			expected: "NOT_FOUND: Reservation not found",
		},
		{
			name:     "with underlying error",
			appErr:   Internal("internal error", errors.New("database connection failed")),
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	if !errors.Is(appErr, originalErr) {
		t.Errorf("errors.Is should find the original error")
	}
}

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFoundWithID("Venue", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("who"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("taken"), CodeConflict, http.StatusConflict},
		{"state guard", StateGuard("not provisional"), CodeInvalidState, http.StatusConflict},
		{"code expired", CodeExpired("expired"), CodeCodeExpired, http.StatusGone},
		{"code invalid", CodeInvalid("wrong"), CodeCodeInvalid, http.StatusBadRequest},
		{"rate limited", RateLimited("slow down"), CodeRateLimited, http.StatusTooManyRequests},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("mongo"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.status)
			}
		})
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Reservation", "123")

	if err.Details["resource"] != "Reservation" || err.Details["id"] != "123" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestAsAppError(t *testing.T) {
	guard := StateGuard("not provisional")
	wrapped := fmt.Errorf("transaction failed: %w", guard)

	if got := AsAppError(wrapped); got != guard {
		t.Errorf("AsAppError should unwrap to the original AppError")
	}
	if !IsAppError(wrapped) {
		t.Errorf("IsAppError should see through wrapping")
	}

	plain := errors.New("boom")
	got := AsAppError(plain)
	if got.Code != CodeInternal || !errors.Is(got, plain) {
		t.Errorf("plain errors should become internal errors, got %v", got)
	}
	if IsAppError(plain) {
		t.Errorf("plain error is not an AppError")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", CodeExpired("expired"))

	if !HasCode(err, CodeCodeExpired) {
		t.Errorf("expected CODE_EXPIRED")
	}
	if HasCode(err, CodeCodeInvalid) {
		t.Errorf("expired and invalid codes must stay distinct")
	}
	if HasCode(nil, CodeCodeExpired) {
		t.Errorf("nil has no code")
	}
}
