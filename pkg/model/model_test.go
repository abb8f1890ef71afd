package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservation_StatusPredicates(t *testing.T) {
	tests := []struct {
		status   string
		active   bool
		terminal bool
	}{
		{StatusProvisional, true, false},
		{StatusConfirmed, true, true},
		{StatusRejected, false, true},
		{StatusCancelled, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			r := &Reservation{Status: tt.status}
			assert.Equal(t, tt.active, r.IsActive())
			assert.Equal(t, tt.terminal, r.IsTerminal())
			assert.True(t, ValidStatus(tt.status))
		})
	}
	assert.False(t, ValidStatus("pending"))
	assert.False(t, ValidStatus(""))
}

func TestReservation_CodeNeverSerialized(t *testing.T) {
	expires := time.Date(2025, 3, 9, 8, 10, 0, 0, time.UTC)
	receipt := ReservationReceipt{
		Reservation: &Reservation{
			ID:            "r1",
			Status:        StatusProvisional,
			Code:          "482193",
			CodeExpiresAt: &expires,
		},
		IssuedCode:    "482193",
		CodeExpiresAt: expires,
	}

	data, err := json.Marshal(receipt)

	require.NoError(t, err)
	assert.NotContains(t, string(data), "482193")
	assert.Contains(t, string(data), `"code_expires_at"`)
}

func TestActor_Roles(t *testing.T) {
	assert.False(t, Actor{Role: RoleUser}.IsStaff())
	assert.True(t, Actor{Role: RoleStaff}.IsStaff())
	assert.True(t, Actor{Role: RoleAdmin}.IsStaff())
	assert.False(t, Actor{Role: RoleStaff}.IsAdmin())
	assert.True(t, Actor{Role: RoleAdmin}.IsAdmin())
}
