package core

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	InputMessage     = "message"
	InputVenueID     = "venue_id"
	InputVenue       = "venue"
	InputDate        = "date"
	InputStartTime   = "start_time"
	InputEndTime     = "end_time"
	InputSlotToken   = "slot_token"
	InputReservation = "reservation_id"
	InputCode        = "code"
	InputTitle       = "title"
	InputPurpose     = "purpose"
	InputAttendees   = "expected_attendees"

	OutputResponse = "response"
)

// MissingParamError tells the caller which piece of information the flow
// still needs. It is answered with a prompt rather than a failure.
type MissingParamError struct {
	Param string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("required param [%v] is missing", e.Param)
}

func MissingParamErr(paramName string) error {
	return &MissingParamError{Param: paramName}
}

func IsMissing(str string) bool {
	return len(strings.TrimSpace(str)) == 0
}

func (c *ConciergeContext) ExtractString(key string) string {
	switch v := c.Input[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

func (c *ConciergeContext) RequireString(key string) (string, error) {
	v := c.ExtractString(key)
	if IsMissing(v) {
		return "", MissingParamErr(key)
	}
	return v, nil
}

// ExtractInt accepts JSON numbers and numeric strings.
func (c *ConciergeContext) ExtractInt(key string) (int, bool) {
	switch v := c.Input[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

// SetDefault fills key only when the caller did not provide it.
func (c *ConciergeContext) SetDefault(key, value string) {
	if value == "" || !IsMissing(c.ExtractString(key)) {
		return
	}
	c.Input[key] = value
}
