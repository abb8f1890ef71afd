package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"venuebook/pkg/model"
)

type Intent string

const (
	IntentBooking      Intent = "booking"
	IntentAvailability Intent = "availability"
	IntentVenues       Intent = "venues"
	IntentMyBookings   Intent = "my_bookings"
	IntentHelp         Intent = "help"
	IntentGeneral      Intent = "general"
)

type intentRule struct {
	intent   Intent
	keywords []string
}

// Evaluated in order, first match wins.
var intentRules = []intentRule{
	{IntentBooking, []string{"book", "reserve", "schedule", "meeting"}},
	{IntentAvailability, []string{"available", "free", "check", "when"}},
	{IntentVenues, []string{"venue", "room", "hall", "space"}},
	{IntentMyBookings, []string{"my booking", "my reservation", "my meeting", "cancel"}},
	{IntentHelp, []string{"help", "how", "what can", "assist"}},
}

func Classify(message string) Intent {
	lower := strings.ToLower(message)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}

type Entities struct {
	Date      string
	StartTime string
	EndTime   string
}

var (
	isoDateRegex = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	usDateRegex  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	timeRegex    = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
)

// ExtractEntities pulls a date and a time range out of free text. A single
// time yields a range of defaultLength.
func ExtractEntities(message string, today time.Time, defaultLength time.Duration) Entities {
	var e Entities
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "today"):
		e.Date = today.Format(model.DateLayout)
	case strings.Contains(lower, "tomorrow"):
		e.Date = today.AddDate(0, 0, 1).Format(model.DateLayout)
	case strings.Contains(lower, "next week"):
		e.Date = today.AddDate(0, 0, 7).Format(model.DateLayout)
	}

	if m := isoDateRegex.FindString(lower); m != "" {
		if _, err := time.Parse(model.DateLayout, m); err == nil {
			e.Date = m
		}
		lower = strings.Replace(lower, m, " ", 1)
	} else if m := usDateRegex.FindStringSubmatch(lower); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		candidate := fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
		if _, err := time.Parse(model.DateLayout, candidate); err == nil {
			e.Date = candidate
		}
		lower = strings.Replace(lower, m[0], " ", 1)
	}

	var clocks []time.Time
	for _, m := range timeRegex.FindAllStringSubmatch(lower, -1) {
		// A bare number is a count, not a time.
		if m[2] == "" && m[3] == "" {
			continue
		}
		if t, ok := parseClock(m[1], m[2], m[3]); ok {
			clocks = append(clocks, t)
		}
		if len(clocks) == 2 {
			break
		}
	}

	if len(clocks) > 0 {
		e.StartTime = clocks[0].Format(model.TimeLayout)
		end := clocks[0].Add(defaultLength)
		if len(clocks) > 1 {
			end = clocks[1]
		}
		e.EndTime = end.Format(model.TimeLayout)
	}
	return e
}

func parseClock(hourStr, minuteStr, meridiem string) (time.Time, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return time.Time{}, false
	}
	minute := 0
	if minuteStr != "" {
		if minute, err = strconv.Atoi(minuteStr); err != nil {
			return time.Time{}, false
		}
	}

	switch meridiem {
	case "pm":
		if hour < 1 || hour > 12 {
			return time.Time{}, false
		}
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour < 1 || hour > 12 {
			return time.Time{}, false
		}
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC), true
}
