package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reNonWord      = regexp.MustCompile(`[^0-9\p{L}]+`)
	reRepeatedDash = regexp.MustCompile(`-+`)
)

// TrimAndNormalize trims and collapses every run of whitespace to one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return b.String()
}

// NormalizeAmenity produces a lowercase slug: "Wi Fi" and "wi-fi" both become "wi-fi".
func NormalizeAmenity(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = reNonWord.ReplaceAllString(s, "-")
	s = reRepeatedDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SearchKey folds a venue name for case and punctuation insensitive lookup.
func SearchKey(s string) string {
	return strings.ReplaceAll(NormalizeAmenity(s), "-", " ")
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
