// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BR"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// WhatsAppLink builds a wa.me deep link for the given phone number.
// Returns "" when the number cannot be normalized to E.164.
func WhatsAppLink(input string) string {
	normalized := NormalizeE164(input)
	if !strings.HasPrefix(normalized, "+") {
		return ""
	}
	return "https://wa.me/" + strings.TrimPrefix(normalized, "+")
}
