package utils

import (
	"regexp"
	"strings"
)

var (
	phoneRegex    = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	nonPhoneChars = regexp.MustCompile(`[^\d+]`)
)

func IsValidPhone(phone string) bool {
	cleaned := nonPhoneChars.ReplaceAllString(phone, "")
	return phoneRegex.MatchString(cleaned)
}

// NormalizePhone strips formatting characters and ensures a leading +.
func NormalizePhone(phone string) string {
	normalized := nonPhoneChars.ReplaceAllString(phone, "")
	if !strings.HasPrefix(normalized, "+") {
		normalized = "+" + normalized
	}
	return normalized
}

// FormatPhone normalizes a local number into E.164 under the given country code.
// A leading 0 on the local part is dropped, "08031234567" with +234 becomes
// "+2348031234567".
func FormatPhone(phone, countryCode string) string {
	cleaned := regexp.MustCompile(`[^\d]`).ReplaceAllString(phone, "")
	code := strings.TrimPrefix(countryCode, "+")

	if strings.HasPrefix(cleaned, code) {
		return "+" + cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "0")
	return "+" + code + cleaned
}
