package middleware

import (
	"regexp"
	"strings"
)

// Common validation patterns.
var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	colorRegex    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// ValidateEmail validates an email address.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateCurrency validates a currency code (3 uppercase letters).
func ValidateCurrency(code string) bool {
	return currencyRegex.MatchString(code)
}

// ValidateColor validates a hex color code.
func ValidateColor(color string) bool {
	return colorRegex.MatchString(color)
}

// ValidateDueDay validates a subscription due day of month.
func ValidateDueDay(day int) bool {
	return day >= 1 && day <= 31
}

// SanitizeString trims whitespace and removes control characters.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
	return s
}
