package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

var discountCodeRegex = regexp.MustCompile(`^[A-Z0-9_-]{3,20}$`)

// NormalizeDiscountCode uppercases a discount code and validates its format.
// Codes compare case-insensitively, so the stored form is always uppercase.
func NormalizeDiscountCode(value string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	if !discountCodeRegex.MatchString(normalized) {
		return "", fmt.Errorf("invalid discount code. Use 3-20 characters (letters, numbers, hyphens, underscores)")
	}
	return normalized, nil
}

// NormalizeEmail lowercases and trims an email address and checks its shape.
func NormalizeEmail(value string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", fmt.Errorf("invalid email address")
	}
	return normalized, nil
}
