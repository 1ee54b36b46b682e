package validation

import (
	"net/mail"
	"strings"
)

const maxEmailLen = 254

// NormalizeEmail lowercases and trims an address and reports a FieldError on
// field when it is not a bare RFC 5322 address. Display-name forms such as
// "Jane <jane@example.com>" are rejected.
func NormalizeEmail(field, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", Invalid(field, "is required")
	}
	if len(email) > maxEmailLen {
		return "", Invalid(field, "must be at most 254 characters")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", Invalid(field, "must be a valid email address")
	}
	return email, nil
}
