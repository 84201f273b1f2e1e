// Package email holds small helpers shared by notification senders.
package email

import (
	"net/mail"
	"strings"
	"unicode"
)

// Valid reports whether addr parses as a bare RFC 5322 address.
func Valid(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Address == addr
}

// DeriveNameFromEmail builds a first/last name pair from the local part of an
// email address. Used as the recipient name fallback when an applicant's
// display name is unknown.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "Applicant", "Applicant"
	}

	first := capitalize(parts[0])
	last := "Applicant"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
