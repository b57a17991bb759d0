package handlers

import "strings"

// Request-size limits. These are transport guards only; the real policy
// checks live in the validate package.
const (
	MaxUsernameLength = 150
	MaxEmailLength    = 254
	MaxPasswordLength = 128
)

// SanitizeUsername trims surrounding whitespace; returns empty if over max length.
func SanitizeUsername(username string) string {
	s := strings.TrimSpace(username)
	if len(s) > MaxUsernameLength {
		return ""
	}
	return s
}

// SanitizeEmail trims and lowercases email; returns empty if invalid length.
func SanitizeEmail(email string) string {
	s := strings.TrimSpace(strings.ToLower(email))
	if len(s) > MaxEmailLength {
		return ""
	}
	return s
}

// SanitizePassword caps password length. Whitespace is significant in a
// password, so nothing is trimmed.
func SanitizePassword(password string) string {
	if len(password) > MaxPasswordLength {
		return ""
	}
	return password
}
