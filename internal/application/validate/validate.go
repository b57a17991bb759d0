package validate

import (
	"regexp"
	"strings"
)

// Validation limits. Username and password bounds are policy, not transport
// limits; the HTTP layer enforces its own request-shape caps on top.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MaxEmailLength    = 254
	MinPasswordLength = 12
	MaxPasswordLength = 128
)

// specialChars is the accepted special-character set for passwords.
const specialChars = "!@#$%^&*()_+=-[]{};:'\",.<>?/\\|`~"

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Error carries the field that failed and a user-actionable reason. Reasons
// are safe to render; they never reference other accounts.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func fail(field, reason string) error {
	return &Error{Field: field, Reason: reason}
}

// Username accepts 3-30 alphanumeric characters.
func Username(username string) error {
	if username == "" {
		return fail("username", "Username is required.")
	}
	if len(username) < MinUsernameLength {
		return fail("username", "Username must be at least 3 characters long.")
	}
	if len(username) > MaxUsernameLength {
		return fail("username", "Username must not exceed 30 characters.")
	}
	if !usernameRegex.MatchString(username) {
		return fail("username", "Username can only contain letters and numbers.")
	}
	return nil
}

// Email accepts local@domain with at least one dot in the domain.
func Email(email string) error {
	if email == "" {
		return fail("email", "Email is required.")
	}
	if len(email) > MaxEmailLength {
		return fail("email", "Email address is too long.")
	}
	if !emailRegex.MatchString(email) {
		return fail("email", "Please enter a valid email address.")
	}
	return nil
}

// Password enforces the strength policy: 12-128 characters with at least one
// uppercase letter, one lowercase letter, one digit and one special
// character, and not containing the username or the email local-part as a
// case-insensitive substring.
func Password(password, username, email string) error {
	if password == "" {
		return fail("password", "Password is required.")
	}
	if len(password) < MinPasswordLength {
		return fail("password", "Password must be at least 12 characters long.")
	}
	if len(password) > MaxPasswordLength {
		return fail("password", "Password must not exceed 128 characters.")
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}
	if !hasUpper {
		return fail("password", "Password must contain at least one uppercase letter.")
	}
	if !hasLower {
		return fail("password", "Password must contain at least one lowercase letter.")
	}
	if !hasDigit {
		return fail("password", "Password must contain at least one digit.")
	}
	if !hasSpecial {
		return fail("password", "Password must contain at least one special character (!@#$%^&*...).")
	}
	lowered := strings.ToLower(password)
	if username != "" && strings.Contains(lowered, strings.ToLower(username)) {
		return fail("password", "Password is too similar to your username.")
	}
	if local := emailLocalPart(email); local != "" && strings.Contains(lowered, local) {
		return fail("password", "Password is too similar to your email address.")
	}
	return nil
}

func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return strings.ToLower(local)
}
