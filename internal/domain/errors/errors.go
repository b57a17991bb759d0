package errors

import "errors"

// Sentinel errors for handlers to map to HTTP status.
var (
	// ErrAuthDenied covers every login denial: bad credentials, unknown
	// account, inactive account, lockout, rate limit. One sentinel so the
	// response cannot be told apart across those cases.
	ErrAuthDenied      = errors.New("invalid credentials or too many attempts; try again later")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrEmailTaken      = errors.New("email already registered")
	ErrAccountNotFound = errors.New("account not found")
)
