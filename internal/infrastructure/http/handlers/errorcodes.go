package handlers

// API error codes returned in JSON { "error": "...", "code": "..." } for stable client handling.
// Every login or registration denial shares ErrCodeAuthDenied so responses
// cannot be told apart by code.
const (
	ErrCodeAuthDenied     = "auth_denied"
	ErrCodeValidation     = "validation_failed"
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeForbidden      = "forbidden"
	ErrCodeNotFound       = "not_found"
	ErrCodeConflict       = "conflict"
	ErrCodeInternal       = "internal_error"
)
