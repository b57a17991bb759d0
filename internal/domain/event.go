package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventKind names a security-relevant event.
type EventKind string

const (
	EventLoginSuccess        EventKind = "login_success"
	EventLoginFailed         EventKind = "login_failed"
	EventLoginLockedAccount  EventKind = "login_locked_account"
	EventRateLimited         EventKind = "rate_limited"
	EventRegistrationAttempt EventKind = "registration_attempt"
	EventRegistrationSuccess EventKind = "registration_success"
	EventAccountLocked       EventKind = "account_locked"
	EventAccountUnlocked     EventKind = "account_unlocked"
	EventAccountActivated    EventKind = "account_activated"
	EventAccountDeactivated  EventKind = "account_deactivated"
	EventAccountCreated      EventKind = "account_created"
)

// Suspicious reports whether the kind should be logged at warning level.
func (k EventKind) Suspicious() bool {
	switch k {
	case EventLoginFailed, EventLoginLockedAccount, EventRateLimited, EventAccountLocked:
		return true
	}
	return false
}

// SecurityEvent is a single append-only audit record. Events are written by
// the auth flows and consumed externally; the core never reads them back.
type SecurityEvent struct {
	ID        uuid.UUID         `json:"id"`
	Kind      EventKind         `json:"kind"`
	AccountID *AccountID        `json:"account_id,omitempty"`
	Username  string            `json:"username,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
	At        time.Time         `json:"at"`
}
