package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountID is a value object for account identity.
type AccountID struct{ uuid.UUID }

// NewAccountID creates a new AccountID from uuid.
func NewAccountID(id uuid.UUID) AccountID { return AccountID{UUID: id} }

// String returns the canonical string form.
func (a AccountID) String() string { return a.UUID.String() }

// Account is a site user together with its lockout state. The lockout fields
// ride on the account row so they are updated in the same transaction as any
// other account mutation in the request.
type Account struct {
	ID                  AccountID
	Username            string
	Email               string
	PasswordHash        string
	FailedLoginAttempts int
	LastFailedAt        *time.Time
	LockedUntil         *time.Time
	LastLogin           *time.Time
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Locked reports whether the account is locked out at now. The lock expires
// on its own once LockedUntil passes; the failure counter is only reset by a
// successful login, so another failure after expiry re-locks immediately.
func (a *Account) Locked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}
