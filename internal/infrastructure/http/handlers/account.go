package handlers

import (
	"time"

	"github.com/MrDNightCore/warden/internal/domain"
)

// accountJSON is the public account shape returned by login and registration.
// Lockout internals are never exposed here.
func accountJSON(acct *domain.Account) map[string]interface{} {
	out := map[string]interface{}{
		"id":         acct.ID.String(),
		"username":   acct.Username,
		"email":      acct.Email,
		"is_active":  acct.IsActive,
		"created_at": acct.CreatedAt.UTC().Format(time.RFC3339),
	}
	if acct.LastLogin != nil {
		out["last_login"] = acct.LastLogin.UTC().Format(time.RFC3339)
	}
	return out
}

// adminAccountJSON extends the public shape with lockout state for the
// operator surface.
func adminAccountJSON(acct *domain.Account) map[string]interface{} {
	out := accountJSON(acct)
	out["failed_login_attempts"] = acct.FailedLoginAttempts
	if acct.LockedUntil != nil {
		out["locked_until"] = acct.LockedUntil.UTC().Format(time.RFC3339)
	}
	if acct.LastFailedAt != nil {
		out["last_failed_at"] = acct.LastFailedAt.UTC().Format(time.RFC3339)
	}
	return out
}
