package ports

import (
	"context"
	"time"

	"github.com/MrDNightCore/warden/internal/domain"
)

// AccountRepository defines persistence for accounts, including the lockout
// state that rides on the account row. Lookups return (nil, nil) when no
// account matches.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)

	// RecordFailedLogin increments the failure counter and, when the
	// post-increment count reaches threshold, stamps LockedUntil =
	// now + lockFor. The counter is not reset until a success, so every
	// failure at or past the threshold extends the lock. The
	// increment-and-compare is atomic per account; concurrent calls must
	// never lose increments.
	RecordFailedLogin(ctx context.Context, username string, threshold int, lockFor time.Duration) (attempts int, lockedUntil *time.Time, err error)

	// RecordSuccessfulLogin resets the failure counter, clears the lock and
	// stamps LastLogin, all in one write.
	RecordSuccessfulLogin(ctx context.Context, username string) error

	// Unlock clears the lock state and failure counter (admin action) and
	// returns the updated account.
	Unlock(ctx context.Context, id domain.AccountID) (*domain.Account, error)

	// SetActive toggles the active flag and returns the updated account.
	// Inactive accounts cannot authenticate.
	SetActive(ctx context.Context, id domain.AccountID, active bool) (*domain.Account, error)
}
