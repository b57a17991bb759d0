package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MrDNightCore/warden/internal/application/audit"
	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/application/ratelimit"
	"github.com/MrDNightCore/warden/internal/domain"
	domerrors "github.com/MrDNightCore/warden/internal/domain/errors"
)

var accountLockouts = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "warden_account_lockouts_total",
		Help: "Accounts locked after repeated failed logins",
	},
)

const (
	DefaultLockoutThreshold = 5
	DefaultLockoutDuration  = 15 * time.Minute

	decoyPassword = "warden.decoy.credential"
)

type LoginInput struct {
	Username string
	Password string
	ClientIP string
}

type LoginResult struct {
	Account *domain.Account
}

type Login struct {
	accounts  ports.AccountRepository
	hasher    ports.PasswordHasher
	limiter   *ratelimit.Limiter
	recorder  *audit.Recorder
	threshold int
	lockFor   time.Duration
	decoyHash string
}

func NewLogin(accounts ports.AccountRepository, hasher ports.PasswordHasher, limiter *ratelimit.Limiter, recorder *audit.Recorder, threshold int, lockFor time.Duration) *Login {
	if threshold <= 0 {
		threshold = DefaultLockoutThreshold
	}
	if lockFor <= 0 {
		lockFor = DefaultLockoutDuration
	}
	decoy, err := hasher.Hash(decoyPassword)
	if err != nil {
		decoy = ""
	}
	return &Login{
		accounts:  accounts,
		hasher:    hasher,
		limiter:   limiter,
		recorder:  recorder,
		threshold: threshold,
		lockFor:   lockFor,
		decoyHash: decoy,
	}
}

// Execute runs the login state machine: rate limit, lock check, credential
// verification. Every denial surfaces as ErrAuthDenied; the real reason goes
// to the audit trail only.
func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Username == "" || input.Password == "" {
		return nil, domerrors.ErrAuthDenied
	}

	decision, err := uc.limiter.CheckAndRecord(ctx, ratelimit.ActionLogin, input.ClientIP)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		uc.record(ctx, domain.EventRateLimited, nil, input, map[string]string{
			"action": string(ratelimit.ActionLogin),
		})
		return nil, domerrors.ErrAuthDenied
	}

	acct, err := uc.accounts.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		// Verifying against a decoy hash keeps unknown-account and locked
		// denials the same cost as a wrong password.
		uc.hasher.Verify(input.Password, uc.decoyHash)
		uc.record(ctx, domain.EventLoginFailed, nil, input, map[string]string{
			"reason": "unknown_account",
		})
		return nil, domerrors.ErrAuthDenied
	}
	if acct.Locked(time.Now()) {
		uc.hasher.Verify(input.Password, uc.decoyHash)
		uc.record(ctx, domain.EventLoginLockedAccount, &acct.ID, input, nil)
		return nil, domerrors.ErrAuthDenied
	}

	if !uc.hasher.Verify(input.Password, acct.PasswordHash) {
		return nil, uc.recordFailure(ctx, acct, input, "bad_password")
	}
	if !acct.IsActive {
		return nil, uc.recordFailure(ctx, acct, input, "inactive_account")
	}

	if err := uc.accounts.RecordSuccessfulLogin(ctx, acct.Username); err != nil {
		return nil, err
	}
	uc.record(ctx, domain.EventLoginSuccess, &acct.ID, input, nil)
	return &LoginResult{Account: acct}, nil
}

func (uc *Login) recordFailure(ctx context.Context, acct *domain.Account, input LoginInput, reason string) error {
	attempts, lockedUntil, err := uc.accounts.RecordFailedLogin(ctx, acct.Username, uc.threshold, uc.lockFor)
	if err != nil {
		return err
	}
	uc.record(ctx, domain.EventLoginFailed, &acct.ID, input, map[string]string{
		"reason":   reason,
		"attempts": strconv.Itoa(attempts),
	})
	if lockedUntil != nil {
		accountLockouts.Inc()
		uc.record(ctx, domain.EventAccountLocked, &acct.ID, input, map[string]string{
			"locked_until": lockedUntil.UTC().Format(time.RFC3339),
		})
	}
	return domerrors.ErrAuthDenied
}

func (uc *Login) record(ctx context.Context, kind domain.EventKind, accountID *domain.AccountID, input LoginInput, extra map[string]string) {
	uc.recorder.Record(ctx, domain.SecurityEvent{
		Kind:      kind,
		AccountID: accountID,
		Username:  input.Username,
		ClientIP:  input.ClientIP,
		Context:   extra,
	})
}
