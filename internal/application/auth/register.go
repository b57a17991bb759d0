package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrDNightCore/warden/internal/application/audit"
	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/application/ratelimit"
	"github.com/MrDNightCore/warden/internal/application/validate"
	"github.com/MrDNightCore/warden/internal/domain"
	domerrors "github.com/MrDNightCore/warden/internal/domain/errors"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	// PasswordConfirm is optional; when present it must match Password.
	PasswordConfirm *string
	ClientIP        string
}

type RegisterResult struct {
	Account *domain.Account
}

type Register struct {
	accounts ports.AccountRepository
	hasher   ports.PasswordHasher
	limiter  *ratelimit.Limiter
	recorder *audit.Recorder
}

func NewRegister(accounts ports.AccountRepository, hasher ports.PasswordHasher, limiter *ratelimit.Limiter, recorder *audit.Recorder) *Register {
	return &Register{accounts: accounts, hasher: hasher, limiter: limiter, recorder: recorder}
}

// Execute creates an account after the rate limit, field validation, and
// duplicate checks all pass. Field rejections come back as *validate.Error
// so the handler can show the reason; a rate-limit block comes back as the
// generic denial.
func (uc *Register) Execute(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	decision, err := uc.limiter.CheckAndRecord(ctx, ratelimit.ActionRegister, input.ClientIP)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		uc.record(ctx, domain.EventRateLimited, input, map[string]string{
			"action": string(ratelimit.ActionRegister),
		})
		return nil, domerrors.ErrAuthDenied
	}

	uc.record(ctx, domain.EventRegistrationAttempt, input, nil)

	if err := validate.Username(input.Username); err != nil {
		return nil, err
	}
	if err := validate.Email(input.Email); err != nil {
		return nil, err
	}
	if input.PasswordConfirm != nil && *input.PasswordConfirm != input.Password {
		return nil, &validate.Error{Field: "password_confirm", Reason: "Passwords do not match."}
	}
	if err := validate.Password(input.Password, input.Username, input.Email); err != nil {
		return nil, err
	}

	existing, err := uc.accounts.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrUsernameTaken
	}
	existing, err = uc.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrEmailTaken
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	acct := &domain.Account{
		ID:           domain.NewAccountID(uuid.New()),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.accounts.Create(ctx, acct); err != nil {
		return nil, err
	}

	uc.recorder.Record(ctx, domain.SecurityEvent{
		Kind:      domain.EventRegistrationSuccess,
		AccountID: &acct.ID,
		Username:  acct.Username,
		ClientIP:  input.ClientIP,
	})
	return &RegisterResult{Account: acct}, nil
}

func (uc *Register) record(ctx context.Context, kind domain.EventKind, input RegisterInput, extra map[string]string) {
	uc.recorder.Record(ctx, domain.SecurityEvent{
		Kind:     kind,
		Username: input.Username,
		ClientIP: input.ClientIP,
		Context:  extra,
	})
}
