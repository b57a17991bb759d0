package admin

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrDNightCore/warden/internal/application/audit"
	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/application/validate"
	"github.com/MrDNightCore/warden/internal/domain"
	domerrors "github.com/MrDNightCore/warden/internal/domain/errors"
)

type CreateAccountInput struct {
	Username string
	Email    string
	Password string
	IsActive bool
	ClientIP string
}

type CreateAccountResult struct {
	Account *domain.Account
}

// CreateAccount provisions an account from the operator surface. The same
// field rules apply as for self-registration; only the rate limiter is
// skipped.
type CreateAccount struct {
	accounts ports.AccountRepository
	hasher   ports.PasswordHasher
	recorder *audit.Recorder
}

func NewCreateAccount(accounts ports.AccountRepository, hasher ports.PasswordHasher, recorder *audit.Recorder) *CreateAccount {
	return &CreateAccount{accounts: accounts, hasher: hasher, recorder: recorder}
}

func (uc *CreateAccount) Execute(ctx context.Context, input CreateAccountInput) (*CreateAccountResult, error) {
	if err := validate.Username(input.Username); err != nil {
		return nil, err
	}
	if err := validate.Email(input.Email); err != nil {
		return nil, err
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
		IsActive:     input.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.accounts.Create(ctx, acct); err != nil {
		return nil, err
	}

	uc.recorder.Record(ctx, domain.SecurityEvent{
		Kind:      domain.EventAccountCreated,
		AccountID: &acct.ID,
		Username:  acct.Username,
		ClientIP:  input.ClientIP,
		Context:   map[string]string{"source": "admin"},
	})
	return &CreateAccountResult{Account: acct}, nil
}
