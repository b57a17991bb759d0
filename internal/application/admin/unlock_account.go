package admin

import (
	"context"

	"github.com/MrDNightCore/warden/internal/application/audit"
	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/domain"
)

type UnlockAccountInput struct {
	AccountID domain.AccountID
	ClientIP  string
}

type UnlockAccountResult struct {
	Account *domain.Account
}

// UnlockAccount clears a lockout ahead of its expiry and zeroes the failure
// counter, the same transition a successful login performs.
type UnlockAccount struct {
	accounts ports.AccountRepository
	recorder *audit.Recorder
}

func NewUnlockAccount(accounts ports.AccountRepository, recorder *audit.Recorder) *UnlockAccount {
	return &UnlockAccount{accounts: accounts, recorder: recorder}
}

func (uc *UnlockAccount) Execute(ctx context.Context, input UnlockAccountInput) (*UnlockAccountResult, error) {
	acct, err := uc.accounts.Unlock(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	uc.recorder.Record(ctx, domain.SecurityEvent{
		Kind:      domain.EventAccountUnlocked,
		AccountID: &acct.ID,
		Username:  acct.Username,
		ClientIP:  input.ClientIP,
		Context:   map[string]string{"source": "admin"},
	})
	return &UnlockAccountResult{Account: acct}, nil
}
