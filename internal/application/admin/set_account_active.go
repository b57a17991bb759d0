package admin

import (
	"context"

	"github.com/MrDNightCore/warden/internal/application/audit"
	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/domain"
)

type SetAccountActiveInput struct {
	AccountID domain.AccountID
	Active    bool
	ClientIP  string
}

type SetAccountActiveResult struct {
	Account *domain.Account
}

// SetAccountActive flips the active flag. Deactivated accounts keep their
// credentials but every login is denied until reactivation.
type SetAccountActive struct {
	accounts ports.AccountRepository
	recorder *audit.Recorder
}

func NewSetAccountActive(accounts ports.AccountRepository, recorder *audit.Recorder) *SetAccountActive {
	return &SetAccountActive{accounts: accounts, recorder: recorder}
}

func (uc *SetAccountActive) Execute(ctx context.Context, input SetAccountActiveInput) (*SetAccountActiveResult, error) {
	acct, err := uc.accounts.SetActive(ctx, input.AccountID, input.Active)
	if err != nil {
		return nil, err
	}
	kind := domain.EventAccountDeactivated
	if input.Active {
		kind = domain.EventAccountActivated
	}
	uc.recorder.Record(ctx, domain.SecurityEvent{
		Kind:      kind,
		AccountID: &acct.ID,
		Username:  acct.Username,
		ClientIP:  input.ClientIP,
		Context:   map[string]string{"source": "admin"},
	})
	return &SetAccountActiveResult{Account: acct}, nil
}
