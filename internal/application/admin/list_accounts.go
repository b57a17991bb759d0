package admin

import (
	"context"

	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/domain"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type ListAccountsInput struct {
	Limit  int
	Offset int
}

type ListAccountsResult struct {
	Accounts []*domain.Account
}

// ListAccounts pages through the account store for the operator surface.
type ListAccounts struct {
	accounts ports.AccountRepository
}

func NewListAccounts(accounts ports.AccountRepository) *ListAccounts {
	return &ListAccounts{accounts: accounts}
}

func (uc *ListAccounts) Execute(ctx context.Context, input ListAccountsInput) (*ListAccountsResult, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}
	accounts, err := uc.accounts.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ListAccountsResult{Accounts: accounts}, nil
}
