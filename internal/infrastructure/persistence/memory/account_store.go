package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/domain"
	domerrors "github.com/MrDNightCore/warden/internal/domain/errors"
)

// AccountStore is an in-memory AccountRepository for single-instance
// deployments without Postgres, and for tests. Semantics match the Postgres
// repository: lookups miss with (nil, nil), lockout updates are atomic per
// store.
type AccountStore struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*domain.Account
	byUser  map[string]*domain.Account
	byEmail map[string]*domain.Account
	now     func() time.Time
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		byID:    make(map[uuid.UUID]*domain.Account),
		byUser:  make(map[string]*domain.Account),
		byEmail: make(map[string]*domain.Account),
		now:     time.Now,
	}
}

func clone(a *domain.Account) *domain.Account {
	cp := *a
	if a.LastFailedAt != nil {
		t := *a.LastFailedAt
		cp.LastFailedAt = &t
	}
	if a.LockedUntil != nil {
		t := *a.LockedUntil
		cp.LockedUntil = &t
	}
	if a.LastLogin != nil {
		t := *a.LastLogin
		cp.LastLogin = &t
	}
	return &cp
}

func (s *AccountStore) Create(_ context.Context, acct *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byUser[acct.Username]; exists {
		return domerrors.ErrUsernameTaken
	}
	if _, exists := s.byEmail[acct.Email]; exists {
		return domerrors.ErrEmailTaken
	}
	cp := clone(acct)
	s.byID[cp.ID.UUID] = cp
	s.byUser[cp.Username] = cp
	s.byEmail[cp.Email] = cp
	return nil
}

func (s *AccountStore) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.byUser[username]; ok {
		return clone(a), nil
	}
	return nil, nil
}

func (s *AccountStore) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.byEmail[email]; ok {
		return clone(a), nil
	}
	return nil, nil
}

func (s *AccountStore) GetByID(_ context.Context, id domain.AccountID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.byID[id.UUID]; ok {
		return clone(a), nil
	}
	return nil, nil
}

func (s *AccountStore) List(_ context.Context, limit, offset int) ([]*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*domain.Account, 0, len(s.byID))
	for _, a := range s.byID {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	out := make([]*domain.Account, len(all))
	for i, a := range all {
		out[i] = clone(a)
	}
	return out, nil
}

func (s *AccountStore) RecordFailedLogin(_ context.Context, username string, threshold int, lockFor time.Duration) (int, *time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byUser[username]
	if !ok {
		return 0, nil, domerrors.ErrAccountNotFound
	}
	now := s.now().UTC()
	a.FailedLoginAttempts++
	a.LastFailedAt = &now
	a.UpdatedAt = now
	if a.FailedLoginAttempts >= threshold {
		until := now.Add(lockFor)
		a.LockedUntil = &until
		lockedUntil := until
		return a.FailedLoginAttempts, &lockedUntil, nil
	}
	return a.FailedLoginAttempts, nil, nil
}

func (s *AccountStore) RecordSuccessfulLogin(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byUser[username]
	if !ok {
		return domerrors.ErrAccountNotFound
	}
	now := s.now().UTC()
	a.FailedLoginAttempts = 0
	a.LastFailedAt = nil
	a.LockedUntil = nil
	a.LastLogin = &now
	a.UpdatedAt = now
	return nil
}

func (s *AccountStore) Unlock(_ context.Context, id domain.AccountID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id.UUID]
	if !ok {
		return nil, domerrors.ErrAccountNotFound
	}
	a.FailedLoginAttempts = 0
	a.LastFailedAt = nil
	a.LockedUntil = nil
	a.UpdatedAt = s.now().UTC()
	return clone(a), nil
}

func (s *AccountStore) SetActive(_ context.Context, id domain.AccountID, active bool) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id.UUID]
	if !ok {
		return nil, domerrors.ErrAccountNotFound
	}
	a.IsActive = active
	a.UpdatedAt = s.now().UTC()
	return clone(a), nil
}

var _ ports.AccountRepository = (*AccountStore)(nil)
