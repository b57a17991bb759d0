package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrDNightCore/warden/internal/domain"
	domerrors "github.com/MrDNightCore/warden/internal/domain/errors"
)

type fakeRepo struct {
	mu       sync.Mutex
	byUser   map[string]*domain.Account
	failures int
	resets   int
	lookups  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byUser: make(map[string]*domain.Account)}
}

func (f *fakeRepo) seed(username, email, passwordHash string, active bool) *domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	a := &domain.Account{
		ID:           domain.NewAccountID(uuid.New()),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.byUser[username] = a
	return a
}

func clone(a *domain.Account) *domain.Account {
	cp := *a
	return &cp
}

func (f *fakeRepo) Create(_ context.Context, a *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUser[a.Username] = clone(a)
	return nil
}

func (f *fakeRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	a, ok := f.byUser[username]
	if !ok {
		return nil, nil
	}
	return clone(a), nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byUser {
		if a.Email == email {
			return clone(a), nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id domain.AccountID) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byUser {
		if a.ID == id {
			return clone(a), nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) List(_ context.Context, limit, offset int) ([]*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Account, 0, len(f.byUser))
	for _, a := range f.byUser {
		out = append(out, clone(a))
	}
	return out, nil
}

func (f *fakeRepo) RecordFailedLogin(_ context.Context, username string, threshold int, lockFor time.Duration) (int, *time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byUser[username]
	if !ok {
		return 0, nil, domerrors.ErrAccountNotFound
	}
	f.failures++
	now := time.Now().UTC()
	a.FailedLoginAttempts++
	a.LastFailedAt = &now
	if a.FailedLoginAttempts >= threshold {
		until := now.Add(lockFor)
		a.LockedUntil = &until
		return a.FailedLoginAttempts, &until, nil
	}
	return a.FailedLoginAttempts, nil, nil
}

func (f *fakeRepo) RecordSuccessfulLogin(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byUser[username]
	if !ok {
		return domerrors.ErrAccountNotFound
	}
	f.resets++
	now := time.Now().UTC()
	a.FailedLoginAttempts = 0
	a.LastFailedAt = nil
	a.LockedUntil = nil
	a.LastLogin = &now
	return nil
}

func (f *fakeRepo) Unlock(_ context.Context, id domain.AccountID) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byUser {
		if a.ID == id {
			a.FailedLoginAttempts = 0
			a.LastFailedAt = nil
			a.LockedUntil = nil
			return clone(a), nil
		}
	}
	return nil, domerrors.ErrAccountNotFound
}

func (f *fakeRepo) SetActive(_ context.Context, id domain.AccountID, active bool) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byUser {
		if a.ID == id {
			a.IsActive = active
			return clone(a), nil
		}
	}
	return nil, domerrors.ErrAccountNotFound
}

func (f *fakeRepo) get(username string) *domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byUser[username]
	if !ok {
		return nil
	}
	return clone(a)
}

type fakeHasher struct {
	mu       sync.Mutex
	verified []string
}

func (h *fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (h *fakeHasher) Verify(password, hash string) bool {
	h.mu.Lock()
	h.verified = append(h.verified, hash)
	h.mu.Unlock()
	return hash == "hashed:"+password
}

func (h *fakeHasher) lastVerifiedHash() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.verified) == 0 {
		return ""
	}
	return h.verified[len(h.verified)-1]
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.SecurityEvent
}

func (s *recordingSink) Write(_ context.Context, ev domain.SecurityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) kinds() []domain.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EventKind, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Kind
	}
	return out
}

func (s *recordingSink) last() domain.SecurityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return domain.SecurityEvent{}
	}
	return s.events[len(s.events)-1]
}

type countingStore struct {
	mu     sync.Mutex
	counts map[string]int64
	expiry map[string]time.Time
	err    error
}

func newCountingStore() *countingStore {
	return &countingStore{counts: make(map[string]int64), expiry: make(map[string]time.Time)}
}

func (s *countingStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s.err != nil {
		return 0, 0, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	exp, ok := s.expiry[key]
	if !ok || !now.Before(exp) {
		s.counts[key] = 0
		exp = now.Add(window)
		s.expiry[key] = exp
	}
	s.counts[key]++
	return s.counts[key], exp.Sub(now), nil
}

func (s *countingStore) total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, c := range s.counts {
		n += c
	}
	return n
}
