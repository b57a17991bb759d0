package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu     sync.Mutex
	now    time.Time
	counts map[string]int64
	expiry map[string]time.Time
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		counts: make(map[string]int64),
		expiry: make(map[string]time.Time),
	}
}

func (f *fakeStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	exp, ok := f.expiry[key]
	if !ok || !f.now.Before(exp) {
		f.counts[key] = 0
		exp = f.now.Add(window)
		f.expiry[key] = exp
	}
	f.counts[key]++
	return f.counts[key], exp.Sub(f.now), nil
}

func (f *fakeStore) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeStore) count(key string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[key]
}

func TestCheckAndRecordWithinBudget(t *testing.T) {
	store := newFakeStore()
	l := NewLimiter(store, map[Action]Rule{ActionLogin: {Limit: 3, Window: time.Minute}}, false, zerolog.Nop())

	for i := int64(1); i <= 3; i++ {
		d, err := l.CheckAndRecord(context.Background(), ActionLogin, "alice")
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.Equal(t, 3-i, d.Remaining)
	}

	d, err := l.CheckAndRecord(context.Background(), ActionLogin, "alice")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Greater(t, d.RetryAfter, time.Duration(0))
}

func TestCheckAndRecordCountsBlockedAttempts(t *testing.T) {
	store := newFakeStore()
	l := NewLimiter(store, map[Action]Rule{ActionLogin: {Limit: 2, Window: time.Minute}}, false, zerolog.Nop())

	for i := 0; i < 6; i++ {
		_, err := l.CheckAndRecord(context.Background(), ActionLogin, "alice")
		require.NoError(t, err)
	}
	require.Equal(t, int64(6), store.count("rate_limit:login:alice"))
}

func TestCheckAndRecordWindowExpiry(t *testing.T) {
	store := newFakeStore()
	l := NewLimiter(store, map[Action]Rule{ActionLogin: {Limit: 1, Window: time.Minute}}, false, zerolog.Nop())

	d, err := l.CheckAndRecord(context.Background(), ActionLogin, "alice")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = l.CheckAndRecord(context.Background(), ActionLogin, "alice")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	store.advance(61 * time.Second)

	d, err = l.CheckAndRecord(context.Background(), ActionLogin, "alice")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestCheckAndRecordKeysAreIndependent(t *testing.T) {
	store := newFakeStore()
	l := NewLimiter(store, DefaultRules(), false, zerolog.Nop())

	for i := 0; i < 5; i++ {
		d, err := l.CheckAndRecord(context.Background(), ActionLogin, "alice")
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
	d, err := l.CheckAndRecord(context.Background(), ActionLogin, "alice")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	// Same identifier under a different action, and a different identifier
	// under the same action, are untouched.
	d, err = l.CheckAndRecord(context.Background(), ActionRegister, "alice")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = l.CheckAndRecord(context.Background(), ActionLogin, "bob")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestCheckAndRecordFailOpen(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	l := NewLimiter(store, DefaultRules(), false, zerolog.Nop())

	d, err := l.CheckAndRecord(context.Background(), ActionLogin, "alice")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestCheckAndRecordFailClosed(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	l := NewLimiter(store, DefaultRules(), true, zerolog.Nop())

	d, err := l.CheckAndRecord(context.Background(), ActionLogin, "alice")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 5*time.Minute, d.RetryAfter)
}

func TestCheckAndRecordInputValidation(t *testing.T) {
	l := NewLimiter(newFakeStore(), DefaultRules(), false, zerolog.Nop())

	_, err := l.CheckAndRecord(context.Background(), "", "alice")
	require.ErrorIs(t, err, ErrEmptyAction)

	_, err = l.CheckAndRecord(context.Background(), ActionLogin, "")
	require.ErrorIs(t, err, ErrEmptyIdentifier)

	_, err = l.CheckAndRecord(context.Background(), Action("delete"), "alice")
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestCheckAndRecordConcurrentAttemptsAllCounted(t *testing.T) {
	store := newFakeStore()
	l := NewLimiter(store, map[Action]Rule{ActionLogin: {Limit: 100, Window: time.Minute}}, false, zerolog.Nop())

	const workers = 40
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := l.CheckAndRecord(context.Background(), ActionLogin, "alice")
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Equal(t, int64(workers), store.count("rate_limit:login:alice"))
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	require.Equal(t, Rule{Limit: 5, Window: 5 * time.Minute}, rules[ActionLogin])
	require.Equal(t, Rule{Limit: 3, Window: 5 * time.Minute}, rules[ActionRegister])
}
