package attempts

import (
	"context"
	"sync"
	"time"

	"github.com/MrDNightCore/warden/internal/application/ports"
)

type counter struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore is a process-local AttemptStore for single-instance
// deployments. For multi-instance, use RedisStore so all replicas share one
// budget.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]*counter
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*counter), now: time.Now}
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	c, ok := s.data[key]
	if !ok || !now.Before(c.expiresAt) {
		c = &counter{expiresAt: now.Add(window)}
		s.data[key] = c
	}
	c.count++
	return c.count, c.expiresAt.Sub(now), nil
}

// Janitor drops expired counters every interval until ctx is done. Expired
// entries are already invisible to Incr; sweeping only caps memory growth.
func (s *MemoryStore) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, c := range s.data {
		if !now.Before(c.expiresAt) {
			delete(s.data, k)
		}
	}
}

var _ ports.AttemptStore = (*MemoryStore)(nil)
