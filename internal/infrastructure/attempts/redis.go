package attempts

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrDNightCore/warden/internal/application/ports"
)

// RedisStore keeps attempt counters in Redis so every instance behind a load
// balancer sees the same budget. The window TTL is owned by Redis: the first
// increment for a key sets it, later increments leave it alone.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		// A crash between INCR and EXPIRE leaves an immortal counter; give
		// it a window so it cannot block a key forever.
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = window
	}
	return count, ttl, nil
}

var _ ports.AttemptStore = (*RedisStore)(nil)
