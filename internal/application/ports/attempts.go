package ports

import (
	"context"
	"time"
)

// AttemptStore is a keyed counter with fixed-window expiry, backing the rate
// limiter. The first increment of a key starts its window; later increments
// within the window bump the same counter; the entry expires on its own at
// window end (TTL owned by the store). Incr is atomic per key.
type AttemptStore interface {
	// Incr bumps the counter for key and returns the post-increment count
	// together with the time left until the entry expires.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, expiresIn time.Duration, err error)
}
