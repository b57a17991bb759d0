package ports

import (
	"context"
	"time"

	"github.com/MrDNightCore/warden/internal/domain"
)

// EventSink receives security events. Sinks are append-only; Write is
// best-effort and the caller swallows failures, so a broken sink can never
// fail the authentication path.
type EventSink interface {
	Write(ctx context.Context, event domain.SecurityEvent) error
}

// EventPruner deletes persisted events older than a cutoff. Kept separate
// from EventSink because most sinks (log lines, webhooks) cannot delete.
type EventPruner interface {
	PruneEventsBefore(ctx context.Context, cutoff time.Time) (pruned int64, err error)
}
