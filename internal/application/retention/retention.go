package retention

import (
	"context"
	"time"

	"github.com/MrDNightCore/warden/internal/application/ports"
)

// RunPruneSecurityEvents deletes persisted security events recorded before
// (now - retainDays). Call periodically (e.g. daily). retainDays 0 = no-op,
// events are kept forever.
func RunPruneSecurityEvents(ctx context.Context, pruner ports.EventPruner, retainDays int) (pruned int64, err error) {
	if retainDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-time.Duration(retainDays) * 24 * time.Hour)
	return pruner.PruneEventsBefore(ctx, cutoff)
}
