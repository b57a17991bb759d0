package retention

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	cutoff time.Time
	calls  int
}

func (f *fakePruner) PruneEventsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return 7, nil
}

func TestPruneComputesCutoff(t *testing.T) {
	pruner := &fakePruner{}
	before := time.Now().Add(-30 * 24 * time.Hour)

	pruned, err := RunPruneSecurityEvents(context.Background(), pruner, 30)
	require.NoError(t, err)
	require.Equal(t, int64(7), pruned)
	require.Equal(t, 1, pruner.calls)
	require.WithinDuration(t, before, pruner.cutoff, time.Minute)
}

func TestPruneDisabled(t *testing.T) {
	pruner := &fakePruner{}

	pruned, err := RunPruneSecurityEvents(context.Background(), pruner, 0)
	require.NoError(t, err)
	require.Zero(t, pruned)
	require.Zero(t, pruner.calls)
}
