package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/arbot/internal/adapters/storage"
)

func TestAggregator_RecordOpportunity(t *testing.T) {
	store := storage.NewMemory()
	agg := NewAggregator(store)
	ctx := context.Background()

	require.NoError(t, agg.RecordOpportunity(ctx, map[string]string{"event": "evt-1"}))
	require.NoError(t, agg.RecordOpportunity(ctx, nil))

	m := agg.Current(ctx)
	assert.Equal(t, int64(2), m.OpportunitiesCount)
	assert.Len(t, m.OpportunityTimes, 2)
	assert.Equal(t, 2, m.OpportunitiesPerMin(time.Now()))
}

func TestAggregator_RecordExecution_PnLAndLatency(t *testing.T) {
	store := storage.NewMemory()
	agg := NewAggregator(store)
	ctx := context.Background()

	require.NoError(t, agg.RecordExecution(ctx, true, 10.0, 100))
	require.NoError(t, agg.RecordExecution(ctx, true, 5.0, 200))
	require.NoError(t, agg.RecordExecution(ctx, false, -8.0, 300))

	m := agg.Current(ctx)
	assert.Equal(t, int64(3), m.ExecutionsCount)
	assert.Equal(t, int64(2), m.ExecutionsSuccess)
	assert.InDelta(t, 7.0, m.TotalPnL, 1e-9)
	assert.InDelta(t, 15.0, m.PeakPnL, 1e-9, "peak es el máximo histórico del PnL")
	// Media incremental: (100+200+300)/3
	assert.InDelta(t, 200.0, m.AvgLatencyMs, 1e-9)
	assert.InDelta(t, 66.66, m.SuccessRate(), 0.01)
}

func TestAggregator_DrawdownFromPeak(t *testing.T) {
	store := storage.NewMemory()
	agg := NewAggregator(store)
	ctx := context.Background()

	require.NoError(t, agg.RecordExecution(ctx, true, 100.0, 50))
	require.NoError(t, agg.RecordExecution(ctx, false, -20.0, 50))

	m := agg.Current(ctx)
	assert.InDelta(t, 20.0, m.DrawdownPct(), 1e-9)
	assert.GreaterOrEqual(t, m.DrawdownPct(), 0.0)
	assert.LessOrEqual(t, m.DrawdownPct(), 100.0)
}

func TestAggregator_SuccessRateZeroWithoutExecutions(t *testing.T) {
	agg := NewAggregator(storage.NewMemory())
	m := agg.Current(context.Background())
	assert.Equal(t, 0.0, m.SuccessRate())
	assert.Equal(t, 0.0, m.DrawdownPct())
}

func TestAggregator_HistoriesFedOnEveryMutation(t *testing.T) {
	store := storage.NewMemory()
	agg := NewAggregator(store)
	ctx := context.Background()

	require.NoError(t, agg.RecordOpportunity(ctx, nil))
	require.NoError(t, agg.RecordExecution(ctx, true, 1.0, 10))

	samples, err := agg.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, samples, 2)

	events, err := agg.Events(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "opportunity", events[0].Type)
	assert.Equal(t, "execution", events[1].Type)
}

func TestMetrics_RingBounded(t *testing.T) {
	store := storage.NewMemory()
	agg := NewAggregator(store)
	ctx := context.Background()

	for i := 0; i < 130; i++ {
		require.NoError(t, agg.RecordOpportunity(ctx, nil))
	}

	m := agg.Current(ctx)
	assert.Equal(t, int64(130), m.OpportunitiesCount)
	assert.Len(t, m.OpportunityTimes, 120, "el anillo de timestamps está acotado")
}
