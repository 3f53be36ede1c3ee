package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/arbot/internal/adapters/storage"
	"github.com/alejandrodnm/arbot/internal/domain"
)

func makeOpportunity(question string) domain.Opportunity {
	return domain.Opportunity{
		Pair: domain.MarketPair{
			EventID: "evt-1",
			A:       domain.Market{ConditionID: "0xaaa", Question: question, PriceYes: 0.48, PriceNo: 0.52, LiquidityUSD: 1500},
			B:       domain.Market{ConditionID: "0xbbb", Question: "Will Y happen?", PriceYes: 0.32, PriceNo: 0.68, LiquidityUSD: 900},
		},
		Result:     domain.NewArbitrageResult(0.80),
		ProfitUSD:  20,
		DetectedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func openSQLite(t *testing.T) *storage.SQLite {
	t.Helper()
	db, err := storage.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLite_QueueIDsStrictlyIncreasing(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	id1, err := db.Add(ctx, makeOpportunity("first"))
	require.NoError(t, err)
	id2, err := db.Add(ctx, makeOpportunity("second"))
	require.NoError(t, err)
	id3, err := db.Add(ctx, makeOpportunity("third"))
	require.NoError(t, err)

	assert.Less(t, id1, id2)
	assert.Less(t, id2, id3)
}

func TestSQLite_QueueGetAndPayloadRoundTrip(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	opp := makeOpportunity("Will X happen?")
	id, err := db.Add(ctx, opp)
	require.NoError(t, err)

	item, err := db.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, item.Status)
	assert.Equal(t, "Will X happen?", item.Opportunity.Pair.A.Question)
	assert.InDelta(t, 0.80, item.Opportunity.Result.MinCost, 1e-9)
	assert.True(t, item.Opportunity.Result.HasArbitrage)
}

func TestSQLite_QueueGet_Unknown(t *testing.T) {
	db := openSQLite(t)
	_, err := db.Get(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLite_TransitionOnlyFromExpectedStatus(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	id, err := db.Add(ctx, makeOpportunity("q"))
	require.NoError(t, err)

	ok, err := db.Transition(ctx, id, domain.StatusPending, domain.StatusRejected)
	require.NoError(t, err)
	assert.True(t, ok)

	// Un estado terminal nunca se sobrescribe.
	ok, err = db.Transition(ctx, id, domain.StatusPending, domain.StatusApproved)
	require.NoError(t, err)
	assert.False(t, ok)

	item, err := db.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, item.Status)
}

func TestSQLite_Pending(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	id1, _ := db.Add(ctx, makeOpportunity("a"))
	db.Add(ctx, makeOpportunity("b"))

	_, err := db.Transition(ctx, id1, domain.StatusPending, domain.StatusApproved)
	require.NoError(t, err)

	pending, err := db.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].Opportunity.Pair.A.Question)
}

func TestSQLite_MetricsRoundTrip(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	m := domain.Metrics{}
	m.AddOpportunity(now)
	m.AddExecution(true, 12.5, 80, now)
	m.AddExecution(false, -3.0, 120, now)

	require.NoError(t, db.SaveMetrics(ctx, m))

	loaded, err := db.LoadMetrics(ctx)
	require.NoError(t, err)

	// Ley de round-trip: los contadores se reproducen idénticos.
	assert.Equal(t, m.OpportunitiesCount, loaded.OpportunitiesCount)
	assert.Equal(t, m.ExecutionsCount, loaded.ExecutionsCount)
	assert.Equal(t, m.ExecutionsSuccess, loaded.ExecutionsSuccess)
	assert.InDelta(t, m.TotalPnL, loaded.TotalPnL, 1e-9)
	assert.InDelta(t, m.PeakPnL, loaded.PeakPnL, 1e-9)
	assert.InDelta(t, m.AvgLatencyMs, loaded.AvgLatencyMs, 1e-9)
	assert.Len(t, loaded.ExecutionTimes, 2)
}

func TestSQLite_LoadMetrics_Empty(t *testing.T) {
	db := openSQLite(t)
	m, err := db.LoadMetrics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, m.OpportunitiesCount)
}

func TestSQLite_BoundedHistories(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	for i := 0; i < 110; i++ {
		require.NoError(t, db.AppendOpsEvent(ctx, domain.OpsEvent{
			At:   time.Now().UTC(),
			Type: "opportunity",
		}))
	}

	events, err := db.OpsEvents(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, events, 100, "el log de eventos se recorta al tope")
}

func TestSQLite_SamplesLimitAndOrder(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, db.AppendSample(ctx, domain.MetricsSample{
			OpportunitiesCount: int64(i),
		}))
	}

	samples, err := db.Samples(ctx, 3)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	// Orden de inserción, cortado a los últimos 3.
	assert.Equal(t, int64(2), samples[0].OpportunitiesCount)
	assert.Equal(t, int64(4), samples[2].OpportunitiesCount)
}

func TestSQLite_ModeRoundTrip(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	_, found, err := db.LoadMode(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	state := domain.ModeState{Mode: domain.ModeLive, Trigger: domain.TriggerAuto, DryRun: false}
	require.NoError(t, db.SaveMode(ctx, state))

	loaded, found, err := db.LoadMode(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, state, loaded)
}

func TestSQLite_RunUpsert(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	run := domain.RunSummary{
		ID:        "run-1",
		StartedAt: time.Now().UTC().Truncate(time.Second),
		Status:    domain.RunRunning,
	}
	require.NoError(t, db.SaveRun(ctx, run))

	run.Status = domain.RunOK
	run.PairsChecked = 7
	require.NoError(t, db.SaveRun(ctx, run))

	runs, err := db.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunOK, runs[0].Status)
	assert.Equal(t, 7, runs[0].PairsChecked)
}
