package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateExecution(t *testing.T) {
	tests := []struct {
		name       string
		profit     float64
		liquidity  float64
		wantPassed bool
		wantReason ValidationReason
	}{
		{"both thresholds met", 10, 500, true, ReasonOK},
		{"profit below margin", 4.99, 500, false, ReasonProfitBelowMargin},
		{"liquidity below min", 10, 99, false, ReasonLiquidityBelowMin},
		{"margin checked first", 1, 1, false, ReasonProfitBelowMargin},
		{"exact thresholds pass", 5, 100, true, ReasonOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateExecution(tt.profit, tt.liquidity, 5, 100)
			assert.Equal(t, tt.wantPassed, got.Passed)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

func TestSizeFromDepth(t *testing.T) {
	assert.InDelta(t, 200.0, SizeFromDepth([]float64{1000, 400}, 50, 0), 1e-9)
	assert.InDelta(t, 150.0, SizeFromDepth([]float64{1000, 400}, 50, 150), 1e-9, "el tope absoluto recorta")
	assert.InDelta(t, 200.0, SizeFromDepth([]float64{1000, 400}, 50, -1), 1e-9, "tope <= 0 desactivado")
	assert.Equal(t, 0.0, SizeFromDepth(nil, 50, 0))
	assert.Equal(t, 0.0, SizeFromDepth([]float64{-100, 400}, 50, 0), "nunca negativo")
}

func TestNormalizeCombinations(t *testing.T) {
	raw := []OutcomeCombination{
		{MarketA: "YES", MarketB: " no "},
		{MarketA: "affirmative", MarketB: "negative"}, // duplicado tras canonicalizar
		{MarketA: "true", MarketB: "false"},           // también duplicado
		{MarketA: "maybe", MarketB: "no"},             // etiqueta desconocida
		{MarketA: "no", MarketB: "no"},
	}

	got := NormalizeCombinations(raw)
	assert.Equal(t, []OutcomeCombination{
		{MarketA: OutcomeAffirmative, MarketB: OutcomeNegative},
		{MarketA: OutcomeNegative, MarketB: OutcomeNegative},
	}, got)
}

func TestIsDependent(t *testing.T) {
	assert.True(t, IsDependent(nil, 2, 2), "lista vacía es dependiente")
	assert.True(t, IsDependent(CrossProduct()[:3], 2, 2))
	assert.False(t, IsDependent(CrossProduct(), 2, 2))
}

func TestEventPairs(t *testing.T) {
	e := Event{ID: "evt", Markets: []Market{
		{ConditionID: "a"}, {ConditionID: "b"}, {ConditionID: "c"},
	}}

	pairs := e.Pairs()
	assert.Len(t, pairs, 3)
	assert.Equal(t, "a", pairs[0].A.ConditionID)
	assert.Equal(t, "b", pairs[0].B.ConditionID)
	assert.Equal(t, "evt", pairs[2].EventID)
}

func TestOpportunitySummaryTruncates(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'q'
	}
	o := Opportunity{Pair: MarketPair{A: Market{Question: string(long)}}}
	assert.Len(t, o.Summary(), 80)
}

func TestQueueStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
}

func TestMetricsRatesUseTrailingWindow(t *testing.T) {
	now := time.Now()
	var m Metrics
	m.AddOpportunity(now.Add(-2 * time.Minute))
	m.AddOpportunity(now.Add(-30 * time.Second))
	m.AddOpportunity(now.Add(-5 * time.Second))

	assert.Equal(t, int64(3), m.OpportunitiesCount)
	assert.Equal(t, 2, m.OpportunitiesPerMin(now))
}

func TestModeStateEffectiveMode(t *testing.T) {
	cases := []struct {
		name  string
		state ModeState
		want  ExecutionMode
	}{
		{"paper", ModeState{Mode: ModePaper}, ModePaper},
		{"live", ModeState{Mode: ModeLive}, ModeLive},
		{"live con dry-run fuerza paper", ModeState{Mode: ModeLive, DryRun: true}, ModePaper},
		{"default es paper", DefaultModeState(), ModePaper},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.state.EffectiveMode())
		})
	}
}
