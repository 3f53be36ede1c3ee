package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/arbot/internal/domain"
	"github.com/alejandrodnm/arbot/internal/ports"
)

// stubCompleter devuelve una respuesta fija o un error.
type stubCompleter struct {
	response string
	err      error
	lastReq  ports.CompletionRequest
}

func (s *stubCompleter) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	s.lastReq = req
	return s.response, s.err
}

func makePair() domain.MarketPair {
	return domain.MarketPair{
		A: domain.Market{Question: "Will the incumbent win the election?"},
		B: domain.Market{Question: "Will turnout exceed 60%?"},
	}
}

func TestClassify_ValidResponse(t *testing.T) {
	stub := &stubCompleter{response: `[
		{"market_a_outcome": "affirmative", "market_b_outcome": "affirmative"},
		{"market_a_outcome": "negative", "market_b_outcome": "affirmative"},
		{"market_a_outcome": "negative", "market_b_outcome": "negative"}
	]`}

	c := New(stub, 0.2, 512)
	res := c.Classify(context.Background(), makePair())

	assert.Equal(t, SourceClassifier, res.Source)
	require.Len(t, res.Combinations, 3)
	assert.True(t, res.Dependent, "3 de 4 combinaciones ⇒ los mercados se restringen")
	assert.Contains(t, stub.lastReq.Prompt, "Will the incumbent win the election?")
	assert.Equal(t, 512, stub.lastReq.MaxOutputTokens)
}

func TestClassify_MarkdownFencedResponse(t *testing.T) {
	stub := &stubCompleter{response: "```json\n[{\"market_a_outcome\": \"yes\", \"market_b_outcome\": \"no\"}]\n```"}

	c := New(stub, 0.2, 0)
	res := c.Classify(context.Background(), makePair())

	assert.Equal(t, SourceClassifier, res.Source)
	require.Len(t, res.Combinations, 1)
	// yes/no se canonicalizan a affirmative/negative
	assert.Equal(t, domain.OutcomeAffirmative, res.Combinations[0].MarketA)
	assert.Equal(t, domain.OutcomeNegative, res.Combinations[0].MarketB)
}

func TestClassify_CompleterError_FallsBackToCrossProduct(t *testing.T) {
	stub := &stubCompleter{err: errors.New("upstream 503")}

	c := New(stub, 0.2, 512)
	res := c.Classify(context.Background(), makePair())

	assert.Equal(t, SourceFallbackUnavailable, res.Source)
	assert.Len(t, res.Combinations, 4)
	assert.False(t, res.Dependent)
}

func TestClassify_GarbageResponse_FallsBack(t *testing.T) {
	stub := &stubCompleter{response: "I believe these markets are correlated because..."}

	c := New(stub, 0.2, 512)
	res := c.Classify(context.Background(), makePair())

	assert.Equal(t, SourceFallbackUnparseable, res.Source)
	assert.Len(t, res.Combinations, 4)
}

func TestClassify_UnrecognizedLabelsDropped(t *testing.T) {
	// Etiquetas inventadas se descartan; si no queda nada, fallback.
	stub := &stubCompleter{response: `[{"market_a_outcome": "maybe", "market_b_outcome": "perhaps"}]`}

	c := New(stub, 0.2, 512)
	res := c.Classify(context.Background(), makePair())

	assert.Equal(t, SourceFallbackEmpty, res.Source)
	assert.Len(t, res.Combinations, 4)
}

func TestClassify_NilCompleter_FallsBack(t *testing.T) {
	c := New(nil, 0.2, 512)
	res := c.Classify(context.Background(), makePair())

	assert.Equal(t, SourceFallbackUnavailable, res.Source)
	assert.Len(t, res.Combinations, 4)
}

func TestParseCombinations_RejectsNonArray(t *testing.T) {
	_, err := ParseCombinations(`{"market_a_outcome": "yes"}`)
	assert.Error(t, err)

	_, err = ParseCombinations("")
	assert.Error(t, err)
}

func TestParseCombinations_PlainFence(t *testing.T) {
	out, err := ParseCombinations("```\n[{\"market_a_outcome\": \"affirmative\", \"market_b_outcome\": \"affirmative\"}]\n```")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestNormalizeCombinations_Dedupes(t *testing.T) {
	raw := []domain.OutcomeCombination{
		{MarketA: "Yes", MarketB: "No"},
		{MarketA: "affirmative", MarketB: "negative"},
	}
	out := domain.NormalizeCombinations(raw)
	assert.Len(t, out, 1)
}
