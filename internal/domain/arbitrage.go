package domain

import "time"

// arbEpsilon es el margen numérico bajo el cual un costo < 1 cuenta como
// arbitraje real y no como ruido de punto flotante.
const arbEpsilon = 0.001

// ArbitrageResult es la salida del solver para un par de mercados.
//
// Invariante: HasArbitrage ⇔ MinCost < 1-arbEpsilon.
type ArbitrageResult struct {
	HasArbitrage bool
	MinCost      float64 // costo mínimo de garantizar payoff ≥ 1; siempre ≥ 0
}

// NewArbitrageResult construye el resultado manteniendo el invariante
// HasArbitrage ⇔ MinCost < 1-ε.
func NewArbitrageResult(minCost float64) ArbitrageResult {
	if minCost < 0 {
		minCost = 0
	}
	return ArbitrageResult{
		HasArbitrage: minCost < 1-arbEpsilon,
		MinCost:      minCost,
	}
}

// NoArbitrage es el resultado fail-safe: infeasible, timeout o solver caído
// se reportan igual que "no hay arbitraje".
func NoArbitrage() ArbitrageResult {
	return ArbitrageResult{HasArbitrage: false, MinCost: 1.0}
}

// ProfitPerUnit devuelve la ganancia garantizada por unidad de payoff.
func (r ArbitrageResult) ProfitPerUnit() float64 {
	if !r.HasArbitrage {
		return 0
	}
	return 1 - r.MinCost
}

// Opportunity es un arbitraje detectado: par + resultado + ganancia estimada
// en USD al tamaño de referencia. Solo se construye si HasArbitrage.
type Opportunity struct {
	Pair         MarketPair           `json:"pair"`
	Result       ArbitrageResult      `json:"result"`
	Combinations []OutcomeCombination `json:"combinations"`
	Dependent    bool                 `json:"dependent"`
	ProfitUSD    float64              `json:"profit_usd"`
	DetectedAt   time.Time            `json:"detected_at"`
}

// Summary devuelve una descripción corta y truncada para logs y audit trail.
func (o Opportunity) Summary() string {
	q := o.Pair.A.Question
	if len(q) > 80 {
		q = q[:80]
	}
	return q
}
