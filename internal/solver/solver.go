// Package solver implementa el chequeo de arbitraje como un programa lineal:
// el costo mínimo de un hedge que garantiza payoff ≥ 1 bajo cada combinación
// de outcomes realizable. Si ese costo es < 1, hay arbitraje.
//
// El solver es fail-safe: infeasibilidad, timeout o cualquier fallo interno
// se reportan como "no hay arbitraje", nunca como error.
package solver

import (
	"context"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/alejandrodnm/arbot/internal/domain"
)

// DefaultTimeout es el presupuesto de tiempo por defecto para una resolución.
const DefaultTimeout = 100 * time.Millisecond

// Solver resuelve el LP de arbitraje con un presupuesto de tiempo acotado.
type Solver struct {
	timeout time.Duration
}

// New crea un Solver. Un timeout ≤ 0 usa DefaultTimeout.
func New(timeout time.Duration) *Solver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Solver{timeout: timeout}
}

// Check evalúa un par de mercados binarios contra sus combinaciones válidas.
// Lista vacía ⇒ no hay arbitraje: ningún payoff puede garantizarse.
func (s *Solver) Check(ctx context.Context, pair domain.MarketPair, combos []domain.OutcomeCombination) domain.ArbitrageResult {
	res, _ := s.Hedge(ctx, pair, combos)
	return res
}

// Hedge devuelve además los pesos óptimos por átomo (A-aff, A-neg, B-aff,
// B-neg), con los que se construyen las patas del hedge. Los pesos son nil
// cuando no hay arbitraje.
func (s *Solver) Hedge(ctx context.Context, pair domain.MarketPair, combos []domain.OutcomeCombination) (domain.ArbitrageResult, []float64) {
	if len(combos) == 0 {
		return domain.NoArbitrage(), nil
	}

	// Un átomo por (mercado, outcome): A-aff, A-neg, B-aff, B-neg.
	support := make([][]int, len(combos))
	for i, c := range combos {
		row := make([]int, 0, 2)
		if c.MarketA == domain.OutcomeAffirmative {
			row = append(row, 0)
		} else {
			row = append(row, 1)
		}
		if c.MarketB == domain.OutcomeAffirmative {
			row = append(row, 2)
		} else {
			row = append(row, 3)
		}
		support[i] = row
	}

	return s.minHedge(ctx, pair.Prices(), support)
}

// MinHedgeCost resuelve el LP genérico: variables x_k ≥ 0, una por átomo
// (mercado, outcome); minimizar Σ price_k·x_k sujeto a que, para cada
// combinación válida, la suma de x_k sobre los átomos verdaderos bajo ella
// sea ≥ 1. Generaliza más allá de dos mercados binarios: support[i] lista
// los índices de átomos verdaderos bajo la combinación i.
func (s *Solver) MinHedgeCost(ctx context.Context, prices []float64, support [][]int) domain.ArbitrageResult {
	res, _ := s.minHedge(ctx, prices, support)
	return res
}

func (s *Solver) minHedge(ctx context.Context, prices []float64, support [][]int) (domain.ArbitrageResult, []float64) {
	if len(prices) == 0 || len(support) == 0 {
		return domain.NoArbitrage(), nil
	}

	type outcome struct {
		cost    float64
		weights []float64
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		cost, weights, err := solveLP(prices, support)
		done <- outcome{cost: cost, weights: weights, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return domain.NoArbitrage(), nil
	case <-timer.C:
		slog.Debug("solver timeout", "budget", s.timeout)
		return domain.NoArbitrage(), nil
	case out := <-done:
		if out.err != nil {
			// Infeasible, unbounded o singular: equivalente a no-arbitraje.
			slog.Debug("solver returned no solution", "err", out.err)
			return domain.NoArbitrage(), nil
		}
		res := domain.NewArbitrageResult(out.cost)
		if !res.HasArbitrage {
			return res, nil
		}
		return res, out.weights
	}
}

// solveLP convierte las restricciones ≥ a forma estándar con variables de
// holgura y resuelve con el simplex de gonum. Devuelve el costo óptimo y los
// pesos x (sin las variables de holgura).
//
//	min [prices, 0]·[x, s]  s.t.  S·x - s = 1,  x ≥ 0, s ≥ 0
func solveLP(prices []float64, support [][]int) (float64, []float64, error) {
	n := len(prices)
	m := len(support)

	c := make([]float64, n+m)
	copy(c, prices)

	a := mat.NewDense(m, n+m, nil)
	b := make([]float64, m)
	for i, row := range support {
		for _, k := range row {
			if k >= 0 && k < n {
				a.Set(i, k, 1)
			}
		}
		a.Set(i, n+i, -1) // variable de holgura de la fila i
		b[i] = 1
	}

	cost, x, err := lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		return 0, nil, err
	}
	return cost, x[:n], nil
}
