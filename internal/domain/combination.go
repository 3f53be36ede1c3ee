package domain

import "strings"

// Outcome es la etiqueta canónica de un resultado de mercado.
type Outcome string

const (
	OutcomeAffirmative Outcome = "affirmative"
	OutcomeNegative    Outcome = "negative"
)

// OutcomeCombination es una realización conjunta posible de los dos mercados.
type OutcomeCombination struct {
	MarketA Outcome `json:"market_a_outcome"`
	MarketB Outcome `json:"market_b_outcome"`
}

// canonicalOutcome normaliza una etiqueta libre del clasificador a la forma
// canónica. Devuelve "" si la etiqueta no se reconoce.
func canonicalOutcome(raw string) Outcome {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "affirmative", "yes", "true":
		return OutcomeAffirmative
	case "negative", "no", "false":
		return OutcomeNegative
	default:
		return ""
	}
}

// NormalizeCombinations canonicaliza etiquetas y descarta entradas con
// etiquetas no reconocidas o duplicadas.
func NormalizeCombinations(raw []OutcomeCombination) []OutcomeCombination {
	seen := make(map[OutcomeCombination]bool, len(raw))
	var out []OutcomeCombination
	for _, c := range raw {
		a := canonicalOutcome(string(c.MarketA))
		b := canonicalOutcome(string(c.MarketB))
		if a == "" || b == "" {
			continue
		}
		norm := OutcomeCombination{MarketA: a, MarketB: b}
		if seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}

// CrossProduct devuelve las 4 combinaciones del supuesto conservador
// "mercados independientes". Es el fallback cuando el clasificador falla.
func CrossProduct() []OutcomeCombination {
	outcomes := []Outcome{OutcomeAffirmative, OutcomeNegative}
	out := make([]OutcomeCombination, 0, 4)
	for _, a := range outcomes {
		for _, b := range outcomes {
			out = append(out, OutcomeCombination{MarketA: a, MarketB: b})
		}
	}
	return out
}

// IsDependent devuelve true si los mercados se restringen mutuamente:
// hay menos combinaciones válidas que el producto cartesiano completo.
// Una lista vacía se trata como dependiente (nada es realizable).
func IsDependent(combinations []OutcomeCombination, nA, nB int) bool {
	if len(combinations) == 0 {
		return true
	}
	return len(combinations) < nA*nB
}
