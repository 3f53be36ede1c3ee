// Package classify convierte dos descripciones de mercado en el conjunto de
// combinaciones de outcomes conjuntamente posibles, usando un colaborador
// externo de clasificación de texto con fallback determinista.
//
// Nunca devuelve error al caller: cualquier fallo externo degrada al
// producto cartesiano completo (el supuesto conservador "mercados
// independientes"). El Source del resultado distingue por qué.
package classify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/arbot/internal/domain"
	"github.com/alejandrodnm/arbot/internal/ports"
)

// Source indica de dónde salieron las combinaciones del resultado.
type Source string

const (
	// SourceClassifier: el colaborador respondió y el parse produjo
	// combinaciones utilizables.
	SourceClassifier Source = "classifier"
	// SourceFallbackUnavailable: la llamada externa falló.
	SourceFallbackUnavailable Source = "fallback_unavailable"
	// SourceFallbackUnparseable: respondió pero el texto no contenía un
	// JSON array válido.
	SourceFallbackUnparseable Source = "fallback_unparseable"
	// SourceFallbackEmpty: respondió con un parse válido pero sin ninguna
	// combinación reconocible.
	SourceFallbackEmpty Source = "fallback_empty"
)

// Result son las combinaciones normalizadas más su procedencia.
type Result struct {
	Combinations []domain.OutcomeCombination
	Source       Source
	Dependent    bool
}

const promptTemplate = `Below are two prediction markets and their outcomes. List the valid outcome combinations (which outcomes can be TRUE together) as a JSON array.
Return only JSON, no extra explanation.

Market A: %s
  Outcomes: %v

Market B: %s
  Outcomes: %v

Example output format: [{"market_a_outcome": "affirmative", "market_b_outcome": "negative"}, ...]
`

// Classifier orquesta la llamada al colaborador y el fallback.
type Classifier struct {
	completer       ports.Completer
	temperature     float64
	maxOutputTokens int
}

// New crea un Classifier. completer puede ser nil: todo degrada al fallback.
func New(completer ports.Completer, temperature float64, maxOutputTokens int) *Classifier {
	if maxOutputTokens <= 0 {
		maxOutputTokens = 512
	}
	return &Classifier{
		completer:       completer,
		temperature:     temperature,
		maxOutputTokens: maxOutputTokens,
	}
}

// Classify devuelve las combinaciones conjuntamente posibles para el par.
// Todos los caminos de fallo degradan al producto cartesiano.
func (c *Classifier) Classify(ctx context.Context, pair domain.MarketPair) Result {
	labels := []domain.Outcome{domain.OutcomeAffirmative, domain.OutcomeNegative}

	if c.completer == nil {
		return fallback(SourceFallbackUnavailable)
	}

	prompt := fmt.Sprintf(promptTemplate, pair.A.Question, labels, pair.B.Question, labels)
	raw, err := c.completer.Complete(ctx, ports.CompletionRequest{
		Prompt:          prompt,
		Temperature:     c.temperature,
		MaxOutputTokens: c.maxOutputTokens,
	})
	if err != nil {
		slog.Warn("classifier call failed, assuming independent markets", "err", err)
		return fallback(SourceFallbackUnavailable)
	}

	parsed, err := ParseCombinations(raw)
	if err != nil {
		slog.Warn("classifier response unparseable, assuming independent markets", "err", err)
		return fallback(SourceFallbackUnparseable)
	}

	combos := domain.NormalizeCombinations(parsed)
	if len(combos) == 0 {
		return fallback(SourceFallbackEmpty)
	}

	return Result{
		Combinations: combos,
		Source:       SourceClassifier,
		Dependent:    domain.IsDependent(combos, 2, 2),
	}
}

// fallback devuelve el producto cartesiano completo: sin dependencia.
func fallback(src Source) Result {
	return Result{
		Combinations: domain.CrossProduct(),
		Source:       src,
		Dependent:    false,
	}
}
