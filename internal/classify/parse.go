package classify

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/alejandrodnm/arbot/internal/domain"
)

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	anyFenceRe  = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// ParseCombinations extrae un JSON array de combinaciones del texto crudo
// del clasificador, tolerando fences de markdown alrededor. El esquema es
// estricto: el top-level debe ser un array de objetos; cualquier otra forma
// se rechaza determinísticamente.
func ParseCombinations(raw string) ([]domain.OutcomeCombination, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fmt.Errorf("classify.ParseCombinations: empty response")
	}

	text = stripFences(text)

	var combos []domain.OutcomeCombination
	if err := json.Unmarshal([]byte(text), &combos); err != nil {
		return nil, fmt.Errorf("classify.ParseCombinations: not a JSON array of combinations: %w", err)
	}
	return combos, nil
}

// stripFences quita un bloque ```json ... ``` o ``` ... ``` si envuelve
// la respuesta.
func stripFences(text string) string {
	if strings.Contains(text, "```json") {
		if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	if strings.Contains(text, "```") {
		if m := anyFenceRe.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return text
}
