// Package execution implementa el envío de órdenes en sus dos modos:
// paper (simulado, sin red) y live (CLOB real). El selector despacha según
// el modo vigente en cada envío.
package execution

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/arbot/internal/domain"
	"github.com/alejandrodnm/arbot/internal/ports"
)

// Paper simula el fill de todas las patas al precio cotizado.
// Nunca realiza I/O de red.
type Paper struct{}

// NewPaper crea el executor simulado.
func NewPaper() *Paper {
	return &Paper{}
}

// SubmitOrders registra el fill simulado y devuelve éxito inmediato.
func (p *Paper) SubmitOrders(_ context.Context, legs []ports.OrderLeg, sizeUSD float64, _ domain.ExecutionMode) (ports.SubmitResult, error) {
	if len(legs) == 0 {
		return ports.SubmitResult{}, fmt.Errorf("execution.SubmitOrders: no legs")
	}

	cost := 0.0
	for _, leg := range legs {
		cost += leg.Price
	}
	slog.Info("paper fill", "legs", len(legs), "size_usd", sizeUSD, "unit_cost", cost)
	return ports.SubmitResult{
		Success: true,
		Message: fmt.Sprintf("paper fill: %d legs at unit cost %.4f", len(legs), cost),
	}, nil
}
