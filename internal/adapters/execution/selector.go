package execution

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/arbot/internal/domain"
	"github.com/alejandrodnm/arbot/internal/ports"
)

// Selector despacha cada envío al executor del modo vigente. En paper jamás
// se toca el executor real. live sin executor configurado (sin credenciales)
// es un error de envío, no un crash.
type Selector struct {
	paper ports.OrderExecutor
	live  ports.OrderExecutor
}

// NewSelector crea el despachador. live puede ser nil.
func NewSelector(paper, live ports.OrderExecutor) *Selector {
	return &Selector{paper: paper, live: live}
}

func (s *Selector) SubmitOrders(ctx context.Context, legs []ports.OrderLeg, sizeUSD float64, mode domain.ExecutionMode) (ports.SubmitResult, error) {
	switch mode {
	case domain.ModeLive:
		if s.live == nil {
			return ports.SubmitResult{}, fmt.Errorf("execution.SubmitOrders: live mode not configured")
		}
		return s.live.SubmitOrders(ctx, legs, sizeUSD, mode)
	default:
		return s.paper.SubmitOrders(ctx, legs, sizeUSD, mode)
	}
}
