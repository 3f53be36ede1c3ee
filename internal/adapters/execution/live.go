package execution

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/arbot/internal/adapters/polymarket"
	"github.com/alejandrodnm/arbot/internal/domain"
	"github.com/alejandrodnm/arbot/internal/ports"
)

// orderPoster es el subconjunto de polymarket.Client que usa Live.
type orderPoster interface {
	PostOrder(ctx context.Context, order polymarket.OrderRequest) (polymarket.OrderResponse, error)
}

// Live envía cada pata del hedge al CLOB. Si cualquier pata falla, el envío
// completo se reporta como fallido; las patas ya enviadas quedan registradas
// en el mensaje para reconciliación manual.
type Live struct {
	client orderPoster
}

// NewLive crea el executor real sobre el client dado.
func NewLive(client orderPoster) *Live {
	return &Live{client: client}
}

// SubmitOrders envía las patas en orden. El tamaño en USD se reparte por
// pata al precio cotizado.
func (l *Live) SubmitOrders(ctx context.Context, legs []ports.OrderLeg, sizeUSD float64, _ domain.ExecutionMode) (ports.SubmitResult, error) {
	if len(legs) == 0 {
		return ports.SubmitResult{}, fmt.Errorf("execution.SubmitOrders: no legs")
	}

	var placed []string
	for _, leg := range legs {
		size := sizeUSD
		if leg.Price > 0 {
			size = sizeUSD / leg.Price
		}
		resp, err := l.client.PostOrder(ctx, polymarket.OrderRequest{
			TokenID: leg.TokenID,
			Price:   leg.Price,
			Size:    size,
			Side:    leg.Side,
		})
		if err != nil {
			return ports.SubmitResult{
				Success: false,
				Message: fmt.Sprintf("leg %s failed after %d placed: %v", leg.TokenID, len(placed), err),
			}, fmt.Errorf("execution.SubmitOrders: %w", err)
		}
		if !resp.Success {
			return ports.SubmitResult{
				Success: false,
				Message: fmt.Sprintf("leg %s rejected after %d placed: %s", leg.TokenID, len(placed), resp.Error),
			}, nil
		}
		placed = append(placed, resp.OrderID)
	}

	slog.Info("live orders placed", "legs", len(placed), "size_usd", sizeUSD)
	return ports.SubmitResult{
		Success: true,
		Message: fmt.Sprintf("placed %d legs", len(placed)),
	}, nil
}
