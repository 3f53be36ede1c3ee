package ports

import (
	"context"

	"github.com/alejandrodnm/arbot/internal/domain"
)

// OrderLeg es una pata del hedge: un token de un mercado a un precio.
type OrderLeg struct {
	TokenID string
	Price   float64
	Side    string // "BUY" | "SELL"
}

// SubmitResult es el resultado de enviar las órdenes de una oportunidad.
type SubmitResult struct {
	Success bool
	Message string
}

// OrderExecutor envía las órdenes de un hedge al exchange.
// En modo paper NUNCA debe contactar un exchange real.
type OrderExecutor interface {
	SubmitOrders(ctx context.Context, legs []OrderLeg, sizeUSD float64, mode domain.ExecutionMode) (SubmitResult, error)
}
