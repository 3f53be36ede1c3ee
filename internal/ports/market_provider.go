package ports

import (
	"context"

	"github.com/alejandrodnm/arbot/internal/domain"
)

// EventProvider entrega los eventos con sus mercados (precios + liquidez).
// La obtención de datos crudos de mercado es un colaborador externo; el core
// solo consume esta interfaz.
type EventProvider interface {
	// FetchEvents devuelve hasta maxEvents eventos con al menos dos
	// mercados activos cada uno.
	FetchEvents(ctx context.Context, maxEvents int) ([]domain.Event, error)
}
