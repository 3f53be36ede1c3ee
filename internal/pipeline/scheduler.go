package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/arbot/internal/domain"
)

// Run ejecuta el loop del pipeline hasta que el contexto se cancele.
// Las invocaciones son estrictamente secuenciales: un tick que llega con una
// invocación en curso espera al siguiente. Si once está activo, ejecuta una
// sola invocación y devuelve su estado.
func (r *Router) Run(ctx context.Context, interval time.Duration, once bool) error {
	slog.Info("pipeline starting", "interval", interval, "once", once)

	run := r.RunOnce(ctx)
	if once {
		if run.Status == domain.RunError {
			return fmt.Errorf("pipeline.Run: %s", run.Message)
		}
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("pipeline stopped")
			return nil
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}
