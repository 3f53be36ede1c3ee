// Package metrics mantiene los contadores operacionales del pipeline y las
// reglas de alerta sobre ellos. Cada mutación persiste el snapshot completo
// y alimenta los historiales acotados para graficar después.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/arbot/internal/domain"
	"github.com/alejandrodnm/arbot/internal/ports"
)

// Aggregator acumula métricas sobre un MetricsStore.
type Aggregator struct {
	store ports.MetricsStore
	now   func() time.Time
}

// NewAggregator crea un Aggregator sobre el store dado.
func NewAggregator(store ports.MetricsStore) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// RecordOpportunity registra una señal cruda del solver, antes de validación.
// Así la fuerza de señal bruta es distinguible de la señal accionable.
func (a *Aggregator) RecordOpportunity(ctx context.Context, detail map[string]string) error {
	m := a.load(ctx)
	now := a.now().UTC()
	m.AddOpportunity(now)

	if err := a.store.SaveMetrics(ctx, m); err != nil {
		return fmt.Errorf("metrics.RecordOpportunity: save: %w", err)
	}
	a.appendHistories(ctx, m, domain.OpsEvent{At: now, Type: "opportunity", Detail: detail})
	return nil
}

// RecordExecution registra un intento de ejecución con resultado, PnL
// realizado y latencia.
func (a *Aggregator) RecordExecution(ctx context.Context, success bool, pnlUSD, latencyMs float64) error {
	m := a.load(ctx)
	now := a.now().UTC()
	m.AddExecution(success, pnlUSD, latencyMs, now)

	if err := a.store.SaveMetrics(ctx, m); err != nil {
		return fmt.Errorf("metrics.RecordExecution: save: %w", err)
	}
	a.appendHistories(ctx, m, domain.OpsEvent{At: now, Type: "execution", Detail: map[string]string{
		"success": fmt.Sprintf("%t", success),
		"pnl_usd": fmt.Sprintf("%.4f", pnlUSD),
	}})
	return nil
}

// Current devuelve el snapshot actual.
func (a *Aggregator) Current(ctx context.Context) domain.Metrics {
	return a.load(ctx)
}

// History devuelve hasta limit snapshots del historial para gráficos.
func (a *Aggregator) History(ctx context.Context, limit int) ([]domain.MetricsSample, error) {
	return a.store.Samples(ctx, limit)
}

// Events devuelve hasta limit eventos del log operacional.
func (a *Aggregator) Events(ctx context.Context, limit int) ([]domain.OpsEvent, error) {
	return a.store.OpsEvents(ctx, limit)
}

// load recupera el snapshot; un store ilegible se reinicializa al estado
// por defecto y se registra, nunca es fatal.
func (a *Aggregator) load(ctx context.Context) domain.Metrics {
	m, err := a.store.LoadMetrics(ctx)
	if err != nil {
		slog.Warn("metrics store unreadable, reinitializing", "err", err)
		return domain.Metrics{}
	}
	return m
}

// appendHistories alimenta los historiales acotados. Best-effort: un fallo
// aquí no invalida la mutación principal ya persistida.
func (a *Aggregator) appendHistories(ctx context.Context, m domain.Metrics, ev domain.OpsEvent) {
	sample := domain.MetricsSample{
		At:                 m.UpdatedAt,
		OpportunitiesCount: m.OpportunitiesCount,
		ExecutionsCount:    m.ExecutionsCount,
		TotalPnL:           m.TotalPnL,
		DrawdownPct:        m.DrawdownPct(),
		AvgLatencyMs:       m.AvgLatencyMs,
	}
	if err := a.store.AppendSample(ctx, sample); err != nil {
		slog.Warn("metrics history append failed", "err", err)
	}
	if err := a.store.AppendOpsEvent(ctx, ev); err != nil {
		slog.Warn("ops event append failed", "err", err)
	}
}
