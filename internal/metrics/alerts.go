package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/arbot/internal/domain"
	"github.com/alejandrodnm/arbot/internal/ports"
)

// Thresholds configura las reglas de alerta.
type Thresholds struct {
	// DrawdownPctGt dispara cuando el drawdown supera este porcentaje.
	DrawdownPctGt float64
	// ExecutionRateLt dispara cuando la tasa de éxito cae por debajo de
	// este porcentaje (solo con ejecuciones registradas).
	ExecutionRateLt float64
	// Cooldown suprime el despacho externo repetido de la misma métrica
	// dentro de la ventana. 0 = sin supresión (cada llamada re-dispara).
	Cooldown time.Duration
}

// DefaultThresholds son los umbrales de producción.
func DefaultThresholds() Thresholds {
	return Thresholds{DrawdownPctGt: 15, ExecutionRateLt: 30}
}

// Evaluator evalúa las reglas de umbral sobre un snapshot de métricas.
// La evaluación en sí es stateless; el cooldown solo gobierna el despacho
// al notificador externo, nunca el historial.
type Evaluator struct {
	thresholds Thresholds
	store      ports.MetricsStore
	notifier   ports.AlertNotifier
	lastSent   map[string]time.Time
	now        func() time.Time
}

// NewEvaluator crea un Evaluator. notifier puede ser nil (solo historial).
func NewEvaluator(t Thresholds, store ports.MetricsStore, notifier ports.AlertNotifier) *Evaluator {
	return &Evaluator{
		thresholds: t,
		store:      store,
		notifier:   notifier,
		lastSent:   make(map[string]time.Time),
		now:        time.Now,
	}
}

// Evaluate aplica las reglas al snapshot y devuelve los mensajes disparados.
// Cada regla disparada se añade al historial de alertas y se despacha
// best-effort: los fallos de despacho se tragan, nunca llegan al caller.
func (e *Evaluator) Evaluate(ctx context.Context, m domain.Metrics) []string {
	now := e.now().UTC()
	var triggered []domain.AlertEvent

	if dd := m.DrawdownPct(); e.thresholds.DrawdownPctGt > 0 && dd > e.thresholds.DrawdownPctGt {
		triggered = append(triggered, domain.AlertEvent{
			At:        now,
			MetricKey: "drawdown_pct",
			Threshold: e.thresholds.DrawdownPctGt,
			Message:   fmt.Sprintf("drawdown %.1f%% exceeds %.1f%% threshold", dd, e.thresholds.DrawdownPctGt),
		})
	}

	if rate := m.SuccessRate(); m.ExecutionsCount > 0 && rate < e.thresholds.ExecutionRateLt {
		triggered = append(triggered, domain.AlertEvent{
			At:        now,
			MetricKey: "execution_success_rate",
			Threshold: e.thresholds.ExecutionRateLt,
			Message:   fmt.Sprintf("execution success rate %.1f%% below %.1f%% threshold", rate, e.thresholds.ExecutionRateLt),
		})
	}

	if len(triggered) == 0 {
		return nil
	}

	messages := make([]string, 0, len(triggered))
	var toSend []string
	for _, a := range triggered {
		messages = append(messages, a.Message)
		if err := e.store.AppendAlert(ctx, a); err != nil {
			slog.Warn("alert history append failed", "err", err)
		}
		if e.shouldSend(a.MetricKey, now) {
			toSend = append(toSend, a.Message)
			e.lastSent[a.MetricKey] = now
		}
	}

	if len(toSend) > 0 && e.notifier != nil {
		if err := e.notifier.SendAlerts(ctx, toSend); err != nil {
			slog.Warn("alert dispatch failed", "err", err, "alerts", len(toSend))
		}
	}
	return messages
}

// History devuelve hasta limit alertas registradas.
func (e *Evaluator) History(ctx context.Context, limit int) ([]domain.AlertEvent, error) {
	return e.store.Alerts(ctx, limit)
}

// shouldSend aplica la ventana de cooldown por métrica al despacho externo.
func (e *Evaluator) shouldSend(key string, now time.Time) bool {
	if e.thresholds.Cooldown <= 0 {
		return true
	}
	last, ok := e.lastSent[key]
	return !ok || now.Sub(last) >= e.thresholds.Cooldown
}
