package domain

import "time"

const (
	// maxRingTimestamps limita los anillos de timestamps usados para las
	// tasas por minuto.
	maxRingTimestamps = 120

	// rateWindow es la ventana trailing para opportunities/executions por minuto.
	rateWindow = 60 * time.Second
)

// Metrics es el snapshot persistido de los contadores operacionales.
//
// Invariantes: ExecutionsSuccess ≤ ExecutionsCount;
// PeakPnL = máximo histórico de TotalPnL.
type Metrics struct {
	OpportunitiesCount int64       `json:"opportunities_count"`
	ExecutionsCount    int64       `json:"executions_count"`
	ExecutionsSuccess  int64       `json:"executions_success"`
	TotalPnL           float64     `json:"total_pnl"`
	PeakPnL            float64     `json:"peak_pnl"`
	AvgLatencyMs       float64     `json:"avg_latency_ms"`
	UpdatedAt          time.Time   `json:"updated_at"`
	OpportunityTimes   []time.Time `json:"opportunity_timestamps"`
	ExecutionTimes     []time.Time `json:"execution_timestamps"`
}

// AddOpportunity registra una oportunidad detectada en el momento dado.
func (m *Metrics) AddOpportunity(now time.Time) {
	m.OpportunitiesCount++
	m.OpportunityTimes = appendRing(m.OpportunityTimes, now)
	m.UpdatedAt = now
}

// AddExecution registra un intento de ejecución (paper o live) con su
// resultado, PnL realizado y latencia. La media de latencia es incremental:
// new_avg = (old_avg×(n-1) + latest) / n.
func (m *Metrics) AddExecution(success bool, pnlUSD, latencyMs float64, now time.Time) {
	m.ExecutionsCount++
	if success {
		m.ExecutionsSuccess++
	}
	m.TotalPnL += pnlUSD
	if m.TotalPnL > m.PeakPnL {
		m.PeakPnL = m.TotalPnL
	}
	n := float64(m.ExecutionsCount)
	m.AvgLatencyMs = (m.AvgLatencyMs*(n-1) + latencyMs) / n
	m.ExecutionTimes = appendRing(m.ExecutionTimes, now)
	m.UpdatedAt = now
}

// SuccessRate devuelve el porcentaje de ejecuciones exitosas en [0,100].
// Es 0 cuando no hay ejecuciones.
func (m Metrics) SuccessRate() float64 {
	if m.ExecutionsCount == 0 {
		return 0
	}
	return float64(m.ExecutionsSuccess) / float64(m.ExecutionsCount) * 100
}

// DrawdownPct devuelve la caída porcentual del PnL acumulado desde su pico.
// Es 0 cuando el pico no es positivo.
func (m Metrics) DrawdownPct() float64 {
	if m.PeakPnL <= 0 {
		return 0
	}
	dd := (m.PeakPnL - m.TotalPnL) / m.PeakPnL * 100
	if dd < 0 {
		return 0
	}
	if dd > 100 {
		return 100
	}
	return dd
}

// OpportunitiesPerMin cuenta las oportunidades de los últimos 60 segundos.
func (m Metrics) OpportunitiesPerMin(now time.Time) int {
	return countSince(m.OpportunityTimes, now.Add(-rateWindow))
}

// ExecutionsPerMin cuenta las ejecuciones de los últimos 60 segundos.
func (m Metrics) ExecutionsPerMin(now time.Time) int {
	return countSince(m.ExecutionTimes, now.Add(-rateWindow))
}

// appendRing añade un timestamp manteniendo el tope del anillo.
func appendRing(ring []time.Time, t time.Time) []time.Time {
	ring = append(ring, t)
	if len(ring) > maxRingTimestamps {
		ring = ring[len(ring)-maxRingTimestamps:]
	}
	return ring
}

func countSince(ring []time.Time, cutoff time.Time) int {
	n := 0
	for _, t := range ring {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}

// MetricsSample es la entrada ligera del historial de métricas para gráficos.
type MetricsSample struct {
	At                 time.Time `json:"ts"`
	OpportunitiesCount int64     `json:"opportunities_count"`
	ExecutionsCount    int64     `json:"executions_count"`
	TotalPnL           float64   `json:"total_pnl"`
	DrawdownPct        float64   `json:"drawdown_pct"`
	AvgLatencyMs       float64   `json:"avg_latency_ms"`
}

// OpsEvent es una entrada tipada del log de eventos operacionales,
// independiente de los contadores numéricos.
type OpsEvent struct {
	At     time.Time         `json:"ts"`
	Type   string            `json:"type"` // "opportunity" | "execution" | ...
	Detail map[string]string `json:"detail,omitempty"`
}
