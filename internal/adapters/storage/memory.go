package storage

import (
	"context"
	"sync"
	"time"

	"github.com/alejandrodnm/arbot/internal/domain"
)

// Tope de cada historial acotado. Los valores vienen del formato persistido
// original: anillos de timestamps 120, historial de snapshots 500, eventos
// 100, alertas 200.
const (
	maxSamples   = 500
	maxOpsEvents = 100
	maxAlerts    = 200
)

// Memory implementa todos los stores en memoria. Para tests y dry-run.
type Memory struct {
	mu      sync.Mutex
	nextID  int64
	items   []domain.QueueItem
	metrics domain.Metrics
	samples []domain.MetricsSample
	events  []domain.OpsEvent
	alerts  []domain.AlertEvent
	mode    *domain.ModeState
	runs    []domain.RunSummary
	audit   []domain.AuditEntry
}

// NewMemory crea un store en memoria vacío.
func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

// --- QueueStore ---

func (m *Memory) Add(_ context.Context, opp domain.Opportunity) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.items = append(m.items, domain.QueueItem{
		ID:          id,
		Opportunity: opp,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	})
	return id, nil
}

func (m *Memory) Get(_ context.Context, id int64) (domain.QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, it := range m.items {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.QueueItem{}, domain.ErrNotFound
}

func (m *Memory) List(_ context.Context) ([]domain.QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.QueueItem, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *Memory) Pending(_ context.Context) ([]domain.QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.QueueItem
	for _, it := range m.items {
		if it.Status == domain.StatusPending {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *Memory) Transition(_ context.Context, id int64, from, to domain.QueueStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ID == id {
			if m.items[i].Status != from {
				return false, nil
			}
			m.items[i].Status = to
			return true, nil
		}
	}
	return false, nil
}

// --- MetricsStore ---

func (m *Memory) LoadMetrics(_ context.Context) (domain.Metrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics, nil
}

func (m *Memory) SaveMetrics(_ context.Context, metrics domain.Metrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = metrics
	return nil
}

func (m *Memory) AppendSample(_ context.Context, s domain.MetricsSample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, s)
	if len(m.samples) > maxSamples {
		m.samples = m.samples[len(m.samples)-maxSamples:]
	}
	return nil
}

func (m *Memory) Samples(_ context.Context, limit int) ([]domain.MetricsSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return tail(m.samples, limit), nil
}

func (m *Memory) AppendOpsEvent(_ context.Context, e domain.OpsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	if len(m.events) > maxOpsEvents {
		m.events = m.events[len(m.events)-maxOpsEvents:]
	}
	return nil
}

func (m *Memory) OpsEvents(_ context.Context, limit int) ([]domain.OpsEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return tail(m.events, limit), nil
}

func (m *Memory) AppendAlert(_ context.Context, a domain.AlertEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, a)
	if len(m.alerts) > maxAlerts {
		m.alerts = m.alerts[len(m.alerts)-maxAlerts:]
	}
	return nil
}

func (m *Memory) Alerts(_ context.Context, limit int) ([]domain.AlertEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return tail(m.alerts, limit), nil
}

// --- ModeStore ---

func (m *Memory) LoadMode(_ context.Context) (domain.ModeState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == nil {
		return domain.ModeState{}, false, nil
	}
	return *m.mode, true, nil
}

func (m *Memory) SaveMode(_ context.Context, s domain.ModeState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = &s
	return nil
}

// --- RunStore ---

func (m *Memory) SaveRun(_ context.Context, r domain.RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.runs {
		if m.runs[i].ID == r.ID {
			m.runs[i] = r
			return nil
		}
	}
	m.runs = append(m.runs, r)
	return nil
}

func (m *Memory) Runs(_ context.Context, limit int) ([]domain.RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return tail(m.runs, limit), nil
}

// --- AuditLog ---

func (m *Memory) Append(_ context.Context, action domain.AuditAction, details map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, domain.AuditEntry{
		At:      time.Now().UTC(),
		Action:  action,
		Details: details,
	})
	return nil
}

func (m *Memory) Read(_ context.Context, limit int, action domain.AuditAction) ([]domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		limit = len(m.audit)
	}
	var out []domain.AuditEntry
	for i := len(m.audit) - 1; i >= 0 && len(out) < limit; i-- {
		if action != "" && m.audit[i].Action != action {
			continue
		}
		out = append(out, m.audit[i])
	}
	return out, nil
}

// tail devuelve los últimos limit elementos (copia).
func tail[T any](s []T, limit int) []T {
	if limit <= 0 || limit > len(s) {
		limit = len(s)
	}
	out := make([]T, limit)
	copy(out, s[len(s)-limit:])
	return out
}
