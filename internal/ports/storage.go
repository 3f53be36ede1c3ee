package ports

import (
	"context"

	"github.com/alejandrodnm/arbot/internal/domain"
)

// QueueStore persiste la cola de revisión manual.
type QueueStore interface {
	// Add asigna el siguiente id estrictamente creciente (nunca reutilizado)
	// y guarda el item con status pending. Devuelve el id asignado.
	Add(ctx context.Context, opp domain.Opportunity) (int64, error)

	// Get devuelve el item por id. Devuelve domain.ErrNotFound si no existe.
	Get(ctx context.Context, id int64) (domain.QueueItem, error)

	// List devuelve todos los items en orden de inserción.
	List(ctx context.Context) ([]domain.QueueItem, error)

	// Pending devuelve los items con status pending.
	Pending(ctx context.Context) ([]domain.QueueItem, error)

	// Transition cambia el status solo si el actual es from. Devuelve true
	// si aplicó el cambio; false si el id no existe o el status ya cambió.
	Transition(ctx context.Context, id int64, from, to domain.QueueStatus) (bool, error)
}

// MetricsStore persiste el snapshot de métricas y sus historiales acotados.
// Una carga corrupta se recupera reinicializando al estado por defecto:
// nunca es fatal.
type MetricsStore interface {
	LoadMetrics(ctx context.Context) (domain.Metrics, error)
	SaveMetrics(ctx context.Context, m domain.Metrics) error

	// AppendSample añade una entrada al historial de snapshots (tope 500).
	AppendSample(ctx context.Context, s domain.MetricsSample) error
	Samples(ctx context.Context, limit int) ([]domain.MetricsSample, error)

	// AppendOpsEvent añade al log de eventos tipados (tope 100).
	AppendOpsEvent(ctx context.Context, e domain.OpsEvent) error
	OpsEvents(ctx context.Context, limit int) ([]domain.OpsEvent, error)

	// AppendAlert añade al historial de alertas (tope 200).
	AppendAlert(ctx context.Context, a domain.AlertEvent) error
	Alerts(ctx context.Context, limit int) ([]domain.AlertEvent, error)
}

// ModeStore persiste el registro único del modo de ejecución.
type ModeStore interface {
	// LoadMode devuelve el estado y true, o (zero, false) si no hay nada
	// persistido o el registro está corrupto.
	LoadMode(ctx context.Context) (domain.ModeState, bool, error)
	SaveMode(ctx context.Context, s domain.ModeState) error
}

// RunStore persiste el resumen de cada invocación del pipeline.
type RunStore interface {
	SaveRun(ctx context.Context, r domain.RunSummary) error
	Runs(ctx context.Context, limit int) ([]domain.RunSummary, error)
}

// AuditLog es el trail append-only de acciones. Las entradas nunca se
// mutan ni se borran.
type AuditLog interface {
	// Append registra una acción con sus detalles.
	Append(ctx context.Context, action domain.AuditAction, details map[string]string) error

	// Read devuelve hasta limit entradas de la más nueva a la más vieja,
	// filtradas por action si no es "".
	Read(ctx context.Context, limit int, action domain.AuditAction) ([]domain.AuditEntry, error)
}
