// Package review implementa la cola de revisión manual: las oportunidades
// validadas en modo manual esperan aquí la decisión de un operador.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/alejandrodnm/arbot/internal/domain"
	"github.com/alejandrodnm/arbot/internal/ports"
)

// Queue gestiona las transiciones de la cola sobre un QueueStore y deja
// rastro de cada acción en el audit log.
type Queue struct {
	store ports.QueueStore
	audit ports.AuditLog
}

// NewQueue crea una Queue. audit puede ser nil (sin rastro).
func NewQueue(store ports.QueueStore, audit ports.AuditLog) *Queue {
	return &Queue{store: store, audit: audit}
}

// Add encola una oportunidad como pending y devuelve su id.
func (q *Queue) Add(ctx context.Context, opp domain.Opportunity) (int64, error) {
	id, err := q.store.Add(ctx, opp)
	if err != nil {
		return 0, fmt.Errorf("review.Add: %w", err)
	}
	q.record(ctx, domain.ActionQueueAdd, id, opp)
	return id, nil
}

// Approve marca el item como approved y devuelve si aplicó el cambio.
// Un id desconocido o un item ya resuelto es un no-op: los estados
// terminales nunca se sobrescriben.
func (q *Queue) Approve(ctx context.Context, id int64) (bool, error) {
	return q.resolve(ctx, id, domain.StatusApproved, domain.ActionQueueApprove)
}

// Reject marca el item como rejected y devuelve si aplicó el cambio.
func (q *Queue) Reject(ctx context.Context, id int64) (bool, error) {
	return q.resolve(ctx, id, domain.StatusRejected, domain.ActionQueueReject)
}

// Get devuelve el item por id.
func (q *Queue) Get(ctx context.Context, id int64) (domain.QueueItem, error) {
	return q.store.Get(ctx, id)
}

// List devuelve todos los items en orden de inserción.
func (q *Queue) List(ctx context.Context) ([]domain.QueueItem, error) {
	return q.store.List(ctx)
}

// Pending devuelve los items aún sin resolver.
func (q *Queue) Pending(ctx context.Context) ([]domain.QueueItem, error) {
	return q.store.Pending(ctx)
}

func (q *Queue) resolve(ctx context.Context, id int64, to domain.QueueStatus, action domain.AuditAction) (bool, error) {
	applied, err := q.store.Transition(ctx, id, domain.StatusPending, to)
	if err != nil {
		return false, fmt.Errorf("review.resolve: id=%d: %w", id, err)
	}
	if !applied {
		slog.Debug("queue transition skipped", "id", id, "to", to)
		return false, nil
	}

	item, err := q.store.Get(ctx, id)
	if err != nil {
		// La transición ya aplicó; el rastro sale sin el resumen.
		q.record(ctx, action, id, domain.Opportunity{})
		return true, nil
	}
	q.record(ctx, action, id, item.Opportunity)
	return true, nil
}

func (q *Queue) record(ctx context.Context, action domain.AuditAction, id int64, opp domain.Opportunity) {
	if q.audit == nil {
		return
	}
	details := map[string]string{"queue_id": strconv.FormatInt(id, 10)}
	if s := opp.Summary(); s != "" {
		details["opportunity"] = s
	}
	if err := q.audit.Append(ctx, action, details); err != nil {
		slog.Warn("audit append failed", "action", action, "err", err)
	}
}
