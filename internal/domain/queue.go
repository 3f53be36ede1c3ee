package domain

import "time"

// QueueStatus es el estado de un item en la cola de revisión manual.
type QueueStatus string

const (
	StatusPending  QueueStatus = "pending"
	StatusApproved QueueStatus = "approved"
	StatusRejected QueueStatus = "rejected"
)

// Terminal devuelve true si el estado ya no admite transiciones.
// approved y rejected son finales; un estado terminal nunca se sobrescribe.
func (s QueueStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// QueueItem es un snapshot de una oportunidad pendiente de revisión humana.
// Los ids son estrictamente crecientes y nunca se reutilizan, ni siquiera
// tras borrar items.
type QueueItem struct {
	ID          int64       `json:"id"`
	Opportunity Opportunity `json:"opportunity"`
	Status      QueueStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}
