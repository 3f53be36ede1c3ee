package domain

import "time"

// RunStatus es el estado de una invocación completa del pipeline.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunOK      RunStatus = "ok"
	RunError   RunStatus = "error"
)

// RunSummary agrega los contadores de una invocación del pipeline.
// Se persiste incondicionalmente, incluso si la invocación muere a medias:
// es el registro de la última salud conocida del pipeline.
type RunSummary struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at,omitzero"`
	Status        RunStatus `json:"status"`
	Message       string    `json:"message,omitempty"`
	PairsChecked  int       `json:"pairs_checked"`
	Opportunities int       `json:"opportunities_found"`
	Queued        int       `json:"queued"`
	Executed      int       `json:"executed"`
}
