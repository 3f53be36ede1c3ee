package domain

import "time"

// AlertEvent es una alerta disparada por una regla de umbral sobre métricas.
// El historial es append-only con tope acotado.
type AlertEvent struct {
	At        time.Time `json:"ts"`
	MetricKey string    `json:"metric"`
	Threshold float64   `json:"threshold"`
	Message   string    `json:"message"`
}
