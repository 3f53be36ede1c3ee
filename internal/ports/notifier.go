package ports

import "context"

// AlertNotifier entrega alertas al operador (consola, Telegram, ...).
// El despacho es best-effort: los errores se registran pero nunca se
// propagan al evaluador de alertas.
type AlertNotifier interface {
	SendAlerts(ctx context.Context, messages []string) error
}
