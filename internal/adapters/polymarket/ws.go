package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultWSURL = "wss://ws-subscriptions-clob.polymarket.com/ws/market"

	wsBackoffBase = 1 * time.Second
	wsBackoffCap  = 60 * time.Second
	wsMaxFailures = 5
)

// PriceUpdate es un cambio de precio recibido por el canal de mercado.
type PriceUpdate struct {
	AssetID string `json:"asset_id"`
	Price   string `json:"price"`
	Event   string `json:"event_type"`
}

// Listener mantiene una suscripción websocket al canal de mercado del CLOB
// y entrega cada update al handler. Reconecta con backoff exponencial; tras
// wsMaxFailures fallos consecutivos se detiene de forma permanente.
type Listener struct {
	url      string
	assetIDs []string
	onUpdate func(PriceUpdate)

	dial        func(ctx context.Context, url string) (wsConn, error)
	backoffBase time.Duration
}

// wsConn es el subconjunto de *websocket.Conn que usa el Listener.
type wsConn interface {
	WriteJSON(v any) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// NewListener crea un Listener para los asset ids dados. URL vacío usa el
// endpoint de producción. onUpdate puede ser nil (solo logging).
func NewListener(url string, assetIDs []string, onUpdate func(PriceUpdate)) *Listener {
	if url == "" {
		url = defaultWSURL
	}
	return &Listener{
		url:      url,
		assetIDs: assetIDs,
		onUpdate: onUpdate,
		dial: func(ctx context.Context, url string) (wsConn, error) {
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
			return conn, err
		},
		backoffBase: wsBackoffBase,
	}
}

// Run mantiene la suscripción hasta que el contexto se cancele o se agoten
// los fallos consecutivos de conexión.
func (l *Listener) Run(ctx context.Context) error {
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		healthy, err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if healthy {
			failures = 0
		}
		failures++
		if failures >= wsMaxFailures {
			return fmt.Errorf("polymarket.Listener: giving up after %d consecutive failures: %w", failures, err)
		}

		wait := backoff(l.backoffBase, failures)
		slog.Warn("websocket disconnected, reconnecting",
			"err", err, "failures", failures, "wait", wait)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// listen abre una conexión, se suscribe y procesa mensajes hasta el primer
// error. healthy indica si llegó a procesar al menos un mensaje: una sesión
// sana resetea el contador de fallos consecutivos.
func (l *Listener) listen(ctx context.Context) (healthy bool, _ error) {
	conn, err := l.dial(ctx, l.url)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	sub := map[string]any{"type": "market", "assets_ids": l.assetIDs}
	if err := conn.WriteJSON(sub); err != nil {
		return false, fmt.Errorf("subscribe: %w", err)
	}
	slog.Info("websocket subscribed", "assets", len(l.assetIDs))

	// Cierre cooperativo: el contexto cancelado desbloquea ReadMessage.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return healthy, fmt.Errorf("read: %w", err)
		}
		l.handle(msg)
		healthy = true
	}
}

// handle procesa un frame: puede contener un update o un array de updates.
func (l *Listener) handle(msg []byte) {
	var updates []PriceUpdate
	if err := json.Unmarshal(msg, &updates); err != nil {
		var single PriceUpdate
		if err := json.Unmarshal(msg, &single); err != nil {
			slog.Debug("unrecognized websocket frame", "size", len(msg))
			return
		}
		updates = []PriceUpdate{single}
	}
	for _, u := range updates {
		if u.AssetID == "" {
			continue
		}
		if l.onUpdate != nil {
			l.onUpdate(u)
		}
	}
}

// backoff devuelve la espera exponencial para el n-ésimo fallo consecutivo,
// acotada al tope.
func backoff(base time.Duration, failures int) time.Duration {
	wait := base << (failures - 1)
	if wait > wsBackoffCap || wait <= 0 {
		wait = wsBackoffCap
	}
	return wait
}
