package storage

// sqlite.go — backend durable para cola, métricas, historiales, modo y runs.
//
// Estrategia:
//   - Payloads JSON schema-estables en columnas TEXT: el formato persistido
//     sobrevive a cambios de columnas y es inspeccionable con sqlite3.
//   - Ids de cola con AUTOINCREMENT: estrictamente crecientes y nunca
//     reutilizados, ni siquiera tras borrar filas.
//   - Historiales acotados: tras cada append se recortan al tope
//     (snapshots 500, eventos 100, alertas 200).
//   - Un registro corrupto se recupera con el estado por defecto; la
//     corrupción se loggea y nunca es fatal.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/arbot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS queue_items (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    payload    TEXT     NOT NULL,
    status     TEXT     NOT NULL DEFAULT 'pending',
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS metrics (
    id      INTEGER PRIMARY KEY CHECK (id = 1),
    payload TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metrics_history (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    payload TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ops_events (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    payload TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS alert_history (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    payload TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS execution_mode (
    id      INTEGER PRIMARY KEY CHECK (id = 1),
    payload TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
    id         TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL,
    payload    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_queue_status ON queue_items(status);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`

// SQLite implementa QueueStore, MetricsStore, ModeStore y RunStore.
type SQLite struct {
	db *sql.DB
}

// NewSQLite abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLite: apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close cierra la conexión limpiamente.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// --- QueueStore ---

func (s *SQLite) Add(ctx context.Context, opp domain.Opportunity) (int64, error) {
	payload, err := json.Marshal(opp)
	if err != nil {
		return 0, fmt.Errorf("storage.Add: marshal: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO queue_items (payload, status, created_at) VALUES (?, 'pending', ?)`,
		string(payload), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage.Add: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage.Add: last id: %w", err)
	}
	return id, nil
}

func (s *SQLite) Get(ctx context.Context, id int64) (domain.QueueItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, payload, status, created_at FROM queue_items WHERE id = ?`, id)
	item, err := scanQueueItem(row)
	if err == sql.ErrNoRows {
		return domain.QueueItem{}, domain.ErrNotFound
	}
	return item, err
}

func (s *SQLite) List(ctx context.Context) ([]domain.QueueItem, error) {
	return s.queryQueue(ctx,
		`SELECT id, payload, status, created_at FROM queue_items ORDER BY id`)
}

func (s *SQLite) Pending(ctx context.Context) ([]domain.QueueItem, error) {
	return s.queryQueue(ctx,
		`SELECT id, payload, status, created_at FROM queue_items WHERE status = 'pending' ORDER BY id`)
}

func (s *SQLite) Transition(ctx context.Context, id int64, from, to domain.QueueStatus) (bool, error) {
	// El WHERE condicional garantiza que un estado terminal nunca se
	// sobrescribe, incluso con mutadores externos concurrentes.
	res, err := s.db.ExecContext(ctx,
		`UPDATE queue_items SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from),
	)
	if err != nil {
		return false, fmt.Errorf("storage.Transition: update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage.Transition: rows affected: %w", err)
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQueueItem(r rowScanner) (domain.QueueItem, error) {
	var (
		item      domain.QueueItem
		payload   string
		status    string
		createdAt time.Time
	)
	if err := r.Scan(&item.ID, &payload, &status, &createdAt); err != nil {
		return domain.QueueItem{}, err
	}
	item.Status = domain.QueueStatus(status)
	item.CreatedAt = createdAt
	if err := json.Unmarshal([]byte(payload), &item.Opportunity); err != nil {
		// Payload corrupto: conservamos id y status, el snapshot se pierde.
		slog.Warn("queue item payload corrupt", "id", item.ID, "err", err)
	}
	return item, nil
}

func (s *SQLite) queryQueue(ctx context.Context, query string) ([]domain.QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("storage.queryQueue: %w", err)
	}
	defer rows.Close()

	var out []domain.QueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.queryQueue: scan: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// --- MetricsStore ---

func (s *SQLite) LoadMetrics(ctx context.Context) (domain.Metrics, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM metrics WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return domain.Metrics{}, nil
	}
	if err != nil {
		return domain.Metrics{}, fmt.Errorf("storage.LoadMetrics: %w", err)
	}

	var m domain.Metrics
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		slog.Warn("metrics payload corrupt, reinitializing", "err", err)
		return domain.Metrics{}, nil
	}
	return m, nil
}

func (s *SQLite) SaveMetrics(ctx context.Context, m domain.Metrics) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("storage.SaveMetrics: marshal: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO metrics (id, payload) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveMetrics: upsert: %w", err)
	}
	return nil
}

func (s *SQLite) AppendSample(ctx context.Context, sample domain.MetricsSample) error {
	return s.appendBounded(ctx, "metrics_history", sample, maxSamples)
}

func (s *SQLite) Samples(ctx context.Context, limit int) ([]domain.MetricsSample, error) {
	return queryBounded[domain.MetricsSample](ctx, s, "metrics_history", limit)
}

func (s *SQLite) AppendOpsEvent(ctx context.Context, e domain.OpsEvent) error {
	return s.appendBounded(ctx, "ops_events", e, maxOpsEvents)
}

func (s *SQLite) OpsEvents(ctx context.Context, limit int) ([]domain.OpsEvent, error) {
	return queryBounded[domain.OpsEvent](ctx, s, "ops_events", limit)
}

func (s *SQLite) AppendAlert(ctx context.Context, a domain.AlertEvent) error {
	return s.appendBounded(ctx, "alert_history", a, maxAlerts)
}

func (s *SQLite) Alerts(ctx context.Context, limit int) ([]domain.AlertEvent, error) {
	return queryBounded[domain.AlertEvent](ctx, s, "alert_history", limit)
}

// appendBounded inserta y recorta la tabla a las últimas keep filas.
func (s *SQLite) appendBounded(ctx context.Context, table string, v any, keep int) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage.appendBounded: marshal: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (payload) VALUES (?)`, string(payload),
	); err != nil {
		return fmt.Errorf("storage.appendBounded: insert %s: %w", table, err)
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id NOT IN (SELECT id FROM `+table+` ORDER BY id DESC LIMIT ?)`,
		keep,
	)
	if err != nil {
		return fmt.Errorf("storage.appendBounded: trim %s: %w", table, err)
	}
	return nil
}

// queryBounded devuelve las últimas limit filas en orden de inserción.
// Las filas corruptas se saltan con un warning.
func queryBounded[T any](ctx context.Context, s *SQLite, table string, limit int) ([]T, error) {
	if limit <= 0 {
		limit = -1 // sin límite en SQLite
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM (
			SELECT id, payload FROM `+table+` ORDER BY id DESC LIMIT ?
		) ORDER BY id`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.queryBounded: %s: %w", table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("storage.queryBounded: scan %s: %w", table, err)
		}
		var v T
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			slog.Warn("history row corrupt, skipping", "table", table, "err", err)
			continue
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// --- ModeStore ---

func (s *SQLite) LoadMode(ctx context.Context) (domain.ModeState, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM execution_mode WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return domain.ModeState{}, false, nil
	}
	if err != nil {
		return domain.ModeState{}, false, fmt.Errorf("storage.LoadMode: %w", err)
	}

	var state domain.ModeState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		slog.Warn("execution mode payload corrupt, using defaults", "err", err)
		return domain.ModeState{}, false, nil
	}
	return state, true, nil
}

func (s *SQLite) SaveMode(ctx context.Context, state domain.ModeState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("storage.SaveMode: marshal: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO execution_mode (id, payload) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveMode: upsert: %w", err)
	}
	return nil
}

// --- RunStore ---

func (s *SQLite) SaveRun(ctx context.Context, r domain.RunSummary) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: marshal: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, payload) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`,
		r.ID, r.StartedAt, string(payload),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: upsert: %w", err)
	}
	return nil
}

func (s *SQLite) Runs(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.Runs: %w", err)
	}
	defer rows.Close()

	var out []domain.RunSummary
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("storage.Runs: scan: %w", err)
		}
		var r domain.RunSummary
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			slog.Warn("run payload corrupt, skipping", "err", err)
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
