package storage

// audit.go — audit trail append-only en JSONL: una entrada JSON por línea.
// Las entradas nunca se mutan ni se borran; el orden del archivo es el
// orden total de las acciones.

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alejandrodnm/arbot/internal/domain"
)

// JSONLAudit implementa ports.AuditLog sobre un archivo JSONL.
type JSONLAudit struct {
	mu   sync.Mutex
	path string
}

// NewJSONLAudit crea el audit log en la ruta dada. El archivo y su
// directorio se crean en el primer append.
func NewJSONLAudit(path string) *JSONLAudit {
	return &JSONLAudit{path: path}
}

// Append registra una acción como una línea JSON al final del archivo.
func (a *JSONLAudit) Append(_ context.Context, action domain.AuditAction, details map[string]string) error {
	entry := domain.AuditEntry{
		At:      time.Now().UTC(),
		Action:  action,
		Details: details,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("storage.Append: marshal audit entry: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return fmt.Errorf("storage.Append: mkdir: %w", err)
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("storage.Append: open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("storage.Append: write audit entry: %w", err)
	}
	return nil
}

// Read devuelve hasta limit entradas de la más nueva a la más vieja,
// filtradas por action si no es "". Las líneas malformadas se saltan.
func (a *JSONLAudit) Read(_ context.Context, limit int, action domain.AuditAction) ([]domain.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.Open(a.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.Read: open audit log: %w", err)
	}
	defer f.Close()

	var all []domain.AuditEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry domain.AuditEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if action != "" && entry.Action != action {
			continue
		}
		all = append(all, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("storage.Read: scan audit log: %w", err)
	}

	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	// De la más nueva a la más vieja.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}
