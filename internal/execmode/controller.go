// Package execmode controla el registro único del modo de ejecución
// (paper/live, manual/auto, dry-run). Toda mutación pasa por aquí y deja
// rastro en el audit log.
package execmode

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/alejandrodnm/arbot/internal/domain"
	"github.com/alejandrodnm/arbot/internal/ports"
)

// Controller expone el estado de modo persistido con defaults seguros.
type Controller struct {
	store ports.ModeStore
	audit ports.AuditLog
}

// NewController crea un Controller. audit puede ser nil.
func NewController(store ports.ModeStore, audit ports.AuditLog) *Controller {
	return &Controller{store: store, audit: audit}
}

// Get devuelve el estado actual. Sin registro persistido (o corrupto)
// devuelve el default seguro: paper, manual, dry-run activo.
func (c *Controller) Get(ctx context.Context) domain.ModeState {
	state, found, err := c.store.LoadMode(ctx)
	if err != nil || !found {
		if err != nil {
			slog.Warn("mode store unreadable, using defaults", "err", err)
		}
		return domain.DefaultModeState()
	}
	return state
}

// Set cambia el modo de ejecución. dryRun puede ser nil: entonces el
// dry-run queda activo solo en paper. live exige decirlo explícitamente.
func (c *Controller) Set(ctx context.Context, mode string, dryRun *bool) (domain.ModeState, error) {
	parsed, err := domain.ParseExecutionMode(mode)
	if err != nil {
		return domain.ModeState{}, fmt.Errorf("execmode.Set: %w", err)
	}

	state := c.Get(ctx)
	prev := state
	state.Mode = parsed
	if dryRun != nil {
		state.DryRun = *dryRun
	} else {
		state.DryRun = parsed == domain.ModePaper
	}

	if err := c.store.SaveMode(ctx, state); err != nil {
		return domain.ModeState{}, fmt.Errorf("execmode.Set: save: %w", err)
	}
	c.record(ctx, domain.ActionModeChange, map[string]string{
		"from":    string(prev.Mode),
		"to":      string(state.Mode),
		"dry_run": strconv.FormatBool(state.DryRun),
	})
	slog.Info("execution mode changed", "from", prev.Mode, "to", state.Mode, "dry_run", state.DryRun)
	return state, nil
}

// SetTrigger cambia entre ejecución automática y revisión manual.
func (c *Controller) SetTrigger(ctx context.Context, trigger string) (domain.ModeState, error) {
	parsed, err := domain.ParseTrigger(trigger)
	if err != nil {
		return domain.ModeState{}, fmt.Errorf("execmode.SetTrigger: %w", err)
	}

	state := c.Get(ctx)
	prev := state.Trigger
	state.Trigger = parsed

	if err := c.store.SaveMode(ctx, state); err != nil {
		return domain.ModeState{}, fmt.Errorf("execmode.SetTrigger: save: %w", err)
	}
	c.record(ctx, domain.ActionTriggerChange, map[string]string{
		"from": string(prev),
		"to":   string(state.Trigger),
	})
	return state, nil
}

func (c *Controller) record(ctx context.Context, action domain.AuditAction, details map[string]string) {
	if c.audit == nil {
		return
	}
	if err := c.audit.Append(ctx, action, details); err != nil {
		slog.Warn("audit append failed", "action", action, "err", err)
	}
}
