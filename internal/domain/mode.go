package domain

import "fmt"

// ExecutionMode decide si las órdenes tocan el exchange real.
type ExecutionMode string

const (
	ModePaper ExecutionMode = "paper"
	ModeLive  ExecutionMode = "live"
)

// ParseExecutionMode valida un modo recibido desde fuera (CLI, panel).
func ParseExecutionMode(s string) (ExecutionMode, error) {
	switch ExecutionMode(s) {
	case ModePaper, ModeLive:
		return ExecutionMode(s), nil
	default:
		return "", fmt.Errorf("invalid execution mode %q: must be paper or live", s)
	}
}

// Trigger decide si las oportunidades validadas se ejecutan solas o van a
// la cola de revisión manual.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerAuto   Trigger = "auto"
)

// ParseTrigger valida un trigger recibido desde fuera.
func ParseTrigger(s string) (Trigger, error) {
	switch Trigger(s) {
	case TriggerManual, TriggerAuto:
		return Trigger(s), nil
	default:
		return "", fmt.Errorf("invalid trigger %q: must be manual or auto", s)
	}
}

// ModeState es el único registro process-wide del modo de ejecución.
// Se muta exclusivamente a través del controller.
type ModeState struct {
	Mode    ExecutionMode `json:"execution_mode"`
	Trigger Trigger       `json:"trigger"`
	DryRun  bool          `json:"dry_run"`
}

// DefaultModeState es el estado seguro cuando no hay nada persistido
// o el registro está corrupto.
func DefaultModeState() ModeState {
	return ModeState{Mode: ModePaper, Trigger: TriggerManual, DryRun: true}
}

// EffectiveMode es el modo con el que se envían las órdenes: dry-run
// activo fuerza paper aunque el modo configurado sea live.
func (s ModeState) EffectiveMode() ExecutionMode {
	if s.DryRun {
		return ModePaper
	}
	return s.Mode
}
