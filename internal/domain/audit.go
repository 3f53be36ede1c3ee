package domain

import "time"

// AuditAction identifica el tipo de acción registrada en el audit trail.
type AuditAction string

const (
	ActionQueueAdd      AuditAction = "queue_add"
	ActionQueueApprove  AuditAction = "queue_approve"
	ActionQueueReject   AuditAction = "queue_reject"
	ActionModeChange    AuditAction = "execution_mode_change"
	ActionTriggerChange AuditAction = "trigger_change"
	ActionOrderSubmit   AuditAction = "order_submit"
	ActionRunStatus     AuditAction = "run_status"
)

// AuditEntry es una acción registrada. Las entradas nunca se mutan ni se
// borran; el orden total es el orden de append.
type AuditEntry struct {
	At      time.Time         `json:"ts"`
	Action  AuditAction       `json:"action"`
	Details map[string]string `json:"details,omitempty"`
}
