package domain

import "time"

// Audited entity types
const (
	EntityTypeParticipant = "PARTICIPANT"
	EntityTypeWorkflow    = "WORKFLOW"
	EntityTypeEvent       = "EVENT"
	EntityTypeTenant      = "TENANT"
)

// Audit actions beyond the workflow actions
const (
	AuditActionRegister = "REGISTER"
	AuditActionImport   = "IMPORT"
)

// AuditEntry is an immutable append-only record of a state-changing action.
// Entries are written in the same transaction as the mutation they describe
// and are never updated or deleted.
type AuditEntry struct {
	ID          string                 `json:"id"`
	Action      string                 `json:"action"`
	EntityType  string                 `json:"entity_type"`
	EntityID    string                 `json:"entity_id"`
	ActorID     string                 `json:"actor_id"`
	Description string                 `json:"description,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}
