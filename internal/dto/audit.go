package dto

import (
	"time"

	"github.com/shegerlabs/accreditation-service/internal/domain"
)

// AuditEntryResponse represents one audit log entry
type AuditEntryResponse struct {
	ID          string                 `json:"id"`
	Action      string                 `json:"action"`
	EntityType  string                 `json:"entity_type"`
	EntityID    string                 `json:"entity_id"`
	ActorID     string                 `json:"actor_id"`
	Description string                 `json:"description,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   string                 `json:"created_at"`
}

// AuditListFilter represents filters for listing audit entries
type AuditListFilter struct {
	Action  string `form:"action"`
	ActorID string `form:"actor_id"`
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
}

// SetDefaults sets default values for pagination
func (f *AuditListFilter) SetDefaults() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
}

// ToAuditEntryResponse converts a domain audit entry to its response form
func ToAuditEntryResponse(e *domain.AuditEntry) *AuditEntryResponse {
	return &AuditEntryResponse{
		ID:          e.ID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		ActorID:     e.ActorID,
		Description: e.Description,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

// ToAuditEntryResponses converts a list of domain audit entries
func ToAuditEntryResponses(entries []*domain.AuditEntry) []*AuditEntryResponse {
	result := make([]*AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, ToAuditEntryResponse(e))
	}
	return result
}
