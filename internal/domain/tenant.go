package domain

import (
	"time"
)

// Tenant represents an accrediting organization in the multi-tenant system.
// All workflows, events, venues, and participant types belong to exactly one
// tenant.
type Tenant struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Slug      string                 `json:"slug"`
	Domain    string                 `json:"domain,omitempty"`
	LogoURL   string                 `json:"logo_url,omitempty"`
	Settings  map[string]interface{} `json:"settings,omitempty"`
	IsActive  bool                   `json:"is_active"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	DeletedAt *time.Time             `json:"deleted_at,omitempty"` // Soft delete support
}

// ParticipantType classifies registrants (delegate, press, staff, ...) and
// controls which workflow applies, which documents are required before the
// participant may enter that workflow, and whether the type may self-register.
type ParticipantType struct {
	ID                string         `json:"id"`
	TenantID          string         `json:"tenant_id"`
	Name              string         `json:"name"`
	Slug              string         `json:"slug"`
	RequiredDocuments []DocumentKind `json:"required_documents"`
	AllowSelfRegister bool           `json:"allow_self_register"`
	QuotaExempt       bool           `json:"quota_exempt"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
