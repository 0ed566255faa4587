package dto

import (
	"regexp"
	"strings"
	"time"

	"github.com/shegerlabs/accreditation-service/internal/domain"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CreateTenantRequest represents the request to create a new tenant
type CreateTenantRequest struct {
	Name     string                 `json:"name" binding:"required,min=1,max=200"`
	Slug     string                 `json:"slug" binding:"required,min=2,max=100"`
	Domain   string                 `json:"domain" binding:"omitempty,max=255"`
	LogoURL  string                 `json:"logo_url" binding:"omitempty,max=512"`
	Settings map[string]interface{} `json:"settings"`
}

// Validate validates the CreateTenantRequest
func (r *CreateTenantRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Name) == "" {
		return false, "Tenant name is required"
	}
	if !slugPattern.MatchString(r.Slug) {
		return false, "Slug must be lowercase letters, numbers and hyphens"
	}
	return true, ""
}

// UpdateTenantRequest represents the request to update a tenant
type UpdateTenantRequest struct {
	Name     string                 `json:"name" binding:"omitempty,min=1,max=200"`
	Domain   string                 `json:"domain" binding:"omitempty,max=255"`
	LogoURL  string                 `json:"logo_url" binding:"omitempty,max=512"`
	Settings map[string]interface{} `json:"settings"`
	IsActive *bool                  `json:"is_active"`
}

// Validate validates the UpdateTenantRequest
func (r *UpdateTenantRequest) Validate() (bool, string) {
	if r.Name == "" && r.Domain == "" && r.LogoURL == "" && r.Settings == nil && r.IsActive == nil {
		return false, "At least one field must be provided for update"
	}
	return true, ""
}

// TenantResponse represents the response for a tenant
type TenantResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Slug      string                 `json:"slug"`
	Domain    string                 `json:"domain,omitempty"`
	LogoURL   string                 `json:"logo_url,omitempty"`
	Settings  map[string]interface{} `json:"settings,omitempty"`
	IsActive  bool                   `json:"is_active"`
	CreatedAt string                 `json:"created_at"`
	UpdatedAt string                 `json:"updated_at"`
}

// TenantListFilter represents filters for listing tenants
type TenantListFilter struct {
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// SetDefaults sets default values for pagination
func (f *TenantListFilter) SetDefaults() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
}

// ToTenantResponse converts a domain tenant to its response form
func ToTenantResponse(t *domain.Tenant) *TenantResponse {
	return &TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		Domain:    t.Domain,
		LogoURL:   t.LogoURL,
		Settings:  t.Settings,
		IsActive:  t.IsActive,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}

// ToTenantResponses converts a list of domain tenants
func ToTenantResponses(tenants []*domain.Tenant) []*TenantResponse {
	result := make([]*TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		result = append(result, ToTenantResponse(t))
	}
	return result
}
