package dto

import (
	"strings"
	"time"

	"github.com/shegerlabs/accreditation-service/internal/domain"
)

// CreateParticipantTypeRequest represents the request to create a participant type
type CreateParticipantTypeRequest struct {
	Name              string   `json:"name" binding:"required,min=1,max=100"`
	Slug              string   `json:"slug" binding:"required,min=2,max=100"`
	RequiredDocuments []string `json:"required_documents"`
	AllowSelfRegister bool     `json:"allow_self_register"`
	QuotaExempt       bool     `json:"quota_exempt"`
	TenantID          string   `json:"-"` // Set from context
}

// Validate validates the CreateParticipantTypeRequest
func (r *CreateParticipantTypeRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Name) == "" {
		return false, "Participant type name is required"
	}
	if !slugPattern.MatchString(r.Slug) {
		return false, "Slug must be lowercase letters, numbers and hyphens"
	}
	for _, d := range r.RequiredDocuments {
		if !domain.DocumentKind(d).IsValid() {
			return false, "Unknown document kind: " + d
		}
	}
	return true, ""
}

// RequiredKinds converts the raw document names to domain kinds
func (r *CreateParticipantTypeRequest) RequiredKinds() []domain.DocumentKind {
	kinds := make([]domain.DocumentKind, 0, len(r.RequiredDocuments))
	for _, d := range r.RequiredDocuments {
		kinds = append(kinds, domain.DocumentKind(d))
	}
	return kinds
}

// UpdateParticipantTypeRequest represents the request to update a participant type
type UpdateParticipantTypeRequest struct {
	Name              string   `json:"name" binding:"omitempty,min=1,max=100"`
	RequiredDocuments []string `json:"required_documents"`
	AllowSelfRegister *bool    `json:"allow_self_register"`
	QuotaExempt       *bool    `json:"quota_exempt"`
}

// Validate validates the UpdateParticipantTypeRequest
func (r *UpdateParticipantTypeRequest) Validate() (bool, string) {
	for _, d := range r.RequiredDocuments {
		if !domain.DocumentKind(d).IsValid() {
			return false, "Unknown document kind: " + d
		}
	}
	return true, ""
}

// ParticipantTypeResponse represents the response for a participant type
type ParticipantTypeResponse struct {
	ID                string   `json:"id"`
	TenantID          string   `json:"tenant_id"`
	Name              string   `json:"name"`
	Slug              string   `json:"slug"`
	RequiredDocuments []string `json:"required_documents"`
	AllowSelfRegister bool     `json:"allow_self_register"`
	QuotaExempt       bool     `json:"quota_exempt"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

// ToParticipantTypeResponse converts a domain participant type to its response form
func ToParticipantTypeResponse(pt *domain.ParticipantType) *ParticipantTypeResponse {
	docs := make([]string, 0, len(pt.RequiredDocuments))
	for _, d := range pt.RequiredDocuments {
		docs = append(docs, string(d))
	}
	return &ParticipantTypeResponse{
		ID:                pt.ID,
		TenantID:          pt.TenantID,
		Name:              pt.Name,
		Slug:              pt.Slug,
		RequiredDocuments: docs,
		AllowSelfRegister: pt.AllowSelfRegister,
		QuotaExempt:       pt.QuotaExempt,
		CreatedAt:         pt.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         pt.UpdatedAt.Format(time.RFC3339),
	}
}

// ToParticipantTypeResponses converts a list of domain participant types
func ToParticipantTypeResponses(types []*domain.ParticipantType) []*ParticipantTypeResponse {
	result := make([]*ParticipantTypeResponse, 0, len(types))
	for _, pt := range types {
		result = append(result, ToParticipantTypeResponse(pt))
	}
	return result
}
