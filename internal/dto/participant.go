package dto

import (
	"strings"
	"time"

	"github.com/shegerlabs/accreditation-service/internal/domain"
)

// RegisterParticipantRequest represents a direct (back-office) registration
type RegisterParticipantRequest struct {
	EventID           string   `json:"event_id" binding:"required"`
	ParticipantTypeID string   `json:"participant_type_id" binding:"required"`
	FirstName         string   `json:"first_name" binding:"required,min=1,max=100"`
	LastName          string   `json:"last_name" binding:"required,min=1,max=100"`
	Email             string   `json:"email" binding:"required,email"`
	Phone             string   `json:"phone" binding:"omitempty,max=50"`
	PassportNumber    string   `json:"passport_number" binding:"omitempty,max=50"`
	Nationality       string   `json:"nationality" binding:"omitempty,max=100"`
	Organization      string   `json:"organization" binding:"omitempty,max=200"`
	JobTitle          string   `json:"job_title" binding:"omitempty,max=200"`
	WishMeetingIDs    []string `json:"wish_meeting_ids"`
	TenantID          string   `json:"-"` // Set from context
}

// Validate validates the RegisterParticipantRequest
func (r *RegisterParticipantRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return false, "First and last name are required"
	}
	if !strings.Contains(r.Email, "@") {
		return false, "A valid email is required"
	}
	return true, ""
}

// TransitionRequest represents a workflow action submission against a
// participant. Remarks are mandatory for REJECT.
type TransitionRequest struct {
	Action  string `json:"action" binding:"required"`
	Remarks string `json:"remarks" binding:"max=2000"`
}

// Validate validates the TransitionRequest
func (r *TransitionRequest) Validate() (bool, string) {
	action := domain.Action(r.Action)
	if !action.IsValid() {
		return false, "Unknown workflow action: " + r.Action
	}
	if action == domain.ActionReject && strings.TrimSpace(r.Remarks) == "" {
		return false, "Remarks are required when rejecting"
	}
	return true, ""
}

// UpdateWishListRequest replaces a participant's requested meetings
type UpdateWishListRequest struct {
	MeetingIDs []string `json:"meeting_ids"`
}

// ParticipantDocumentResponse represents one uploaded document
type ParticipantDocumentResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes"`
	UploadedAt  string `json:"uploaded_at"`
}

// ParticipantResponse represents the response for a participant
type ParticipantResponse struct {
	ID                string                         `json:"id"`
	TenantID          string                         `json:"tenant_id"`
	EventID           string                         `json:"event_id"`
	ParticipantTypeID string                         `json:"participant_type_id"`
	FirstName         string                         `json:"first_name"`
	LastName          string                         `json:"last_name"`
	Email             string                         `json:"email"`
	Phone             string                         `json:"phone,omitempty"`
	PassportNumber    string                         `json:"passport_number,omitempty"`
	Nationality       string                         `json:"nationality,omitempty"`
	Organization      string                         `json:"organization,omitempty"`
	JobTitle          string                         `json:"job_title,omitempty"`
	Status            string                         `json:"status"`
	StepID            *string                        `json:"step_id,omitempty"`
	StepName          string                         `json:"step_name,omitempty"`
	WishMeetingIDs    []string                       `json:"wish_meeting_ids,omitempty"`
	RegistrationCode  string                         `json:"registration_code"`
	Documents         []*ParticipantDocumentResponse `json:"documents,omitempty"`
	CreatedAt         string                         `json:"created_at"`
	UpdatedAt         string                         `json:"updated_at"`
}

// ParticipantStatusResponse is the public lookup view keyed by registration
// code: status only, no personal detail beyond the name.
type ParticipantStatusResponse struct {
	RegistrationCode string `json:"registration_code"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Status           string `json:"status"`
	StepName         string `json:"step_name,omitempty"`
}

// QueueFilter represents pagination for the work queue
type QueueFilter struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// SetDefaults sets default values for pagination
func (f *QueueFilter) SetDefaults() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
}

// ToParticipantResponse converts a domain participant to its response form.
// stepName may be empty when the caller did not resolve the current step.
func ToParticipantResponse(p *domain.Participant, stepName string) *ParticipantResponse {
	docs := make([]*ParticipantDocumentResponse, 0, len(p.Documents))
	for i := range p.Documents {
		d := &p.Documents[i]
		docs = append(docs, &ParticipantDocumentResponse{
			ID:          d.ID,
			Kind:        string(d.Kind),
			FileName:    d.FileName,
			ContentType: d.ContentType,
			SizeBytes:   d.SizeBytes,
			UploadedAt:  d.UploadedAt.Format(time.RFC3339),
		})
	}
	return &ParticipantResponse{
		ID:                p.ID,
		TenantID:          p.TenantID,
		EventID:           p.EventID,
		ParticipantTypeID: p.ParticipantTypeID,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		Email:             p.Email,
		Phone:             p.Phone,
		PassportNumber:    p.PassportNumber,
		Nationality:       p.Nationality,
		Organization:      p.Organization,
		JobTitle:          p.JobTitle,
		Status:            string(p.Status),
		StepID:            p.StepID,
		StepName:          stepName,
		WishMeetingIDs:    p.WishIDs(),
		RegistrationCode:  p.RegistrationCode,
		Documents:         docs,
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         p.UpdatedAt.Format(time.RFC3339),
	}
}

// ToParticipantStatusResponse converts a participant to its public view
func ToParticipantStatusResponse(p *domain.Participant, stepName string) *ParticipantStatusResponse {
	return &ParticipantStatusResponse{
		RegistrationCode: p.RegistrationCode,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Status:           string(p.Status),
		StepName:         stepName,
	}
}
