package dto

import "strings"

// Wizard step names in submission order
const (
	WizardStepGeneral      = "general"
	WizardStepProfessional = "professional"
	WizardStepWishlist     = "wishlist"
	WizardStepDocuments    = "documents"
)

// WizardStepOrder is the canonical step sequence used to derive the current
// step from which steps already hold data
var WizardStepOrder = []string{
	WizardStepGeneral,
	WizardStepProfessional,
	WizardStepWishlist,
	WizardStepDocuments,
}

// StartWizardRequest opens a registration draft for one event and type
type StartWizardRequest struct {
	EventID           string `json:"event_id" binding:"required"`
	ParticipantTypeID string `json:"participant_type_id" binding:"required"`
}

// WizardGeneralRequest is the identity step of the wizard
type WizardGeneralRequest struct {
	FirstName      string `json:"first_name" binding:"required,min=1,max=100"`
	LastName       string `json:"last_name" binding:"required,min=1,max=100"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"omitempty,max=50"`
	PassportNumber string `json:"passport_number" binding:"omitempty,max=50"`
	Nationality    string `json:"nationality" binding:"omitempty,max=100"`
}

// Validate validates the WizardGeneralRequest
func (r *WizardGeneralRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return false, "First and last name are required"
	}
	if !strings.Contains(r.Email, "@") {
		return false, "A valid email is required"
	}
	return true, ""
}

// WizardProfessionalRequest is the affiliation step of the wizard
type WizardProfessionalRequest struct {
	Organization string `json:"organization" binding:"required,min=1,max=200"`
	JobTitle     string `json:"job_title" binding:"omitempty,max=200"`
}

// Validate validates the WizardProfessionalRequest
func (r *WizardProfessionalRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Organization) == "" {
		return false, "Organization is required"
	}
	return true, ""
}

// WizardWishlistRequest is the meeting-selection step of the wizard
type WizardWishlistRequest struct {
	MeetingIDs []string `json:"meeting_ids"`
}

// WizardDocumentInfo describes one document already uploaded into the draft
type WizardDocumentInfo struct {
	Kind        string `json:"kind"`
	FileName    string `json:"file_name"`
	Container   string `json:"container"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes"`
}

// WizardStateResponse is the full draft state returned after every wizard
// operation so the client can resume at any point. CurrentStep is the index
// into WizardStepOrder of the first step that holds no data yet.
type WizardStateResponse struct {
	SessionID         string                     `json:"session_id"`
	EventID           string                     `json:"event_id"`
	ParticipantTypeID string                     `json:"participant_type_id"`
	General           *WizardGeneralRequest      `json:"general,omitempty"`
	Professional      *WizardProfessionalRequest `json:"professional,omitempty"`
	Documents         []WizardDocumentInfo       `json:"documents,omitempty"`
	MeetingIDs        []string                   `json:"meeting_ids,omitempty"`
	MissingDocuments  []string                   `json:"missing_documents"`
	CompletedSteps    []string                   `json:"completed_steps"`
	CurrentStep       int                        `json:"current_step"`
	HasData           bool                       `json:"has_data"`
	ExpiresInSeconds  int64                      `json:"expires_in_seconds"`
}

// CompleteWizardResponse is returned when a draft is committed into a
// participant record
type CompleteWizardResponse struct {
	ParticipantID    string `json:"participant_id"`
	RegistrationCode string `json:"registration_code"`
	Status           string `json:"status"`
}
