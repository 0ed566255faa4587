package domain

import (
	"strings"
	"time"
)

// ParticipantStatus represents the workflow-level status of a participant
type ParticipantStatus string

const (
	StatusInProgress ParticipantStatus = "INPROGRESS"
	StatusApproved   ParticipantStatus = "APPROVED"
	StatusRejected   ParticipantStatus = "REJECTED"
	StatusPrinted    ParticipantStatus = "PRINTED"
)

// IsValid returns true if the status is a known participant status
func (s ParticipantStatus) IsValid() bool {
	switch s {
	case StatusInProgress, StatusApproved, StatusRejected, StatusPrinted:
		return true
	}
	return false
}

// IsTerminal returns true once no further workflow transition is valid
func (s ParticipantStatus) IsTerminal() bool {
	return s == StatusPrinted
}

// DocumentKind classifies an uploaded supporting document
type DocumentKind string

const (
	DocumentPhoto    DocumentKind = "PHOTO"
	DocumentPassport DocumentKind = "PASSPORT"
	DocumentLetter   DocumentKind = "LETTER"
)

// IsValid returns true if the kind is a known document kind
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentPhoto, DocumentPassport, DocumentLetter:
		return true
	}
	return false
}

// ParticipantDocument is one uploaded artifact owned by a single participant.
// The blob lives in external storage addressed by (container, file name);
// bytes are never embedded in the record.
type ParticipantDocument struct {
	ID            string       `json:"id"`
	ParticipantID string       `json:"participant_id"`
	Kind          DocumentKind `json:"kind"`
	Container     string       `json:"container"`
	FileName      string       `json:"file_name"`
	ContentType   string       `json:"content_type,omitempty"`
	SizeBytes     int64        `json:"size_bytes"`
	UploadedAt    time.Time    `json:"uploaded_at"`
}

// Participant is the registrant entity progressing through a workflow.
// Status and StepID are mutated exclusively by the workflow engine after
// creation; the record is never hard-deleted.
type Participant struct {
	ID                string                `json:"id"`
	TenantID          string                `json:"tenant_id"`
	EventID           string                `json:"event_id"`
	ParticipantTypeID string                `json:"participant_type_id"`
	FirstName         string                `json:"first_name"`
	LastName          string                `json:"last_name"`
	Email             string                `json:"email"`
	Phone             string                `json:"phone,omitempty"`
	PassportNumber    string                `json:"passport_number,omitempty"`
	Nationality       string                `json:"nationality,omitempty"`
	Organization      string                `json:"organization,omitempty"`
	JobTitle          string                `json:"job_title,omitempty"`
	Status            ParticipantStatus     `json:"status"`
	StepID            *string               `json:"step_id,omitempty"`
	WishList          string                `json:"wish_list,omitempty"` // comma-joined meeting IDs
	RegistrationCode  string                `json:"registration_code"`
	Documents         []ParticipantDocument `json:"documents,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	DeletedAt         *time.Time            `json:"deleted_at,omitempty"`
}

// WishIDs splits the comma-joined wishlist into meeting IDs
func (p *Participant) WishIDs() []string {
	if p.WishList == "" {
		return nil
	}
	parts := strings.Split(p.WishList, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// SetWishIDs joins meeting IDs into the stored wishlist form
func (p *Participant) SetWishIDs(ids []string) {
	p.WishList = strings.Join(ids, ",")
}

// HasDocument returns true if a document of the given kind was uploaded
func (p *Participant) HasDocument(kind DocumentKind) bool {
	for _, d := range p.Documents {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// MissingDocuments returns the required kinds not yet uploaded, preserving
// the required order
func (p *Participant) MissingDocuments(required []DocumentKind) []DocumentKind {
	var missing []DocumentKind
	for _, kind := range required {
		if !p.HasDocument(kind) {
			missing = append(missing, kind)
		}
	}
	return missing
}
