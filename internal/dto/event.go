package dto

import (
	"strings"
	"time"

	"github.com/shegerlabs/accreditation-service/internal/domain"
)

// CreateEventRequest represents the request to create a new event
type CreateEventRequest struct {
	Name         string     `json:"name" binding:"required,min=1,max=200"`
	Slug         string     `json:"slug" binding:"required,min=2,max=100"`
	Description  string     `json:"description" binding:"max=2000"`
	VenueName    string     `json:"venue_name" binding:"max=200"`
	VenueAddress string     `json:"venue_address" binding:"max=500"`
	City         string     `json:"city" binding:"max=100"`
	Country      string     `json:"country" binding:"max=100"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	TenantID     string     `json:"-"` // Set from context
}

// Validate validates the CreateEventRequest
func (r *CreateEventRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Name) == "" {
		return false, "Event name is required"
	}
	if !slugPattern.MatchString(r.Slug) {
		return false, "Slug must be lowercase letters, numbers and hyphens"
	}
	if r.StartAt != nil && r.EndAt != nil && r.EndAt.Before(*r.StartAt) {
		return false, "End time must be after start time"
	}
	return true, ""
}

// UpdateEventRequest represents the request to update an event
type UpdateEventRequest struct {
	Name         string     `json:"name" binding:"omitempty,min=1,max=200"`
	Description  string     `json:"description" binding:"max=2000"`
	VenueName    string     `json:"venue_name" binding:"max=200"`
	VenueAddress string     `json:"venue_address" binding:"max=500"`
	City         string     `json:"city" binding:"max=100"`
	Country      string     `json:"country" binding:"max=100"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
}

// Validate validates the UpdateEventRequest
func (r *UpdateEventRequest) Validate() (bool, string) {
	if r.StartAt != nil && r.EndAt != nil && r.EndAt.Before(*r.StartAt) {
		return false, "End time must be after start time"
	}
	return true, ""
}

// UpdateEventStatusRequest represents a lifecycle move request
type UpdateEventStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Validate validates the UpdateEventStatusRequest
func (r *UpdateEventStatusRequest) Validate() (bool, string) {
	switch r.Status {
	case domain.EventStatusPublished, domain.EventStatusCompleted:
		return true, ""
	case domain.EventStatusDraft:
		return false, "Events cannot move back to draft"
	}
	return false, "Unknown event status"
}

// EventResponse represents the response for an event
type EventResponse struct {
	ID           string `json:"id"`
	TenantID     string `json:"tenant_id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description,omitempty"`
	VenueName    string `json:"venue_name,omitempty"`
	VenueAddress string `json:"venue_address,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	StartAt      string `json:"start_at,omitempty"`
	EndAt        string `json:"end_at,omitempty"`
	Status       string `json:"status"`
	PublishedAt  string `json:"published_at,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// EventListFilter represents filters for listing events
type EventListFilter struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// SetDefaults sets default values for pagination
func (f *EventListFilter) SetDefaults() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
}

// ToEventResponse converts a domain event to its response form
func ToEventResponse(e *domain.Event) *EventResponse {
	resp := &EventResponse{
		ID:           e.ID,
		TenantID:     e.TenantID,
		Name:         e.Name,
		Slug:         e.Slug,
		Description:  e.Description,
		VenueName:    e.VenueName,
		VenueAddress: e.VenueAddress,
		City:         e.City,
		Country:      e.Country,
		Status:       e.Status,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    e.UpdatedAt.Format(time.RFC3339),
	}
	if e.StartAt != nil {
		resp.StartAt = e.StartAt.Format(time.RFC3339)
	}
	if e.EndAt != nil {
		resp.EndAt = e.EndAt.Format(time.RFC3339)
	}
	if e.PublishedAt != nil {
		resp.PublishedAt = e.PublishedAt.Format(time.RFC3339)
	}
	return resp
}

// ToEventResponses converts a list of domain events
func ToEventResponses(events []*domain.Event) []*EventResponse {
	result := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		result = append(result, ToEventResponse(e))
	}
	return result
}
