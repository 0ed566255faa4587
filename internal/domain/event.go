package domain

import "time"

// Event represents a time-boxed accreditation campaign belonging to a tenant
type Event struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description,omitempty"`
	VenueName    string     `json:"venue_name,omitempty"`
	VenueAddress string     `json:"venue_address,omitempty"`
	City         string     `json:"city,omitempty"`
	Country      string     `json:"country,omitempty"`
	StartAt      *time.Time `json:"start_at,omitempty"`
	EndAt        *time.Time `json:"end_at,omitempty"`
	Status       string     `json:"status"` // draft, published, completed
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Event lifecycle status constants
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCompleted = "completed"
)

// eventStatusTransitions defines the allowed lifecycle moves.
// The lifecycle only runs forward: draft -> published -> completed.
var eventStatusTransitions = map[string][]string{
	EventStatusDraft:     {EventStatusPublished},
	EventStatusPublished: {EventStatusCompleted},
	EventStatusCompleted: {},
}

// CanTransitionTo returns true if the event lifecycle move is allowed
func (e *Event) CanTransitionTo(status string) bool {
	allowed, ok := eventStatusTransitions[e.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}

// IsOpenForRegistration returns true if the event accepts new registrations
func (e *Event) IsOpenForRegistration() bool {
	return e.Status == EventStatusPublished && e.DeletedAt == nil
}

// Meeting is a session within an event that participants can request access
// to through their wishlist
type Meeting struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	Name      string     `json:"name"`
	Room      string     `json:"room,omitempty"`
	StartAt   *time.Time `json:"start_at,omitempty"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
