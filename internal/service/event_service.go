package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shegerlabs/accreditation-service/internal/domain"
	"github.com/shegerlabs/accreditation-service/internal/dto"
	"github.com/shegerlabs/accreditation-service/internal/repository"
)

var (
	ErrEventNotFound           = errors.New("event not found")
	ErrEventAlreadyExists      = errors.New("event with this slug already exists")
	ErrInvalidStatusTransition = errors.New("event status transition not allowed")
	ErrEventNotOpen            = errors.New("event is not open for registration")
)

// EventService defines the interface for event management operations
type EventService interface {
	// Create creates a new event in draft status
	Create(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	// GetByID retrieves an event by ID
	GetByID(ctx context.Context, id string) (*dto.EventResponse, error)
	// List retrieves a tenant's events with pagination
	List(ctx context.Context, tenantID string, filter *dto.EventListFilter) ([]*dto.EventResponse, int, error)
	// Update updates an event's details
	Update(ctx context.Context, id string, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	// UpdateStatus moves the event through its lifecycle
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateEventStatusRequest) (*dto.EventResponse, error)
	// Delete soft deletes an event
	Delete(ctx context.Context, id string) error
}

// eventService implements EventService
type eventService struct {
	eventRepo repository.EventRepository
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repository.EventRepository) EventService {
	return &eventService{
		eventRepo: eventRepo,
	}
}

// Create creates a new event in draft status
func (s *eventService) Create(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	if valid, errMsg := req.Validate(); !valid {
		return nil, errors.New(errMsg)
	}

	existing, err := s.eventRepo.GetBySlug(ctx, req.TenantID, req.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEventAlreadyExists
	}

	now := time.Now()
	event := &domain.Event{
		ID:           uuid.New().String(),
		TenantID:     req.TenantID,
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		VenueName:    req.VenueName,
		VenueAddress: req.VenueAddress,
		City:         req.City,
		Country:      req.Country,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		Status:       domain.EventStatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEventAlreadyExists
		}
		return nil, err
	}
	return dto.ToEventResponse(event), nil
}

// GetByID retrieves an event by ID
func (s *eventService) GetByID(ctx context.Context, id string) (*dto.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return dto.ToEventResponse(event), nil
}

// List retrieves a tenant's events with pagination
func (s *eventService) List(ctx context.Context, tenantID string, filter *dto.EventListFilter) ([]*dto.EventResponse, int, error) {
	filter.SetDefaults()

	events, total, err := s.eventRepo.ListByTenant(ctx, tenantID, filter.Page, filter.Limit, filter.Status)
	if err != nil {
		return nil, 0, err
	}
	return dto.ToEventResponses(events), total, nil
}

// Update updates an event's details
func (s *eventService) Update(ctx context.Context, id string, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	if valid, errMsg := req.Validate(); !valid {
		return nil, errors.New(errMsg)
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	if req.Name != "" {
		event.Name = req.Name
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if req.VenueName != "" {
		event.VenueName = req.VenueName
	}
	if req.VenueAddress != "" {
		event.VenueAddress = req.VenueAddress
	}
	if req.City != "" {
		event.City = req.City
	}
	if req.Country != "" {
		event.Country = req.Country
	}
	if req.StartAt != nil {
		event.StartAt = req.StartAt
	}
	if req.EndAt != nil {
		event.EndAt = req.EndAt
	}
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return dto.ToEventResponse(event), nil
}

// UpdateStatus moves the event through its lifecycle
func (s *eventService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateEventStatusRequest) (*dto.EventResponse, error) {
	if valid, errMsg := req.Validate(); !valid {
		return nil, errors.New(errMsg)
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	if !event.CanTransitionTo(req.Status) {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.eventRepo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, err
	}

	event.Status = req.Status
	event.UpdatedAt = time.Now()
	if req.Status == domain.EventStatusPublished && event.PublishedAt == nil {
		now := time.Now()
		event.PublishedAt = &now
	}
	return dto.ToEventResponse(event), nil
}

// Delete soft deletes an event
func (s *eventService) Delete(ctx context.Context, id string) error {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event == nil {
		return ErrEventNotFound
	}
	return s.eventRepo.SoftDelete(ctx, id)
}
