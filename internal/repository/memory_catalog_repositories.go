package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shegerlabs/accreditation-service/internal/domain"
)

// MemoryTenantRepository is an in-memory implementation of TenantRepository
type MemoryTenantRepository struct {
	mu      sync.RWMutex
	tenants map[string]*domain.Tenant
}

// NewMemoryTenantRepository creates a new in-memory tenant repository
func NewMemoryTenantRepository() *MemoryTenantRepository {
	return &MemoryTenantRepository{tenants: make(map[string]*domain.Tenant)}
}

// Create persists a tenant
func (r *MemoryTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tenants {
		if t.Slug == tenant.Slug && t.DeletedAt == nil {
			return ErrDuplicate
		}
	}
	copied := *tenant
	r.tenants[tenant.ID] = &copied
	return nil
}

// GetByID retrieves a tenant by ID
func (r *MemoryTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tenants[id]
	if !exists || t.DeletedAt != nil {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

// GetBySlug retrieves a tenant by slug
func (r *MemoryTenantRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tenants {
		if t.Slug == slug && t.DeletedAt == nil {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

// List retrieves tenants with pagination and filters
func (r *MemoryTenantRepository) List(ctx context.Context, page, limit int, isActive *bool, search string) ([]*domain.Tenant, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Tenant
	for _, t := range r.tenants {
		if t.DeletedAt != nil {
			continue
		}
		if isActive != nil && t.IsActive != *isActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(search)) {
			continue
		}
		copied := *t
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []*domain.Tenant{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// Update updates a tenant
func (r *MemoryTenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tenants[tenant.ID]; !exists {
		return nil
	}
	copied := *tenant
	r.tenants[tenant.ID] = &copied
	return nil
}

// SoftDelete marks a tenant as deleted
func (r *MemoryTenantRepository) SoftDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.tenants[id]
	if !exists || t.DeletedAt != nil {
		return nil
	}
	now := time.Now()
	t.DeletedAt = &now
	return nil
}

// ExistsBySlug reports whether an active tenant holds the slug
func (r *MemoryTenantRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	t, err := r.GetBySlug(ctx, slug)
	if err != nil {
		return false, err
	}
	return t != nil, nil
}

// MemoryParticipantTypeRepository is an in-memory implementation of
// ParticipantTypeRepository
type MemoryParticipantTypeRepository struct {
	mu    sync.RWMutex
	types map[string]*domain.ParticipantType
}

// NewMemoryParticipantTypeRepository creates a new in-memory participant type repository
func NewMemoryParticipantTypeRepository() *MemoryParticipantTypeRepository {
	return &MemoryParticipantTypeRepository{types: make(map[string]*domain.ParticipantType)}
}

// Create persists a participant type
func (r *MemoryParticipantTypeRepository) Create(ctx context.Context, pt *domain.ParticipantType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.types {
		if existing.TenantID == pt.TenantID && existing.Slug == pt.Slug {
			return ErrDuplicate
		}
	}
	r.types[pt.ID] = copyParticipantType(pt)
	return nil
}

// GetByID retrieves a participant type by ID
func (r *MemoryParticipantTypeRepository) GetByID(ctx context.Context, id string) (*domain.ParticipantType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pt, exists := r.types[id]
	if !exists {
		return nil, nil
	}
	return copyParticipantType(pt), nil
}

// ListByTenant retrieves all participant types of a tenant
func (r *MemoryParticipantTypeRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.ParticipantType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.ParticipantType
	for _, pt := range r.types {
		if pt.TenantID == tenantID {
			result = append(result, copyParticipantType(pt))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Update updates a participant type
func (r *MemoryParticipantTypeRepository) Update(ctx context.Context, pt *domain.ParticipantType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[pt.ID]; !exists {
		return nil
	}
	r.types[pt.ID] = copyParticipantType(pt)
	return nil
}

// Delete removes a participant type
func (r *MemoryParticipantTypeRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.types, id)
	return nil
}

func copyParticipantType(pt *domain.ParticipantType) *domain.ParticipantType {
	copied := *pt
	copied.RequiredDocuments = make([]domain.DocumentKind, len(pt.RequiredDocuments))
	copy(copied.RequiredDocuments, pt.RequiredDocuments)
	return &copied
}

// MemoryEventRepository is an in-memory implementation of EventRepository
type MemoryEventRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.Event
}

// NewMemoryEventRepository creates a new in-memory event repository
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{events: make(map[string]*domain.Event)}
}

// Create persists an event
func (r *MemoryEventRepository) Create(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.events {
		if e.TenantID == event.TenantID && e.Slug == event.Slug && e.DeletedAt == nil {
			return ErrDuplicate
		}
	}
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

// GetByID retrieves an event by ID
func (r *MemoryEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.events[id]
	if !exists || e.DeletedAt != nil {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

// GetBySlug retrieves an event by slug within a tenant
func (r *MemoryEventRepository) GetBySlug(ctx context.Context, tenantID, slug string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.events {
		if e.TenantID == tenantID && e.Slug == slug && e.DeletedAt == nil {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

// ListByTenant retrieves a tenant's events with pagination
func (r *MemoryEventRepository) ListByTenant(ctx context.Context, tenantID string, page, limit int, status string) ([]*domain.Event, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Event
	for _, e := range r.events {
		if e.TenantID != tenantID || e.DeletedAt != nil {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		copied := *e
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []*domain.Event{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// Update updates an event
func (r *MemoryEventRepository) Update(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[event.ID]; !exists {
		return nil
	}
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

// UpdateStatus updates the event lifecycle status
func (r *MemoryEventRepository) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.events[id]
	if !exists {
		return nil
	}
	e.Status = status
	if status == domain.EventStatusPublished && e.PublishedAt == nil {
		now := time.Now()
		e.PublishedAt = &now
	}
	e.UpdatedAt = time.Now()
	return nil
}

// SoftDelete marks an event as deleted
func (r *MemoryEventRepository) SoftDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.events[id]
	if !exists || e.DeletedAt != nil {
		return nil
	}
	now := time.Now()
	e.DeletedAt = &now
	return nil
}
