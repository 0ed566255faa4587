package repository

import (
	"context"
	"errors"

	"github.com/shegerlabs/accreditation-service/internal/domain"
)

var (
	// ErrStaleTransition is returned when a conditional participant update
	// matches no row: the participant's step changed between read and write,
	// so the caller's view of the workflow position is stale.
	ErrStaleTransition = errors.New("participant step changed concurrently")

	// ErrDuplicate is returned when a uniqueness constraint is violated
	ErrDuplicate = errors.New("record already exists")
)

// TransitionUpdate describes an atomic workflow transition: the participant
// row is updated only if its current step still equals FromStepID, which
// degrades concurrent duplicate submissions into ErrStaleTransition instead
// of double-advances.
type TransitionUpdate struct {
	ParticipantID string
	FromStepID    string
	ToStepID      *string // nil = end of chain reached
	NewStatus     domain.ParticipantStatus
}

// TenantRepository defines persistence operations for tenants
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
	List(ctx context.Context, page, limit int, isActive *bool, search string) ([]*domain.Tenant, int, error)
	Update(ctx context.Context, tenant *domain.Tenant) error
	SoftDelete(ctx context.Context, id string) error
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// ParticipantTypeRepository defines persistence operations for participant types
type ParticipantTypeRepository interface {
	Create(ctx context.Context, pt *domain.ParticipantType) error
	GetByID(ctx context.Context, id string) (*domain.ParticipantType, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.ParticipantType, error)
	Update(ctx context.Context, pt *domain.ParticipantType) error
	Delete(ctx context.Context, id string) error
}

// EventRepository defines persistence operations for events
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	GetBySlug(ctx context.Context, tenantID, slug string) (*domain.Event, error)
	ListByTenant(ctx context.Context, tenantID string, page, limit int, status string) ([]*domain.Event, int, error)
	Update(ctx context.Context, event *domain.Event) error
	UpdateStatus(ctx context.Context, id, status string) error
	SoftDelete(ctx context.Context, id string) error
}

// WorkflowRepository defines persistence operations for workflows and steps
type WorkflowRepository interface {
	// Create persists a workflow with its steps in one transaction
	Create(ctx context.Context, workflow *domain.Workflow) error
	GetByID(ctx context.Context, id string) (*domain.Workflow, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Workflow, error)
	// Resolve returns every workflow configured for the triple. The caller
	// decides what more than one match means.
	Resolve(ctx context.Context, tenantID, eventID, participantTypeID string) ([]*domain.Workflow, error)
	GetStep(ctx context.Context, stepID string) (*domain.Step, error)
	Delete(ctx context.Context, id string) error
}

// ParticipantRepository defines persistence operations for participants.
// Create and Transition couple the participant write with its audit entry in
// a single transaction: a transition is not committed unless its audit record
// is.
type ParticipantRepository interface {
	Create(ctx context.Context, p *domain.Participant, entry *domain.AuditEntry) error
	GetByID(ctx context.Context, id string) (*domain.Participant, error)
	GetByRegistrationCode(ctx context.Context, code string) (*domain.Participant, error)
	// ListByStepRoles returns non-terminal participants whose current step is
	// bound to one of the given roles — the actor's work queue.
	ListByStepRoles(ctx context.Context, tenantID string, roles []string, page, limit int) ([]*domain.Participant, int, error)
	Transition(ctx context.Context, t *TransitionUpdate, entry *domain.AuditEntry) error
	UpdateWishList(ctx context.Context, id, wishList string) error
	AddDocument(ctx context.Context, doc *domain.ParticipantDocument) error
}

// AuditRepository defines persistence operations for the append-only audit log
type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
	ListByEntity(ctx context.Context, entityType, entityID string, page, limit int) ([]*domain.AuditEntry, int, error)
	List(ctx context.Context, page, limit int, action, actorID string) ([]*domain.AuditEntry, int, error)
}
