package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shegerlabs/accreditation-service/internal/domain"
)

// In-memory implementations backing the service-layer unit tests. They mirror
// the transactional semantics of the Postgres repositories: Transition is a
// compare-and-swap on the current step, and the audit entry is recorded only
// when the swap succeeds.

// MemoryWorkflowRepository is an in-memory implementation of WorkflowRepository
type MemoryWorkflowRepository struct {
	mu        sync.RWMutex
	workflows map[string]*domain.Workflow
}

// NewMemoryWorkflowRepository creates a new in-memory workflow repository
func NewMemoryWorkflowRepository() *MemoryWorkflowRepository {
	return &MemoryWorkflowRepository{workflows: make(map[string]*domain.Workflow)}
}

// Create persists a workflow with its steps
func (r *MemoryWorkflowRepository) Create(ctx context.Context, workflow *domain.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workflows[workflow.ID]; exists {
		return ErrDuplicate
	}
	r.workflows[workflow.ID] = copyWorkflow(workflow)
	return nil
}

// GetByID retrieves a workflow by ID
func (r *MemoryWorkflowRepository) GetByID(ctx context.Context, id string) (*domain.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workflow, exists := r.workflows[id]
	if !exists {
		return nil, nil
	}
	return copyWorkflow(workflow), nil
}

// ListByEvent retrieves all workflows for an event
func (r *MemoryWorkflowRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Workflow
	for _, workflow := range r.workflows {
		if workflow.EventID == eventID {
			result = append(result, copyWorkflow(workflow))
		}
	}
	sortWorkflows(result)
	return result, nil
}

// Resolve returns every workflow configured for the triple
func (r *MemoryWorkflowRepository) Resolve(ctx context.Context, tenantID, eventID, participantTypeID string) ([]*domain.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Workflow
	for _, workflow := range r.workflows {
		if workflow.TenantID == tenantID && workflow.EventID == eventID && workflow.ParticipantTypeID == participantTypeID {
			result = append(result, copyWorkflow(workflow))
		}
	}
	sortWorkflows(result)
	return result, nil
}

// GetStep retrieves a single step by ID
func (r *MemoryWorkflowRepository) GetStep(ctx context.Context, stepID string) (*domain.Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, workflow := range r.workflows {
		for i := range workflow.Steps {
			if workflow.Steps[i].ID == stepID {
				s := workflow.Steps[i]
				return &s, nil
			}
		}
	}
	return nil, nil
}

// Delete removes a workflow
func (r *MemoryWorkflowRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workflows[id]; !exists {
		return fmt.Errorf("workflow not found")
	}
	delete(r.workflows, id)
	return nil
}

func copyWorkflow(w *domain.Workflow) *domain.Workflow {
	copied := *w
	copied.Steps = make([]domain.Step, len(w.Steps))
	copy(copied.Steps, w.Steps)
	return &copied
}

func sortWorkflows(ws []*domain.Workflow) {
	sort.Slice(ws, func(i, j int) bool {
		return ws[i].CreatedAt.Before(ws[j].CreatedAt)
	})
}

// MemoryParticipantRepository is an in-memory implementation of ParticipantRepository
type MemoryParticipantRepository struct {
	mu           sync.RWMutex
	participants map[string]*domain.Participant
	byCode       map[string]string // registrationCode -> participantID
	steps        *MemoryWorkflowRepository
	audit        *MemoryAuditRepository
}

// NewMemoryParticipantRepository creates a new in-memory participant
// repository. The workflow repository resolves current-step roles for the
// work queue; the audit repository receives coupled audit writes.
func NewMemoryParticipantRepository(steps *MemoryWorkflowRepository, audit *MemoryAuditRepository) *MemoryParticipantRepository {
	return &MemoryParticipantRepository{
		participants: make(map[string]*domain.Participant),
		byCode:       make(map[string]string),
		steps:        steps,
		audit:        audit,
	}
}

// Create persists the participant and its registration audit entry
func (r *MemoryParticipantRepository) Create(ctx context.Context, p *domain.Participant, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.participants[p.ID]; exists {
		return ErrDuplicate
	}
	if _, exists := r.byCode[p.RegistrationCode]; exists {
		return ErrDuplicate
	}

	r.participants[p.ID] = copyParticipant(p)
	r.byCode[p.RegistrationCode] = p.ID

	if entry != nil && r.audit != nil {
		if err := r.audit.Record(ctx, entry); err != nil {
			delete(r.participants, p.ID)
			delete(r.byCode, p.RegistrationCode)
			return err
		}
	}
	return nil
}

// GetByID retrieves a participant by ID
func (r *MemoryParticipantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.participants[id]
	if !exists || p.DeletedAt != nil {
		return nil, nil
	}
	return copyParticipant(p), nil
}

// GetByRegistrationCode retrieves a participant by its public lookup key
func (r *MemoryParticipantRepository) GetByRegistrationCode(ctx context.Context, code string) (*domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byCode[code]
	if !exists {
		return nil, nil
	}
	p := r.participants[id]
	if p == nil || p.DeletedAt != nil {
		return nil, nil
	}
	return copyParticipant(p), nil
}

// ListByStepRoles returns non-terminal participants whose current step role
// matches one of the given roles
func (r *MemoryParticipantRepository) ListByStepRoles(ctx context.Context, tenantID string, roles []string, page, limit int) ([]*domain.Participant, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roleSet := make(map[string]bool, len(roles))
	for _, role := range roles {
		roleSet[role] = true
	}

	var matched []*domain.Participant
	for _, p := range r.participants {
		if p.TenantID != tenantID || p.DeletedAt != nil || p.Status.IsTerminal() || p.StepID == nil {
			continue
		}
		step, err := r.steps.GetStep(ctx, *p.StepID)
		if err != nil || step == nil {
			continue
		}
		if roleSet[step.RoleName] {
			matched = append(matched, copyParticipant(p))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []*domain.Participant{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// Transition applies a compare-and-swap on the participant's current step
func (r *MemoryParticipantRepository) Transition(ctx context.Context, t *TransitionUpdate, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.participants[t.ParticipantID]
	if !exists || p.DeletedAt != nil {
		return ErrStaleTransition
	}
	if p.StepID == nil || *p.StepID != t.FromStepID {
		return ErrStaleTransition
	}

	p.StepID = t.ToStepID
	p.Status = t.NewStatus
	p.UpdatedAt = time.Now()

	if entry != nil && r.audit != nil {
		return r.audit.Record(ctx, entry)
	}
	return nil
}

// UpdateWishList replaces the participant's wishlist
func (r *MemoryParticipantRepository) UpdateWishList(ctx context.Context, id, wishList string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.participants[id]
	if !exists || p.DeletedAt != nil {
		return fmt.Errorf("participant not found")
	}
	p.WishList = strings.TrimSpace(wishList)
	p.UpdatedAt = time.Now()
	return nil
}

// AddDocument attaches an uploaded document to a participant
func (r *MemoryParticipantRepository) AddDocument(ctx context.Context, doc *domain.ParticipantDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.participants[doc.ParticipantID]
	if !exists {
		return fmt.Errorf("participant not found")
	}
	p.Documents = append(p.Documents, *doc)
	return nil
}

func copyParticipant(p *domain.Participant) *domain.Participant {
	copied := *p
	if p.StepID != nil {
		stepID := *p.StepID
		copied.StepID = &stepID
	}
	copied.Documents = make([]domain.ParticipantDocument, len(p.Documents))
	copy(copied.Documents, p.Documents)
	return &copied
}

// MemoryAuditRepository is an in-memory implementation of AuditRepository
type MemoryAuditRepository struct {
	mu      sync.RWMutex
	entries []*domain.AuditEntry
}

// NewMemoryAuditRepository creates a new in-memory audit repository
func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{entries: make([]*domain.AuditEntry, 0)}
}

// Record appends an audit entry
func (r *MemoryAuditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

// ListByEntity retrieves audit entries for one entity, oldest first
func (r *MemoryAuditRepository) ListByEntity(ctx context.Context, entityType, entityID string, page, limit int) ([]*domain.AuditEntry, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.AuditEntry
	for _, e := range r.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			copied := *e
			matched = append(matched, &copied)
		}
	}

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []*domain.AuditEntry{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// List retrieves audit entries with optional filters, newest first
func (r *MemoryAuditRepository) List(ctx context.Context, page, limit int, action, actorID string) ([]*domain.AuditEntry, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.AuditEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if action != "" && e.Action != action {
			continue
		}
		if actorID != "" && e.ActorID != actorID {
			continue
		}
		copied := *e
		matched = append(matched, &copied)
	}

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []*domain.AuditEntry{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}
