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
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrWorkflowNotConfigured is returned when no workflow exists for the
	// (tenant, event, participant type) triple.
	ErrWorkflowNotConfigured = errors.New("no workflow configured for this participant type")
	// ErrWorkflowAmbiguous is returned when more than one workflow matches the
	// triple. Resolution must be deterministic, so this is a configuration
	// error surfaced loudly rather than picked from arbitrarily.
	ErrWorkflowAmbiguous = errors.New("multiple workflows configured for this participant type")
)

// WorkflowService defines the interface for workflow configuration operations
type WorkflowService interface {
	// Create assembles, validates and persists a workflow chain
	Create(ctx context.Context, req *dto.CreateWorkflowRequest) (*dto.WorkflowResponse, error)
	// GetByID retrieves a workflow by ID
	GetByID(ctx context.Context, id string) (*dto.WorkflowResponse, error)
	// ListByEvent retrieves all workflows configured for an event
	ListByEvent(ctx context.Context, eventID string) ([]*dto.WorkflowResponse, error)
	// Resolve returns the single workflow for the triple
	Resolve(ctx context.Context, tenantID, eventID, participantTypeID string) (*domain.Workflow, error)
	// Delete removes a workflow and its steps
	Delete(ctx context.Context, id string) error
}

// workflowService implements WorkflowService
type workflowService struct {
	workflowRepo repository.WorkflowRepository
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(workflowRepo repository.WorkflowRepository) WorkflowService {
	return &workflowService{
		workflowRepo: workflowRepo,
	}
}

// Create assembles, validates and persists a workflow chain. Steps arrive in
// chain order; each one is linked to its successor and the chain is validated
// before anything is written, so a participant can never be bound to a
// misconfigured workflow.
func (s *workflowService) Create(ctx context.Context, req *dto.CreateWorkflowRequest) (*dto.WorkflowResponse, error) {
	if valid, errMsg := req.Validate(); !valid {
		return nil, errors.New(errMsg)
	}

	existing, err := s.workflowRepo.Resolve(ctx, req.TenantID, req.EventID, req.ParticipantTypeID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrWorkflowAmbiguous
	}

	now := time.Now()
	workflow := &domain.Workflow{
		ID:                uuid.New().String(),
		TenantID:          req.TenantID,
		EventID:           req.EventID,
		ParticipantTypeID: req.ParticipantTypeID,
		Name:              req.Name,
		Steps:             make([]domain.Step, len(req.Steps)),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for i, stepReq := range req.Steps {
		workflow.Steps[i] = domain.Step{
			ID:         uuid.New().String(),
			WorkflowID: workflow.ID,
			Position:   i,
			Name:       stepReq.Name,
			RoleName:   stepReq.RoleName,
			Action:     domain.Action(stepReq.Action),
			CreatedAt:  now,
		}
	}
	for i := 0; i < len(workflow.Steps)-1; i++ {
		next := workflow.Steps[i+1].ID
		workflow.Steps[i].NextStepID = &next
	}

	if err := workflow.Validate(); err != nil {
		return nil, err
	}

	if err := s.workflowRepo.Create(ctx, workflow); err != nil {
		return nil, err
	}
	return dto.ToWorkflowResponse(workflow), nil
}

// GetByID retrieves a workflow by ID
func (s *workflowService) GetByID(ctx context.Context, id string) (*dto.WorkflowResponse, error) {
	workflow, err := s.workflowRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}
	return dto.ToWorkflowResponse(workflow), nil
}

// ListByEvent retrieves all workflows configured for an event
func (s *workflowService) ListByEvent(ctx context.Context, eventID string) ([]*dto.WorkflowResponse, error) {
	workflows, err := s.workflowRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return dto.ToWorkflowResponses(workflows), nil
}

// Resolve returns the single workflow for the triple. Zero matches means the
// type is not set up for the event; more than one is a configuration error.
func (s *workflowService) Resolve(ctx context.Context, tenantID, eventID, participantTypeID string) (*domain.Workflow, error) {
	workflows, err := s.workflowRepo.Resolve(ctx, tenantID, eventID, participantTypeID)
	if err != nil {
		return nil, err
	}
	switch len(workflows) {
	case 0:
		return nil, ErrWorkflowNotConfigured
	case 1:
		return workflows[0], nil
	default:
		return nil, ErrWorkflowAmbiguous
	}
}

// Delete removes a workflow and its steps
func (s *workflowService) Delete(ctx context.Context, id string) error {
	workflow, err := s.workflowRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if workflow == nil {
		return ErrWorkflowNotFound
	}
	return s.workflowRepo.Delete(ctx, id)
}
