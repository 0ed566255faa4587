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
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrRoleMismatch is returned when the actor's roles do not include the
	// current step's bound role. Handlers present it exactly like a missing
	// participant so role probing leaks nothing.
	ErrRoleMismatch = errors.New("participant not actionable by this role")
	// ErrInvalidAction is returned when the submitted action is not valid at
	// the participant's current step.
	ErrInvalidAction = errors.New("action not valid at current step")
	// ErrRemarksRequired is returned when a rejection arrives without a reason
	ErrRemarksRequired = errors.New("remarks are required when rejecting")
	// ErrWorkflowMisconfigured is returned when the participant's current step
	// cannot be loaded; the chain was edited underneath live participants.
	ErrWorkflowMisconfigured = errors.New("participant references an unknown workflow step")
)

// EngineService is the workflow engine: the single entry point that mutates a
// participant's step and status. Every successful transition writes exactly
// one audit entry, committed atomically with the participant update.
type EngineService interface {
	// Transition applies one workflow action to a participant on behalf of an
	// actor and returns the updated participant.
	Transition(ctx context.Context, participantID, actorID string, actorRoles []string, req *dto.TransitionRequest) (*dto.ParticipantResponse, error)
}

// engineService implements EngineService
type engineService struct {
	participantRepo repository.ParticipantRepository
	workflowRepo    repository.WorkflowRepository
}

// NewEngineService creates a new EngineService
func NewEngineService(participantRepo repository.ParticipantRepository, workflowRepo repository.WorkflowRepository) EngineService {
	return &engineService{
		participantRepo: participantRepo,
		workflowRepo:    workflowRepo,
	}
}

// Transition applies one workflow action to a participant. The write is a
// compare-and-swap on the step the actor saw: a concurrent transition that
// moved the participant first turns this one into ErrStaleTransition instead
// of a double advance.
func (s *engineService) Transition(ctx context.Context, participantID, actorID string, actorRoles []string, req *dto.TransitionRequest) (*dto.ParticipantResponse, error) {
	if valid, errMsg := req.Validate(); !valid {
		if domain.Action(req.Action) == domain.ActionReject {
			return nil, ErrRemarksRequired
		}
		return nil, errors.New(errMsg)
	}
	action := domain.Action(req.Action)

	p, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrParticipantNotFound
	}

	// A printed participant is retired: no actor or role can act on it, and
	// the failure is indistinguishable from the participant not existing.
	if p.Status.IsTerminal() {
		return nil, ErrParticipantNotFound
	}
	if p.StepID == nil {
		return nil, ErrInvalidAction
	}

	step, err := s.workflowRepo.GetStep(ctx, *p.StepID)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return nil, ErrWorkflowMisconfigured
	}

	if !roleMatches(actorRoles, step.RoleName) {
		return nil, ErrRoleMismatch
	}
	if !actionAllowedAt(step, action) {
		return nil, ErrInvalidAction
	}

	update, description := s.buildTransition(p, step, action, req.Remarks)
	entry := &domain.AuditEntry{
		ID:          uuid.New().String(),
		Action:      string(action),
		EntityType:  domain.EntityTypeParticipant,
		EntityID:    p.ID,
		ActorID:     actorID,
		Description: description,
		Metadata: map[string]interface{}{
			"from_step": *p.StepID,
			"status":    string(update.NewStatus),
		},
		CreatedAt: time.Now(),
	}

	if err := s.participantRepo.Transition(ctx, update, entry); err != nil {
		return nil, err
	}

	updated, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrParticipantNotFound
	}

	stepName := ""
	if updated.StepID != nil {
		if cur, err := s.workflowRepo.GetStep(ctx, *updated.StepID); err == nil && cur != nil {
			stepName = cur.Name
		}
	}
	return dto.ToParticipantResponse(updated, stepName), nil
}

// buildTransition maps the action onto the next (step, status) pair.
// APPROVE follows the forward link; REJECT and PRINT leave the step in place
// so the position stays addressable for the audit history.
func (s *engineService) buildTransition(p *domain.Participant, step *domain.Step, action domain.Action, remarks string) (*repository.TransitionUpdate, string) {
	update := &repository.TransitionUpdate{
		ParticipantID: p.ID,
		FromStepID:    step.ID,
	}

	switch action {
	case domain.ActionReject:
		stepID := step.ID
		update.ToStepID = &stepID
		update.NewStatus = domain.StatusRejected
		return update, "Request Rejected: " + remarks

	case domain.ActionPrint:
		stepID := step.ID
		update.ToStepID = &stepID
		update.NewStatus = domain.StatusPrinted
		return update, remarks

	default: // REVIEW and APPROVE advance
		update.ToStepID = step.NextStepID
		if step.NextStepID == nil {
			update.NewStatus = domain.StatusApproved
		} else {
			update.NewStatus = domain.StatusInProgress
		}
		return update, remarks
	}
}

// actionAllowedAt reports whether the submitted action is valid at the step.
// PRINT only fires on a PRINT step; a PRINT step accepts nothing else except
// REJECT; review and approval steps take forward actions and REJECT.
func actionAllowedAt(step *domain.Step, action domain.Action) bool {
	if action == domain.ActionReject {
		return true
	}
	if step.Action == domain.ActionPrint {
		return action == domain.ActionPrint
	}
	return action == domain.ActionReview || action == domain.ActionApprove
}

func roleMatches(actorRoles []string, required string) bool {
	for _, role := range actorRoles {
		if role == required {
			return true
		}
	}
	return false
}
