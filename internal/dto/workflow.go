package dto

import (
	"strings"
	"time"

	"github.com/shegerlabs/accreditation-service/internal/domain"
)

// CreateWorkflowStepRequest is one step definition inside a workflow creation
// request. Steps are submitted in chain order; the service links each step to
// the next one in the list.
type CreateWorkflowStepRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	RoleName string `json:"role_name" binding:"required,min=1,max=100"`
	Action   string `json:"action" binding:"required"`
}

// CreateWorkflowRequest represents the request to create a workflow
type CreateWorkflowRequest struct {
	Name              string                      `json:"name" binding:"required,min=1,max=200"`
	EventID           string                      `json:"event_id" binding:"required"`
	ParticipantTypeID string                      `json:"participant_type_id" binding:"required"`
	Steps             []CreateWorkflowStepRequest `json:"steps" binding:"required,min=1"`
	TenantID          string                      `json:"-"` // Set from context
}

// Validate validates the CreateWorkflowRequest. Structural validation of the
// assembled chain happens in domain.Workflow.Validate; this only checks the
// request shape.
func (r *CreateWorkflowRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Name) == "" {
		return false, "Workflow name is required"
	}
	if len(r.Steps) == 0 {
		return false, "Workflow requires at least one step"
	}
	for _, s := range r.Steps {
		if strings.TrimSpace(s.RoleName) == "" {
			return false, "Every step requires a role name"
		}
		if !domain.Action(s.Action).IsStepAction() {
			return false, "Invalid step action: " + s.Action
		}
	}
	return true, ""
}

// WorkflowStepResponse represents one step in a workflow response
type WorkflowStepResponse struct {
	ID         string  `json:"id"`
	Position   int     `json:"position"`
	Name       string  `json:"name"`
	RoleName   string  `json:"role_name"`
	Action     string  `json:"action"`
	NextStepID *string `json:"next_step_id,omitempty"`
}

// WorkflowResponse represents the response for a workflow
type WorkflowResponse struct {
	ID                string                  `json:"id"`
	TenantID          string                  `json:"tenant_id"`
	EventID           string                  `json:"event_id"`
	ParticipantTypeID string                  `json:"participant_type_id"`
	Name              string                  `json:"name"`
	Steps             []*WorkflowStepResponse `json:"steps"`
	CreatedAt         string                  `json:"created_at"`
	UpdatedAt         string                  `json:"updated_at"`
}

// ToWorkflowResponse converts a domain workflow to its response form
func ToWorkflowResponse(w *domain.Workflow) *WorkflowResponse {
	steps := make([]*WorkflowStepResponse, 0, len(w.Steps))
	for i := range w.Steps {
		s := &w.Steps[i]
		steps = append(steps, &WorkflowStepResponse{
			ID:         s.ID,
			Position:   s.Position,
			Name:       s.Name,
			RoleName:   s.RoleName,
			Action:     string(s.Action),
			NextStepID: s.NextStepID,
		})
	}
	return &WorkflowResponse{
		ID:                w.ID,
		TenantID:          w.TenantID,
		EventID:           w.EventID,
		ParticipantTypeID: w.ParticipantTypeID,
		Name:              w.Name,
		Steps:             steps,
		CreatedAt:         w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         w.UpdatedAt.Format(time.RFC3339),
	}
}

// ToWorkflowResponses converts a list of domain workflows
func ToWorkflowResponses(workflows []*domain.Workflow) []*WorkflowResponse {
	result := make([]*WorkflowResponse, 0, len(workflows))
	for _, w := range workflows {
		result = append(result, ToWorkflowResponse(w))
	}
	return result
}
