package domain

import (
	"errors"
	"fmt"
	"time"
)

// Action represents the operation a workflow step permits
type Action string

const (
	ActionReview  Action = "REVIEW"
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
	ActionPrint   Action = "PRINT"
)

// stepActions are the actions a step may be configured with. REJECT is a
// submission, not a step binding: any review step can reject, so a workflow
// never contains a step whose own action is REJECT.
var stepActions = map[Action]bool{
	ActionReview:  true,
	ActionApprove: true,
	ActionPrint:   true,
}

// IsValid returns true if the action is a known action
func (a Action) IsValid() bool {
	return a == ActionReview || a == ActionApprove || a == ActionReject || a == ActionPrint
}

// IsStepAction returns true if a step may be configured with this action
func (a Action) IsStepAction() bool {
	return stepActions[a]
}

var (
	// ErrWorkflowEmpty is returned when a workflow has no steps
	ErrWorkflowEmpty = errors.New("workflow has no steps")
	// ErrWorkflowCyclic is returned when the step chain does not terminate
	ErrWorkflowCyclic = errors.New("workflow step chain contains a cycle")
	// ErrWorkflowBrokenChain is returned when a next-step reference points outside the workflow
	ErrWorkflowBrokenChain = errors.New("workflow step chain references an unknown step")
	// ErrWorkflowNoTerminal is returned when no step carries the PRINT action
	ErrWorkflowNoTerminal = errors.New("workflow has no terminal PRINT step")
)

// Step is one checkpoint in a workflow: bound to a role that may act on it,
// an action it represents, and at most one successor. Terminal semantics come
// from the PRINT action, not from the absence of a successor.
type Step struct {
	ID         string    `json:"id"`
	WorkflowID string    `json:"workflow_id"`
	Position   int       `json:"position"`
	Name       string    `json:"name"`
	RoleName   string    `json:"role_name"`
	Action     Action    `json:"action"`
	NextStepID *string   `json:"next_step_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsTerminal returns true if the step closes the workflow once acted on
func (s *Step) IsTerminal() bool {
	return s.Action == ActionPrint
}

// Workflow is the ordered chain of steps for one
// (tenant, event, participant type) triple
type Workflow struct {
	ID                string    `json:"id"`
	TenantID          string    `json:"tenant_id"`
	EventID           string    `json:"event_id"`
	ParticipantTypeID string    `json:"participant_type_id"`
	Name              string    `json:"name"`
	Steps             []Step    `json:"steps"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FirstStep returns the entry step: position 0, with no other step pointing
// at it. Returns nil for an empty workflow.
func (w *Workflow) FirstStep() *Step {
	for i := range w.Steps {
		if w.Steps[i].Position == 0 {
			return &w.Steps[i]
		}
	}
	return nil
}

// StepByID returns the step with the given id, or nil
func (w *Workflow) StepByID(id string) *Step {
	for i := range w.Steps {
		if w.Steps[i].ID == id {
			return &w.Steps[i]
		}
	}
	return nil
}

// NextOf follows the step's next-step link. A nil result signals the end of
// the chain.
func (w *Workflow) NextOf(step *Step) *Step {
	if step == nil || step.NextStepID == nil {
		return nil
	}
	return w.StepByID(*step.NextStepID)
}

// Validate checks the workflow configuration at save time so that
// misconfiguration fails before any participant is bound to the chain:
// every step action must be a valid step action, every role must be set,
// the next-step chain must stay inside the workflow, terminate without
// cycles, cover every step exactly once, and end in a PRINT step.
func (w *Workflow) Validate() error {
	if len(w.Steps) == 0 {
		return ErrWorkflowEmpty
	}

	byID := make(map[string]*Step, len(w.Steps))
	for i := range w.Steps {
		s := &w.Steps[i]
		if s.RoleName == "" {
			return fmt.Errorf("step %q: role name is required", s.Name)
		}
		if !s.Action.IsStepAction() {
			return fmt.Errorf("step %q: invalid step action %q", s.Name, s.Action)
		}
		byID[s.ID] = s
	}

	first := w.FirstStep()
	if first == nil {
		return fmt.Errorf("workflow has no step at position 0")
	}

	// Walk the chain from the entry step. Visiting more steps than exist
	// means a cycle; a dangling reference means a broken chain.
	visited := make(map[string]bool, len(w.Steps))
	cur := first
	var last *Step
	for cur != nil {
		if visited[cur.ID] {
			return ErrWorkflowCyclic
		}
		visited[cur.ID] = true
		last = cur

		if cur.NextStepID == nil {
			break
		}
		next, ok := byID[*cur.NextStepID]
		if !ok {
			return ErrWorkflowBrokenChain
		}
		cur = next
	}

	if len(visited) != len(w.Steps) {
		return fmt.Errorf("workflow chain covers %d of %d steps", len(visited), len(w.Steps))
	}

	if last == nil || !last.IsTerminal() {
		return ErrWorkflowNoTerminal
	}

	return nil
}
