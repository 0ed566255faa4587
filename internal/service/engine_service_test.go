package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shegerlabs/accreditation-service/internal/domain"
	"github.com/shegerlabs/accreditation-service/internal/dto"
	"github.com/shegerlabs/accreditation-service/internal/repository"
)

// engineFixture wires an engine service against in-memory repositories with a
// three-step Review -> Approve -> Print workflow and one participant waiting
// at the first step.
type engineFixture struct {
	engine       EngineService
	participants *repository.MemoryParticipantRepository
	workflows    *repository.MemoryWorkflowRepository
	audit        *repository.MemoryAuditRepository
	workflow     *domain.Workflow
	participant  *domain.Participant
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	ctx := context.Background()

	workflows := repository.NewMemoryWorkflowRepository()
	audit := repository.NewMemoryAuditRepository()
	participants := repository.NewMemoryParticipantRepository(workflows, audit)

	now := time.Now()
	workflow := &domain.Workflow{
		ID:                "wf-1",
		TenantID:          "tenant-1",
		EventID:           "event-1",
		ParticipantTypeID: "type-1",
		Name:              "Delegate Accreditation",
		Steps: []domain.Step{
			{ID: "step-review", WorkflowID: "wf-1", Position: 0, Name: "Initial Review", RoleName: "first-validator", Action: domain.ActionReview},
			{ID: "step-approve", WorkflowID: "wf-1", Position: 1, Name: "Final Approval", RoleName: "second-validator", Action: domain.ActionApprove},
			{ID: "step-print", WorkflowID: "wf-1", Position: 2, Name: "Badge Printing", RoleName: "printer", Action: domain.ActionPrint},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := 0; i < len(workflow.Steps)-1; i++ {
		next := workflow.Steps[i+1].ID
		workflow.Steps[i].NextStepID = &next
	}
	if err := workflow.Validate(); err != nil {
		t.Fatalf("fixture workflow invalid: %v", err)
	}
	if err := workflows.Create(ctx, workflow); err != nil {
		t.Fatalf("failed to store fixture workflow: %v", err)
	}

	firstStep := workflow.Steps[0].ID
	participant := &domain.Participant{
		ID:                "part-1",
		TenantID:          "tenant-1",
		EventID:           "event-1",
		ParticipantTypeID: "type-1",
		FirstName:         "Abebe",
		LastName:          "Bikila",
		Email:             "abebe@example.com",
		Status:            domain.StatusInProgress,
		StepID:            &firstStep,
		RegistrationCode:  "ACR-TESTCODE01",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := participants.Create(ctx, participant, nil); err != nil {
		t.Fatalf("failed to store fixture participant: %v", err)
	}

	return &engineFixture{
		engine:       NewEngineService(participants, workflows),
		participants: participants,
		workflows:    workflows,
		audit:        audit,
		workflow:     workflow,
		participant:  participant,
	}
}

func (f *engineFixture) auditCount(t *testing.T) int {
	t.Helper()
	_, total, err := f.audit.ListByEntity(context.Background(), domain.EntityTypeParticipant, f.participant.ID, 1, 100)
	if err != nil {
		t.Fatalf("failed to list audit entries: %v", err)
	}
	return total
}

func (f *engineFixture) reload(t *testing.T) *domain.Participant {
	t.Helper()
	p, err := f.participants.GetByID(context.Background(), f.participant.ID)
	if err != nil {
		t.Fatalf("failed to reload participant: %v", err)
	}
	if p == nil {
		t.Fatal("fixture participant disappeared")
	}
	return p
}

func TestEngineService_Transition_ApproveAdvances(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	resp, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{"first-validator"},
		&dto.TransitionRequest{Action: string(domain.ActionApprove)})
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}

	if resp.Status != string(domain.StatusInProgress) {
		t.Errorf("status = %s, want INPROGRESS", resp.Status)
	}
	if resp.StepID == nil || *resp.StepID != "step-approve" {
		t.Errorf("step = %v, want step-approve", resp.StepID)
	}
	if resp.StepName != "Final Approval" {
		t.Errorf("step name = %q, want Final Approval", resp.StepName)
	}
	if count := f.auditCount(t); count != 1 {
		t.Errorf("audit entries = %d, want 1", count)
	}
}

func TestEngineService_Transition_FullChainToPrint(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// Walk the whole chain; each step is acted on by its bound role.
	steps := []struct {
		role       string
		action     domain.Action
		wantStatus domain.ParticipantStatus
		wantStep   string
	}{
		{"first-validator", domain.ActionReview, domain.StatusInProgress, "step-approve"},
		{"second-validator", domain.ActionApprove, domain.StatusInProgress, "step-print"},
		{"printer", domain.ActionPrint, domain.StatusPrinted, "step-print"},
	}

	for i, step := range steps {
		resp, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{step.role},
			&dto.TransitionRequest{Action: string(step.action)})
		if err != nil {
			t.Fatalf("transition %d (%s) error = %v", i, step.action, err)
		}
		if resp.Status != string(step.wantStatus) {
			t.Errorf("transition %d: status = %s, want %s", i, resp.Status, step.wantStatus)
		}
		if resp.StepID == nil || *resp.StepID != step.wantStep {
			t.Errorf("transition %d: step = %v, want %s", i, resp.StepID, step.wantStep)
		}
	}

	if count := f.auditCount(t); count != 3 {
		t.Errorf("audit entries = %d, want 3", count)
	}
}

func TestEngineService_Transition_RejectKeepsStep(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	resp, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{"first-validator"},
		&dto.TransitionRequest{Action: string(domain.ActionReject), Remarks: "photo is blurry"})
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}

	if resp.Status != string(domain.StatusRejected) {
		t.Errorf("status = %s, want REJECTED", resp.Status)
	}
	if resp.StepID == nil || *resp.StepID != "step-review" {
		t.Errorf("step = %v, want step-review (rejection keeps position)", resp.StepID)
	}

	entries, _, err := f.audit.ListByEntity(ctx, domain.EntityTypeParticipant, f.participant.ID, 1, 10)
	if err != nil {
		t.Fatalf("failed to list audit entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	if entries[0].Description != "Request Rejected: photo is blurry" {
		t.Errorf("audit description = %q, want %q", entries[0].Description, "Request Rejected: photo is blurry")
	}
	if entries[0].Action != string(domain.ActionReject) {
		t.Errorf("audit action = %s, want REJECT", entries[0].Action)
	}
}

func TestEngineService_Transition_RejectedParticipantResumes(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	if _, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{"first-validator"},
		&dto.TransitionRequest{Action: string(domain.ActionReject), Remarks: "missing passport scan"}); err != nil {
		t.Fatalf("reject error = %v", err)
	}

	// A rejected participant stays at its step and can still be advanced.
	resp, err := f.engine.Transition(ctx, f.participant.ID, "actor-2", []string{"first-validator"},
		&dto.TransitionRequest{Action: string(domain.ActionApprove)})
	if err != nil {
		t.Fatalf("approve after reject error = %v", err)
	}
	if resp.Status != string(domain.StatusInProgress) {
		t.Errorf("status = %s, want INPROGRESS", resp.Status)
	}
	if resp.StepID == nil || *resp.StepID != "step-approve" {
		t.Errorf("step = %v, want step-approve", resp.StepID)
	}
}

func TestEngineService_Transition_RejectWithoutRemarks(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{"first-validator"},
		&dto.TransitionRequest{Action: string(domain.ActionReject), Remarks: "   "})
	if !errors.Is(err, ErrRemarksRequired) {
		t.Errorf("expected ErrRemarksRequired, got %v", err)
	}

	p := f.reload(t)
	if p.Status != domain.StatusInProgress || *p.StepID != "step-review" {
		t.Errorf("participant mutated by failed rejection: status=%s step=%v", p.Status, p.StepID)
	}
	if count := f.auditCount(t); count != 0 {
		t.Errorf("audit entries = %d, want 0", count)
	}
}

func TestEngineService_Transition_PrintedIsRetired(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	chain := []struct {
		role   string
		action domain.Action
	}{
		{"first-validator", domain.ActionReview},
		{"second-validator", domain.ActionApprove},
		{"printer", domain.ActionPrint},
	}
	for _, step := range chain {
		if _, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{step.role},
			&dto.TransitionRequest{Action: string(step.action)}); err != nil {
			t.Fatalf("%s error = %v", step.action, err)
		}
	}
	before := f.auditCount(t)

	// Any further action, even by the right role, is indistinguishable from
	// the participant not existing.
	for _, action := range []domain.Action{domain.ActionPrint, domain.ActionApprove, domain.ActionReject} {
		_, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{"printer"},
			&dto.TransitionRequest{Action: string(action), Remarks: "late change"})
		if !errors.Is(err, ErrParticipantNotFound) {
			t.Errorf("%s on printed participant: expected ErrParticipantNotFound, got %v", action, err)
		}
	}

	p := f.reload(t)
	if p.Status != domain.StatusPrinted {
		t.Errorf("status = %s, want PRINTED", p.Status)
	}
	if count := f.auditCount(t); count != before {
		t.Errorf("audit entries = %d, want %d (no writes after terminal)", count, before)
	}
}

func TestEngineService_Transition_RoleMismatch(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{"printer", "second-validator"},
		&dto.TransitionRequest{Action: string(domain.ActionApprove)})
	if !errors.Is(err, ErrRoleMismatch) {
		t.Errorf("expected ErrRoleMismatch, got %v", err)
	}

	p := f.reload(t)
	if *p.StepID != "step-review" || p.Status != domain.StatusInProgress {
		t.Errorf("participant mutated by denied transition: status=%s step=%v", p.Status, p.StepID)
	}
	if count := f.auditCount(t); count != 0 {
		t.Errorf("audit entries = %d, want 0", count)
	}
}

func TestEngineService_Transition_InvalidActionAtStep(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// PRINT is not valid at a review step.
	_, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{"first-validator"},
		&dto.TransitionRequest{Action: string(domain.ActionPrint)})
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction for PRINT at review step, got %v", err)
	}

	// Advance to the print step, where APPROVE is not valid.
	if _, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{"first-validator"},
		&dto.TransitionRequest{Action: string(domain.ActionReview)}); err != nil {
		t.Fatalf("review error = %v", err)
	}
	if _, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{"second-validator"},
		&dto.TransitionRequest{Action: string(domain.ActionApprove)}); err != nil {
		t.Fatalf("approve error = %v", err)
	}

	_, err = f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{"printer"},
		&dto.TransitionRequest{Action: string(domain.ActionApprove)})
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction for APPROVE at print step, got %v", err)
	}

	// REJECT remains valid even at the print step.
	resp, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{"printer"},
		&dto.TransitionRequest{Action: string(domain.ActionReject), Remarks: "badge template wrong"})
	if err != nil {
		t.Fatalf("reject at print step error = %v", err)
	}
	if resp.Status != string(domain.StatusRejected) {
		t.Errorf("status = %s, want REJECTED", resp.Status)
	}
}

func TestEngineService_Transition_UnknownAction(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Transition(context.Background(), f.participant.ID, "actor-1", []string{"first-validator"},
		&dto.TransitionRequest{Action: "ESCALATE"})
	if err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestEngineService_Transition_ParticipantNotFound(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Transition(context.Background(), "no-such-id", "actor-1", []string{"first-validator"},
		&dto.TransitionRequest{Action: string(domain.ActionApprove)})
	if !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("expected ErrParticipantNotFound, got %v", err)
	}
}

func TestEngineService_Transition_StaleStep(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// Simulate a concurrent actor moving the participant between this actor's
	// read and write: the engine saw step-review, but the row has moved on.
	update := &repository.TransitionUpdate{
		ParticipantID: f.participant.ID,
		FromStepID:    "step-review",
		ToStepID:      strPtr("step-approve"),
		NewStatus:     domain.StatusInProgress,
	}
	if err := f.participants.Transition(ctx, update, nil); err != nil {
		t.Fatalf("setup transition error = %v", err)
	}

	// Replaying the same compare-and-swap must fail rather than double-advance.
	replay := &repository.TransitionUpdate{
		ParticipantID: f.participant.ID,
		FromStepID:    "step-review",
		ToStepID:      strPtr("step-approve"),
		NewStatus:     domain.StatusInProgress,
	}
	if err := f.participants.Transition(ctx, replay, nil); !errors.Is(err, repository.ErrStaleTransition) {
		t.Errorf("expected ErrStaleTransition, got %v", err)
	}

	p := f.reload(t)
	if *p.StepID != "step-approve" {
		t.Errorf("step = %v, want step-approve (single advance)", p.StepID)
	}
}

func TestEngineService_Transition_MonotonicAdvance(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	positions := make(map[string]int, len(f.workflow.Steps))
	for _, s := range f.workflow.Steps {
		positions[s.ID] = s.Position
	}

	last := 0
	chain := []struct {
		role   string
		action domain.Action
	}{
		{"first-validator", domain.ActionApprove},
		{"second-validator", domain.ActionReview},
		{"printer", domain.ActionPrint},
	}
	for _, step := range chain {
		resp, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{step.role},
			&dto.TransitionRequest{Action: string(step.action)})
		if err != nil {
			t.Fatalf("%s error = %v", step.action, err)
		}
		pos := positions[*resp.StepID]
		if pos < last {
			t.Errorf("position moved backwards: %d after %d", pos, last)
		}
		last = pos
	}
}

func TestEngineService_Transition_StepRemovedUnderParticipant(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	if err := f.workflows.Delete(ctx, f.workflow.ID); err != nil {
		t.Fatalf("failed to delete workflow: %v", err)
	}

	_, err := f.engine.Transition(ctx, f.participant.ID, "actor-1", []string{"first-validator"},
		&dto.TransitionRequest{Action: string(domain.ActionApprove)})
	if !errors.Is(err, ErrWorkflowMisconfigured) {
		t.Errorf("expected ErrWorkflowMisconfigured, got %v", err)
	}
}

func strPtr(s string) *string {
	return &s
}
