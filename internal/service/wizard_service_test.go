package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shegerlabs/accreditation-service/internal/domain"
	"github.com/shegerlabs/accreditation-service/internal/dto"
	"github.com/shegerlabs/accreditation-service/internal/repository"
	"github.com/shegerlabs/accreditation-service/internal/storage"
)

// wizardFixture wires a wizard service against in-memory stores: one
// published event, a self-registerable type requiring PHOTO and PASSPORT,
// and a configured workflow.
type wizardFixture struct {
	wizard       WizardService
	drafts       *MemoryDraftStore
	participants *repository.MemoryParticipantRepository
	events       *repository.MemoryEventRepository
	types        *repository.MemoryParticipantTypeRepository
	audit        *repository.MemoryAuditRepository
	event        *domain.Event
	ptype        *domain.ParticipantType
	firstStepID  string
}

func newWizardFixture(t *testing.T) *wizardFixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	events := repository.NewMemoryEventRepository()
	event := &domain.Event{
		ID:        "event-1",
		TenantID:  "tenant-1",
		Name:      "Continental Summit",
		Slug:      "continental-summit",
		Status:    domain.EventStatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := events.Create(ctx, event); err != nil {
		t.Fatalf("failed to store fixture event: %v", err)
	}

	types := repository.NewMemoryParticipantTypeRepository()
	ptype := &domain.ParticipantType{
		ID:                "type-1",
		TenantID:          "tenant-1",
		Name:              "Delegate",
		Slug:              "delegate",
		RequiredDocuments: []domain.DocumentKind{domain.DocumentPhoto, domain.DocumentPassport},
		AllowSelfRegister: true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := types.Create(ctx, ptype); err != nil {
		t.Fatalf("failed to store fixture type: %v", err)
	}

	workflows := repository.NewMemoryWorkflowRepository()
	workflowSvc := NewWorkflowService(workflows)
	created, err := workflowSvc.Create(ctx, &dto.CreateWorkflowRequest{
		Name:              "Delegate Accreditation",
		TenantID:          "tenant-1",
		EventID:           "event-1",
		ParticipantTypeID: "type-1",
		Steps: []dto.CreateWorkflowStepRequest{
			{Name: "Initial Review", RoleName: "first-validator", Action: string(domain.ActionReview)},
			{Name: "Badge Printing", RoleName: "printer", Action: string(domain.ActionPrint)},
		},
	})
	if err != nil {
		t.Fatalf("failed to create fixture workflow: %v", err)
	}

	audit := repository.NewMemoryAuditRepository()
	participants := repository.NewMemoryParticipantRepository(workflows, audit)
	drafts := NewMemoryDraftStore()
	blobs := storage.NewMemoryBlobStore()

	wizard := NewWizardService(drafts, participants, types, events, workflowSvc, blobs, 30*time.Minute)

	return &wizardFixture{
		wizard:       wizard,
		drafts:       drafts,
		participants: participants,
		events:       events,
		types:        types,
		audit:        audit,
		event:        event,
		ptype:        ptype,
		firstStepID:  created.Steps[0].ID,
	}
}

func (f *wizardFixture) start(t *testing.T) string {
	t.Helper()
	state, err := f.wizard.Start(context.Background(), "tenant-1", &dto.StartWizardRequest{
		EventID:           "event-1",
		ParticipantTypeID: "type-1",
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return state.SessionID
}

func generalDetails() *dto.WizardGeneralRequest {
	return &dto.WizardGeneralRequest{
		FirstName:   "Sara",
		LastName:    "Tadesse",
		Email:       "sara@example.com",
		Nationality: "Ethiopian",
	}
}

func professionalDetails() *dto.WizardProfessionalRequest {
	return &dto.WizardProfessionalRequest{
		Organization: "Ministry of Foreign Affairs",
		JobTitle:     "Attaché",
	}
}

func TestWizardService_Start(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	state, err := f.wizard.Start(ctx, "tenant-1", &dto.StartWizardRequest{
		EventID:           "event-1",
		ParticipantTypeID: "type-1",
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if state.SessionID == "" {
		t.Error("expected a session ID")
	}
	if len(state.CompletedSteps) != 0 {
		t.Errorf("completed steps = %v, want none", state.CompletedSteps)
	}
	if state.HasData {
		t.Error("expected HasData false on a fresh draft")
	}
	if state.CurrentStep != 0 {
		t.Errorf("current step = %d, want 0", state.CurrentStep)
	}
	if len(state.MissingDocuments) != 2 {
		t.Errorf("missing documents = %v, want PHOTO and PASSPORT", state.MissingDocuments)
	}
	if state.ExpiresInSeconds <= 0 {
		t.Errorf("expires in = %d, want positive", state.ExpiresInSeconds)
	}
}

func TestWizardService_Start_Denied(t *testing.T) {
	t.Run("self registration not allowed", func(t *testing.T) {
		f := newWizardFixture(t)
		f.ptype.AllowSelfRegister = false
		if err := f.types.Update(context.Background(), f.ptype); err != nil {
			t.Fatalf("failed to update type: %v", err)
		}

		_, err := f.wizard.Start(context.Background(), "tenant-1", &dto.StartWizardRequest{
			EventID:           "event-1",
			ParticipantTypeID: "type-1",
		})
		if !errors.Is(err, ErrSelfRegisterNotAllowed) {
			t.Errorf("expected ErrSelfRegisterNotAllowed, got %v", err)
		}
	})

	t.Run("event not open", func(t *testing.T) {
		f := newWizardFixture(t)
		if err := f.events.UpdateStatus(context.Background(), "event-1", domain.EventStatusCompleted); err != nil {
			t.Fatalf("failed to complete event: %v", err)
		}

		_, err := f.wizard.Start(context.Background(), "tenant-1", &dto.StartWizardRequest{
			EventID:           "event-1",
			ParticipantTypeID: "type-1",
		})
		if !errors.Is(err, ErrEventNotOpen) {
			t.Errorf("expected ErrEventNotOpen, got %v", err)
		}
	})

	t.Run("event of another tenant", func(t *testing.T) {
		f := newWizardFixture(t)
		_, err := f.wizard.Start(context.Background(), "tenant-2", &dto.StartWizardRequest{
			EventID:           "event-1",
			ParticipantTypeID: "type-1",
		})
		if !errors.Is(err, ErrEventNotFound) {
			t.Errorf("expected ErrEventNotFound, got %v", err)
		}
	})

	t.Run("no workflow configured", func(t *testing.T) {
		f := newWizardFixture(t)
		other := &domain.ParticipantType{
			ID:                "type-2",
			TenantID:          "tenant-1",
			Name:              "Press",
			Slug:              "press",
			AllowSelfRegister: true,
		}
		if err := f.types.Create(context.Background(), other); err != nil {
			t.Fatalf("failed to create type: %v", err)
		}

		_, err := f.wizard.Start(context.Background(), "tenant-1", &dto.StartWizardRequest{
			EventID:           "event-1",
			ParticipantTypeID: "type-2",
		})
		if !errors.Is(err, ErrWorkflowNotConfigured) {
			t.Errorf("expected ErrWorkflowNotConfigured, got %v", err)
		}
	})
}

func TestWizardService_SaveAndResume(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	sessionID := f.start(t)

	state, err := f.wizard.SaveGeneral(ctx, sessionID, generalDetails())
	if err != nil {
		t.Fatalf("SaveGeneral() error = %v", err)
	}
	if state.General == nil || state.General.FirstName != "Sara" {
		t.Errorf("general = %v", state.General)
	}
	if !state.HasData {
		t.Error("expected HasData after the first step")
	}
	if state.CurrentStep != 1 {
		t.Errorf("current step = %d, want 1", state.CurrentStep)
	}

	state, err = f.wizard.SaveProfessional(ctx, sessionID, professionalDetails())
	if err != nil {
		t.Fatalf("SaveProfessional() error = %v", err)
	}
	if state.CurrentStep != 2 {
		t.Errorf("current step after general and professional = %d, want 2", state.CurrentStep)
	}

	if _, err := f.wizard.SaveWishlist(ctx, sessionID, &dto.WizardWishlistRequest{
		MeetingIDs: []string{"m1", "m2"},
	}); err != nil {
		t.Fatalf("SaveWishlist() error = %v", err)
	}

	// A later request resumes the same draft from the session ID alone.
	resumed, err := f.wizard.State(ctx, sessionID)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if resumed.General == nil || resumed.General.Email != "sara@example.com" {
		t.Errorf("resumed general = %v", resumed.General)
	}
	if resumed.Professional == nil || resumed.Professional.Organization != "Ministry of Foreign Affairs" {
		t.Errorf("resumed professional = %v", resumed.Professional)
	}
	if len(resumed.MeetingIDs) != 2 {
		t.Errorf("resumed meetings = %v", resumed.MeetingIDs)
	}
	if resumed.CurrentStep != 3 {
		t.Errorf("current step with documents pending = %d, want 3", resumed.CurrentStep)
	}

	wantSteps := map[string]bool{dto.WizardStepGeneral: true, dto.WizardStepProfessional: true, dto.WizardStepWishlist: true}
	for _, step := range resumed.CompletedSteps {
		if !wantSteps[step] {
			t.Errorf("unexpected completed step %q", step)
		}
		delete(wantSteps, step)
	}
	for step := range wantSteps {
		t.Errorf("step %q not marked completed", step)
	}
}

func TestWizardService_UploadDocument(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	sessionID := f.start(t)

	state, err := f.wizard.UploadDocument(ctx, sessionID, string(domain.DocumentPhoto),
		"face.jpg", "image/jpeg", 2048, strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	if len(state.Documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(state.Documents))
	}
	if len(state.MissingDocuments) != 1 || state.MissingDocuments[0] != string(domain.DocumentPassport) {
		t.Errorf("missing = %v, want [PASSPORT]", state.MissingDocuments)
	}

	// Re-uploading the same kind replaces the earlier file.
	state, err = f.wizard.UploadDocument(ctx, sessionID, string(domain.DocumentPhoto),
		"better-face.jpg", "image/jpeg", 4096, strings.NewReader("jpeg-bytes-2"))
	if err != nil {
		t.Fatalf("UploadDocument() replace error = %v", err)
	}
	if len(state.Documents) != 1 {
		t.Errorf("documents = %d after replace, want 1", len(state.Documents))
	}
	if state.Documents[0].SizeBytes != 4096 {
		t.Errorf("replaced document size = %d, want 4096", state.Documents[0].SizeBytes)
	}

	if _, err := f.wizard.UploadDocument(ctx, sessionID, "VISA",
		"visa.pdf", "application/pdf", 100, strings.NewReader("x")); !errors.Is(err, ErrInvalidDocumentKind) {
		t.Errorf("expected ErrInvalidDocumentKind, got %v", err)
	}
}

func TestWizardService_Complete_Gating(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	sessionID := f.start(t)

	// Nothing submitted yet.
	if _, err := f.wizard.Complete(ctx, sessionID); !errors.Is(err, ErrWizardIncomplete) {
		t.Errorf("expected ErrWizardIncomplete, got %v", err)
	}

	if _, err := f.wizard.SaveGeneral(ctx, sessionID, generalDetails()); err != nil {
		t.Fatalf("SaveGeneral() error = %v", err)
	}

	// General details alone do not satisfy the document requirement.
	if _, err := f.wizard.Complete(ctx, sessionID); !errors.Is(err, ErrDocumentsIncomplete) {
		t.Errorf("expected ErrDocumentsIncomplete, got %v", err)
	}

	if _, err := f.wizard.UploadDocument(ctx, sessionID, string(domain.DocumentPhoto),
		"face.jpg", "image/jpeg", 100, strings.NewReader("x")); err != nil {
		t.Fatalf("photo upload error = %v", err)
	}

	// One of two required kinds is still missing.
	if _, err := f.wizard.Complete(ctx, sessionID); !errors.Is(err, ErrDocumentsIncomplete) {
		t.Errorf("expected ErrDocumentsIncomplete with passport missing, got %v", err)
	}
}

func TestWizardService_Complete(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	sessionID := f.start(t)

	if _, err := f.wizard.SaveGeneral(ctx, sessionID, generalDetails()); err != nil {
		t.Fatalf("SaveGeneral() error = %v", err)
	}
	if _, err := f.wizard.SaveProfessional(ctx, sessionID, professionalDetails()); err != nil {
		t.Fatalf("SaveProfessional() error = %v", err)
	}
	for _, kind := range []domain.DocumentKind{domain.DocumentPhoto, domain.DocumentPassport} {
		if _, err := f.wizard.UploadDocument(ctx, sessionID, string(kind),
			strings.ToLower(string(kind))+".pdf", "application/pdf", 100, strings.NewReader("x")); err != nil {
			t.Fatalf("%s upload error = %v", kind, err)
		}
	}
	if _, err := f.wizard.SaveWishlist(ctx, sessionID, &dto.WizardWishlistRequest{MeetingIDs: []string{"m1"}}); err != nil {
		t.Fatalf("SaveWishlist() error = %v", err)
	}

	resp, err := f.wizard.Complete(ctx, sessionID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Status != string(domain.StatusInProgress) {
		t.Errorf("status = %s, want INPROGRESS", resp.Status)
	}
	if !strings.HasPrefix(resp.RegistrationCode, "ACR-") {
		t.Errorf("registration code = %q, want ACR- prefix", resp.RegistrationCode)
	}

	p, err := f.participants.GetByID(ctx, resp.ParticipantID)
	if err != nil || p == nil {
		t.Fatalf("participant not persisted: %v", err)
	}
	if p.StepID == nil || *p.StepID != f.firstStepID {
		t.Errorf("participant step = %v, want first step %s", p.StepID, f.firstStepID)
	}
	if p.FirstName != "Sara" || p.Email != "sara@example.com" {
		t.Errorf("participant identity details lost: %+v", p)
	}
	if p.Organization != "Ministry of Foreign Affairs" {
		t.Errorf("participant organization = %q", p.Organization)
	}
	if len(p.Documents) != 2 {
		t.Errorf("participant documents = %d, want 2", len(p.Documents))
	}
	if p.WishList != "m1" {
		t.Errorf("wishlist = %q, want m1", p.WishList)
	}

	entries, _, err := f.audit.ListByEntity(ctx, domain.EntityTypeParticipant, p.ID, 1, 10)
	if err != nil {
		t.Fatalf("failed to list audit entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != domain.AuditActionRegister {
		t.Errorf("audit entries = %v, want one REGISTER", entries)
	}

	// The draft is spent: the session no longer resolves.
	if _, err := f.wizard.State(ctx, sessionID); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("expected ErrDraftNotFound after completion, got %v", err)
	}
}

func TestWizardService_Complete_EventClosedMidFlow(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	sessionID := f.start(t)

	if _, err := f.wizard.SaveGeneral(ctx, sessionID, generalDetails()); err != nil {
		t.Fatalf("SaveGeneral() error = %v", err)
	}
	for _, kind := range []domain.DocumentKind{domain.DocumentPhoto, domain.DocumentPassport} {
		if _, err := f.wizard.UploadDocument(ctx, sessionID, string(kind),
			"doc.pdf", "application/pdf", 100, strings.NewReader("x")); err != nil {
			t.Fatalf("%s upload error = %v", kind, err)
		}
	}

	// The event closes between the draft's start and its completion.
	if err := f.events.UpdateStatus(ctx, "event-1", domain.EventStatusCompleted); err != nil {
		t.Fatalf("failed to close event: %v", err)
	}

	if _, err := f.wizard.Complete(ctx, sessionID); !errors.Is(err, ErrEventNotOpen) {
		t.Errorf("expected ErrEventNotOpen, got %v", err)
	}
}

func TestWizardService_Destroy(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	sessionID := f.start(t)

	if err := f.wizard.Destroy(ctx, sessionID); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if _, err := f.wizard.State(ctx, sessionID); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("expected ErrDraftNotFound after destroy, got %v", err)
	}

	// Destroying again is a no-op.
	if err := f.wizard.Destroy(ctx, sessionID); err != nil {
		t.Errorf("second Destroy() error = %v", err)
	}
}

func TestWizardService_UnknownSession(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	if _, err := f.wizard.State(ctx, "no-such-session"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("State: expected ErrDraftNotFound, got %v", err)
	}
	if _, err := f.wizard.SaveGeneral(ctx, "no-such-session", generalDetails()); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("SaveGeneral: expected ErrDraftNotFound, got %v", err)
	}
	if _, err := f.wizard.Complete(ctx, "no-such-session"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("Complete: expected ErrDraftNotFound, got %v", err)
	}
}

func TestWizardService_ExpiredDraft(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	// A draft saved with a TTL already in the past behaves as missing.
	draft := &WizardDraft{SessionID: "expired-session", TenantID: "tenant-1", EventID: "event-1", ParticipantTypeID: "type-1"}
	if err := f.drafts.Save(ctx, draft, -time.Second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := f.wizard.State(ctx, "expired-session"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("expected ErrDraftNotFound for expired draft, got %v", err)
	}
}
