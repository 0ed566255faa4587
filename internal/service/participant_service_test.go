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

// participantFixture wires the back-office participant service together with
// the engine so queue behavior can be observed across transitions.
type participantFixture struct {
	svc          ParticipantService
	engine       EngineService
	participants *repository.MemoryParticipantRepository
	events       *repository.MemoryEventRepository
	types        *repository.MemoryParticipantTypeRepository
	audit        *repository.MemoryAuditRepository
}

func newParticipantFixture(t *testing.T) *participantFixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	events := repository.NewMemoryEventRepository()
	if err := events.Create(ctx, &domain.Event{
		ID:        "event-1",
		TenantID:  "tenant-1",
		Name:      "Continental Summit",
		Slug:      "continental-summit",
		Status:    domain.EventStatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("failed to store fixture event: %v", err)
	}

	types := repository.NewMemoryParticipantTypeRepository()
	if err := types.Create(ctx, &domain.ParticipantType{
		ID:        "type-1",
		TenantID:  "tenant-1",
		Name:      "Delegate",
		Slug:      "delegate",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("failed to store fixture type: %v", err)
	}

	workflows := repository.NewMemoryWorkflowRepository()
	workflowSvc := NewWorkflowService(workflows)
	if _, err := workflowSvc.Create(ctx, &dto.CreateWorkflowRequest{
		Name:              "Delegate Accreditation",
		TenantID:          "tenant-1",
		EventID:           "event-1",
		ParticipantTypeID: "type-1",
		Steps: []dto.CreateWorkflowStepRequest{
			{Name: "Initial Review", RoleName: "first-validator", Action: string(domain.ActionReview)},
			{Name: "Badge Printing", RoleName: "printer", Action: string(domain.ActionPrint)},
		},
	}); err != nil {
		t.Fatalf("failed to create fixture workflow: %v", err)
	}

	audit := repository.NewMemoryAuditRepository()
	participants := repository.NewMemoryParticipantRepository(workflows, audit)
	blobs := storage.NewMemoryBlobStore()

	return &participantFixture{
		svc:          NewParticipantService(participants, types, events, workflows, workflowSvc, blobs),
		engine:       NewEngineService(participants, workflows),
		participants: participants,
		events:       events,
		types:        types,
		audit:        audit,
	}
}

func registerRequest() *dto.RegisterParticipantRequest {
	return &dto.RegisterParticipantRequest{
		TenantID:          "tenant-1",
		EventID:           "event-1",
		ParticipantTypeID: "type-1",
		FirstName:         "Sara",
		LastName:          "Tadesse",
		Email:             "sara@example.com",
	}
}

func TestParticipantService_Register(t *testing.T) {
	f := newParticipantFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, "clerk-1", registerRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if resp.Status != string(domain.StatusInProgress) {
		t.Errorf("status = %s, want INPROGRESS", resp.Status)
	}
	if resp.StepName != "Initial Review" {
		t.Errorf("step name = %q, want Initial Review", resp.StepName)
	}
	if !strings.HasPrefix(resp.RegistrationCode, "ACR-") {
		t.Errorf("registration code = %q, want ACR- prefix", resp.RegistrationCode)
	}

	entries, _, err := f.audit.ListByEntity(ctx, domain.EntityTypeParticipant, resp.ID, 1, 10)
	if err != nil {
		t.Fatalf("failed to list audit entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	if entries[0].Action != domain.AuditActionRegister || entries[0].ActorID != "clerk-1" {
		t.Errorf("audit entry = %+v, want REGISTER by clerk-1", entries[0])
	}
}

func TestParticipantService_Register_Denied(t *testing.T) {
	t.Run("event not open", func(t *testing.T) {
		f := newParticipantFixture(t)
		if err := f.events.UpdateStatus(context.Background(), "event-1", domain.EventStatusCompleted); err != nil {
			t.Fatalf("failed to close event: %v", err)
		}
		if _, err := f.svc.Register(context.Background(), "clerk-1", registerRequest()); !errors.Is(err, ErrEventNotOpen) {
			t.Errorf("expected ErrEventNotOpen, got %v", err)
		}
	})

	t.Run("type of another tenant", func(t *testing.T) {
		f := newParticipantFixture(t)
		req := registerRequest()
		req.ParticipantTypeID = "foreign-type"
		if _, err := f.svc.Register(context.Background(), "clerk-1", req); !errors.Is(err, ErrParticipantTypeNotFound) {
			t.Errorf("expected ErrParticipantTypeNotFound, got %v", err)
		}
	})

	t.Run("invalid personal details", func(t *testing.T) {
		f := newParticipantFixture(t)
		req := registerRequest()
		req.Email = "not-an-email"
		if _, err := f.svc.Register(context.Background(), "clerk-1", req); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestParticipantService_GetStatusByCode(t *testing.T) {
	f := newParticipantFixture(t)
	ctx := context.Background()

	created, err := f.svc.Register(ctx, "clerk-1", registerRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	status, err := f.svc.GetStatusByCode(ctx, created.RegistrationCode)
	if err != nil {
		t.Fatalf("GetStatusByCode() error = %v", err)
	}
	if status.FirstName != "Sara" || status.Status != string(domain.StatusInProgress) {
		t.Errorf("status view = %+v", status)
	}
	if status.StepName != "Initial Review" {
		t.Errorf("step name = %q, want Initial Review", status.StepName)
	}

	if _, err := f.svc.GetStatusByCode(ctx, "ACR-DOESNOTEXIST"); !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("expected ErrParticipantNotFound, got %v", err)
	}
}

func TestParticipantService_GetByID_TenantScoped(t *testing.T) {
	f := newParticipantFixture(t)
	ctx := context.Background()

	created, err := f.svc.Register(ctx, "clerk-1", registerRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := f.svc.GetByID(ctx, "tenant-1", created.ID); err != nil {
		t.Errorf("GetByID() within tenant error = %v", err)
	}

	// Another tenant's view of the same ID is a miss, not a denial.
	if _, err := f.svc.GetByID(ctx, "tenant-2", created.ID); !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("expected ErrParticipantNotFound across tenants, got %v", err)
	}
}

func TestParticipantService_Queue(t *testing.T) {
	f := newParticipantFixture(t)
	ctx := context.Background()

	first, err := f.svc.Register(ctx, "clerk-1", registerRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	second := registerRequest()
	second.Email = "second@example.com"
	second.FirstName = "Mulu"
	if _, err := f.svc.Register(ctx, "clerk-1", second); err != nil {
		t.Fatalf("second Register() error = %v", err)
	}

	// Both sit at the review step, so only the first validator sees them.
	queue, total, err := f.svc.Queue(ctx, "tenant-1", []string{"first-validator"}, &dto.QueueFilter{})
	if err != nil {
		t.Fatalf("Queue() error = %v", err)
	}
	if total != 2 || len(queue) != 2 {
		t.Fatalf("queue = %d/%d, want 2/2", len(queue), total)
	}

	_, total, err = f.svc.Queue(ctx, "tenant-1", []string{"printer"}, &dto.QueueFilter{})
	if err != nil {
		t.Fatalf("Queue() error = %v", err)
	}
	if total != 0 {
		t.Errorf("printer queue = %d, want 0", total)
	}

	// Advancing one participant moves it from one queue to the other.
	if _, err := f.engine.Transition(ctx, first.ID, "actor-1", []string{"first-validator"},
		&dto.TransitionRequest{Action: string(domain.ActionReview)}); err != nil {
		t.Fatalf("review error = %v", err)
	}

	_, total, err = f.svc.Queue(ctx, "tenant-1", []string{"first-validator"}, &dto.QueueFilter{})
	if err != nil {
		t.Fatalf("Queue() error = %v", err)
	}
	if total != 1 {
		t.Errorf("validator queue after advance = %d, want 1", total)
	}
	queue, total, err = f.svc.Queue(ctx, "tenant-1", []string{"printer"}, &dto.QueueFilter{})
	if err != nil {
		t.Fatalf("Queue() error = %v", err)
	}
	if total != 1 || queue[0].ID != first.ID {
		t.Errorf("printer queue = %d, want the advanced participant", total)
	}

	// Printing retires the participant from every queue.
	if _, err := f.engine.Transition(ctx, first.ID, "actor-1", []string{"printer"},
		&dto.TransitionRequest{Action: string(domain.ActionPrint)}); err != nil {
		t.Fatalf("print error = %v", err)
	}
	_, total, err = f.svc.Queue(ctx, "tenant-1", []string{"printer", "first-validator"}, &dto.QueueFilter{})
	if err != nil {
		t.Fatalf("Queue() error = %v", err)
	}
	if total != 1 {
		t.Errorf("combined queue after print = %d, want 1", total)
	}
}

func TestParticipantService_UpdateWishList(t *testing.T) {
	f := newParticipantFixture(t)
	ctx := context.Background()

	created, err := f.svc.Register(ctx, "clerk-1", registerRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	resp, err := f.svc.UpdateWishList(ctx, "tenant-1", created.ID, &dto.UpdateWishListRequest{
		MeetingIDs: []string{"m1", "m2"},
	})
	if err != nil {
		t.Fatalf("UpdateWishList() error = %v", err)
	}
	if len(resp.WishMeetingIDs) != 2 {
		t.Errorf("wish meetings = %v, want 2", resp.WishMeetingIDs)
	}

	p, err := f.participants.GetByID(ctx, created.ID)
	if err != nil || p == nil {
		t.Fatalf("reload error = %v", err)
	}
	if p.WishList != "m1,m2" {
		t.Errorf("stored wishlist = %q, want m1,m2", p.WishList)
	}
}

func TestParticipantService_UploadDocument(t *testing.T) {
	f := newParticipantFixture(t)
	ctx := context.Background()

	created, err := f.svc.Register(ctx, "clerk-1", registerRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	resp, err := f.svc.UploadDocument(ctx, "tenant-1", created.ID, string(domain.DocumentPassport),
		"passport.pdf", "application/pdf", 1024, strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	if len(resp.Documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(resp.Documents))
	}
	if resp.Documents[0].FileName != "PASSPORT-passport.pdf" {
		t.Errorf("stored name = %q", resp.Documents[0].FileName)
	}

	if _, err := f.svc.UploadDocument(ctx, "tenant-1", created.ID, "VISA",
		"visa.pdf", "application/pdf", 100, strings.NewReader("x")); !errors.Is(err, ErrInvalidDocumentKind) {
		t.Errorf("expected ErrInvalidDocumentKind, got %v", err)
	}
}

func TestGenerateRegistrationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := generateRegistrationCode()
		if err != nil {
			t.Fatalf("generateRegistrationCode() error = %v", err)
		}
		if !strings.HasPrefix(code, "ACR-") {
			t.Fatalf("code = %q, want ACR- prefix", code)
		}
		body := strings.TrimPrefix(code, "ACR-")
		if len(body) != 10 {
			t.Fatalf("code body length = %d, want 10", len(body))
		}
		for _, c := range body {
			if !strings.ContainsRune(registrationCodeAlphabet, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
		if seen[code] {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = true
	}
}
