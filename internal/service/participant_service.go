package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shegerlabs/accreditation-service/internal/domain"
	"github.com/shegerlabs/accreditation-service/internal/dto"
	"github.com/shegerlabs/accreditation-service/internal/repository"
	"github.com/shegerlabs/accreditation-service/internal/storage"
)

// ErrInvalidDocumentKind is returned when an upload declares an unknown kind
var ErrInvalidDocumentKind = errors.New("unknown document kind")

// registrationCodeAlphabet excludes easily-confused characters (0/O, 1/I)
const registrationCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ParticipantService defines back-office participant operations: direct
// registration, lookups, the per-role work queue, wishlist edits and document
// uploads. Step and status mutation is the engine's job, not this service's.
type ParticipantService interface {
	// Register creates a participant directly, bound to the first step of the
	// resolved workflow.
	Register(ctx context.Context, actorID string, req *dto.RegisterParticipantRequest) (*dto.ParticipantResponse, error)
	// GetByID retrieves a participant within a tenant
	GetByID(ctx context.Context, tenantID, id string) (*dto.ParticipantResponse, error)
	// GetStatusByCode retrieves the public status view by registration code
	GetStatusByCode(ctx context.Context, code string) (*dto.ParticipantStatusResponse, error)
	// Queue retrieves the participants currently actionable by the actor's roles
	Queue(ctx context.Context, tenantID string, roles []string, filter *dto.QueueFilter) ([]*dto.ParticipantResponse, int, error)
	// UpdateWishList replaces a participant's requested meetings
	UpdateWishList(ctx context.Context, tenantID, id string, req *dto.UpdateWishListRequest) (*dto.ParticipantResponse, error)
	// UploadDocument stores a document blob and attaches it to the participant
	UploadDocument(ctx context.Context, tenantID, id, kind, fileName, contentType string, size int64, r io.Reader) (*dto.ParticipantResponse, error)
}

// participantService implements ParticipantService
type participantService struct {
	participantRepo repository.ParticipantRepository
	typeRepo        repository.ParticipantTypeRepository
	eventRepo       repository.EventRepository
	workflowRepo    repository.WorkflowRepository
	workflowSvc     WorkflowService
	blobs           storage.BlobStore
}

// NewParticipantService creates a new ParticipantService
func NewParticipantService(
	participantRepo repository.ParticipantRepository,
	typeRepo repository.ParticipantTypeRepository,
	eventRepo repository.EventRepository,
	workflowRepo repository.WorkflowRepository,
	workflowSvc WorkflowService,
	blobs storage.BlobStore,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		typeRepo:        typeRepo,
		eventRepo:       eventRepo,
		workflowRepo:    workflowRepo,
		workflowSvc:     workflowSvc,
		blobs:           blobs,
	}
}

// Register creates a participant directly. Document gating does not apply to
// back-office registration; required documents can be uploaded afterwards.
func (s *participantService) Register(ctx context.Context, actorID string, req *dto.RegisterParticipantRequest) (*dto.ParticipantResponse, error) {
	if valid, errMsg := req.Validate(); !valid {
		return nil, errors.New(errMsg)
	}

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil || event.TenantID != req.TenantID {
		return nil, ErrEventNotFound
	}
	if !event.IsOpenForRegistration() {
		return nil, ErrEventNotOpen
	}

	pt, err := s.typeRepo.GetByID(ctx, req.ParticipantTypeID)
	if err != nil {
		return nil, err
	}
	if pt == nil || pt.TenantID != req.TenantID {
		return nil, ErrParticipantTypeNotFound
	}

	workflow, err := s.workflowSvc.Resolve(ctx, req.TenantID, req.EventID, req.ParticipantTypeID)
	if err != nil {
		return nil, err
	}
	first := workflow.FirstStep()
	if first == nil {
		return nil, ErrWorkflowMisconfigured
	}

	code, err := generateRegistrationCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	firstStepID := first.ID
	p := &domain.Participant{
		ID:                uuid.New().String(),
		TenantID:          req.TenantID,
		EventID:           req.EventID,
		ParticipantTypeID: req.ParticipantTypeID,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
		PassportNumber:    req.PassportNumber,
		Nationality:       req.Nationality,
		Organization:      req.Organization,
		JobTitle:          req.JobTitle,
		Status:            domain.StatusInProgress,
		StepID:            &firstStepID,
		RegistrationCode:  code,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	p.SetWishIDs(req.WishMeetingIDs)

	entry := &domain.AuditEntry{
		ID:          uuid.New().String(),
		Action:      domain.AuditActionRegister,
		EntityType:  domain.EntityTypeParticipant,
		EntityID:    p.ID,
		ActorID:     actorID,
		Description: "Registered at step " + first.Name,
		CreatedAt:   now,
	}

	if err := s.participantRepo.Create(ctx, p, entry); err != nil {
		return nil, err
	}
	return dto.ToParticipantResponse(p, first.Name), nil
}

// GetByID retrieves a participant within a tenant
func (s *participantService) GetByID(ctx context.Context, tenantID, id string) (*dto.ParticipantResponse, error) {
	p, err := s.participantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.TenantID != tenantID {
		return nil, ErrParticipantNotFound
	}
	return dto.ToParticipantResponse(p, s.stepName(ctx, p)), nil
}

// GetStatusByCode retrieves the public status view by registration code
func (s *participantService) GetStatusByCode(ctx context.Context, code string) (*dto.ParticipantStatusResponse, error) {
	p, err := s.participantRepo.GetByRegistrationCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	return dto.ToParticipantStatusResponse(p, s.stepName(ctx, p)), nil
}

// Queue retrieves the participants currently actionable by the actor's roles.
// Printed participants never appear: their status retires them from the query.
func (s *participantService) Queue(ctx context.Context, tenantID string, roles []string, filter *dto.QueueFilter) ([]*dto.ParticipantResponse, int, error) {
	filter.SetDefaults()

	participants, total, err := s.participantRepo.ListByStepRoles(ctx, tenantID, roles, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*dto.ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		result = append(result, dto.ToParticipantResponse(p, s.stepName(ctx, p)))
	}
	return result, total, nil
}

// UpdateWishList replaces a participant's requested meetings
func (s *participantService) UpdateWishList(ctx context.Context, tenantID, id string, req *dto.UpdateWishListRequest) (*dto.ParticipantResponse, error) {
	p, err := s.participantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.TenantID != tenantID {
		return nil, ErrParticipantNotFound
	}

	p.SetWishIDs(req.MeetingIDs)
	if err := s.participantRepo.UpdateWishList(ctx, id, p.WishList); err != nil {
		return nil, err
	}
	return dto.ToParticipantResponse(p, s.stepName(ctx, p)), nil
}

// UploadDocument stores a document blob and attaches it to the participant.
// The blob lives in a per-participant container; only the address is recorded.
func (s *participantService) UploadDocument(ctx context.Context, tenantID, id, kind, fileName, contentType string, size int64, r io.Reader) (*dto.ParticipantResponse, error) {
	docKind := domain.DocumentKind(kind)
	if !docKind.IsValid() {
		return nil, ErrInvalidDocumentKind
	}

	p, err := s.participantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.TenantID != tenantID {
		return nil, ErrParticipantNotFound
	}

	container := "participant-" + p.ID
	storedName := fmt.Sprintf("%s-%s", docKind, fileName)
	if err := s.blobs.Put(ctx, container, storedName, r); err != nil {
		return nil, err
	}

	doc := &domain.ParticipantDocument{
		ID:            uuid.New().String(),
		ParticipantID: p.ID,
		Kind:          docKind,
		Container:     container,
		FileName:      storedName,
		ContentType:   contentType,
		SizeBytes:     size,
		UploadedAt:    time.Now(),
	}
	if err := s.participantRepo.AddDocument(ctx, doc); err != nil {
		return nil, err
	}

	p.Documents = append(p.Documents, *doc)
	return dto.ToParticipantResponse(p, s.stepName(ctx, p)), nil
}

// stepName resolves the participant's current step name for display
func (s *participantService) stepName(ctx context.Context, p *domain.Participant) string {
	if p.StepID == nil {
		return ""
	}
	step, err := s.workflowRepo.GetStep(ctx, *p.StepID)
	if err != nil || step == nil {
		return ""
	}
	return step.Name
}

// generateRegistrationCode produces a short public lookup key
func generateRegistrationCode() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, len(buf))
	for i, b := range buf {
		code[i] = registrationCodeAlphabet[int(b)%len(registrationCodeAlphabet)]
	}
	return "ACR-" + string(code), nil
}
