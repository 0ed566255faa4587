package service

import (
	"context"
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

var (
	// ErrDraftNotFound is returned when the session has no draft: never
	// started, already completed, destroyed, or expired.
	ErrDraftNotFound = errors.New("registration draft not found")
	// ErrSelfRegisterNotAllowed is returned when the participant type does
	// not permit self registration.
	ErrSelfRegisterNotAllowed = errors.New("participant type does not allow self registration")
	// ErrWizardIncomplete is returned when completion is attempted before
	// the general details step.
	ErrWizardIncomplete = errors.New("general details are required before completion")
	// ErrDocumentsIncomplete is returned when required documents are missing
	// at completion. The wizard state response lists which.
	ErrDocumentsIncomplete = errors.New("required documents are missing")
)

// WizardService drives the multi-request registration flow. All intermediate
// state lives in the draft store under the session ID; nothing touches the
// participant tables until Complete, which atomically persists the record
// bound to the first workflow step.
type WizardService interface {
	// Start opens a draft for an event and participant type
	Start(ctx context.Context, tenantID string, req *dto.StartWizardRequest) (*dto.WizardStateResponse, error)
	// SaveGeneral stores the identity step
	SaveGeneral(ctx context.Context, sessionID string, req *dto.WizardGeneralRequest) (*dto.WizardStateResponse, error)
	// SaveProfessional stores the affiliation step
	SaveProfessional(ctx context.Context, sessionID string, req *dto.WizardProfessionalRequest) (*dto.WizardStateResponse, error)
	// UploadDocument stores one supporting document into the draft
	UploadDocument(ctx context.Context, sessionID, kind, fileName, contentType string, size int64, r io.Reader) (*dto.WizardStateResponse, error)
	// SaveWishlist stores the requested meeting IDs
	SaveWishlist(ctx context.Context, sessionID string, req *dto.WizardWishlistRequest) (*dto.WizardStateResponse, error)
	// State returns the current draft state for resumption
	State(ctx context.Context, sessionID string) (*dto.WizardStateResponse, error)
	// Destroy discards the draft; destroying a missing draft is a no-op
	Destroy(ctx context.Context, sessionID string) error
	// Complete commits the draft into a participant record
	Complete(ctx context.Context, sessionID string) (*dto.CompleteWizardResponse, error)
}

// wizardService implements WizardService
type wizardService struct {
	drafts          DraftStore
	participantRepo repository.ParticipantRepository
	typeRepo        repository.ParticipantTypeRepository
	eventRepo       repository.EventRepository
	workflowSvc     WorkflowService
	blobs           storage.BlobStore
	draftTTL        time.Duration
}

// NewWizardService creates a new WizardService
func NewWizardService(
	drafts DraftStore,
	participantRepo repository.ParticipantRepository,
	typeRepo repository.ParticipantTypeRepository,
	eventRepo repository.EventRepository,
	workflowSvc WorkflowService,
	blobs storage.BlobStore,
	draftTTL time.Duration,
) WizardService {
	return &wizardService{
		drafts:          drafts,
		participantRepo: participantRepo,
		typeRepo:        typeRepo,
		eventRepo:       eventRepo,
		workflowSvc:     workflowSvc,
		blobs:           blobs,
		draftTTL:        draftTTL,
	}
}

// Start opens a draft. The workflow is resolved up front so a misconfigured
// participant type fails at the first request, not at submission.
func (s *wizardService) Start(ctx context.Context, tenantID string, req *dto.StartWizardRequest) (*dto.WizardStateResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil || event.TenantID != tenantID {
		return nil, ErrEventNotFound
	}
	if !event.IsOpenForRegistration() {
		return nil, ErrEventNotOpen
	}

	pt, err := s.typeRepo.GetByID(ctx, req.ParticipantTypeID)
	if err != nil {
		return nil, err
	}
	if pt == nil || pt.TenantID != tenantID {
		return nil, ErrParticipantTypeNotFound
	}
	if !pt.AllowSelfRegister {
		return nil, ErrSelfRegisterNotAllowed
	}

	if _, err := s.workflowSvc.Resolve(ctx, tenantID, req.EventID, req.ParticipantTypeID); err != nil {
		return nil, err
	}

	draft := &WizardDraft{
		SessionID:         uuid.New().String(),
		TenantID:          tenantID,
		EventID:           req.EventID,
		ParticipantTypeID: req.ParticipantTypeID,
		CreatedAt:         time.Now(),
	}
	if err := s.drafts.Save(ctx, draft, s.draftTTL); err != nil {
		return nil, err
	}
	return s.stateResponse(ctx, draft, pt)
}

// SaveGeneral stores the identity step
func (s *wizardService) SaveGeneral(ctx context.Context, sessionID string, req *dto.WizardGeneralRequest) (*dto.WizardStateResponse, error) {
	if valid, errMsg := req.Validate(); !valid {
		return nil, errors.New(errMsg)
	}

	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	general := *req
	draft.General = &general
	if err := s.drafts.Save(ctx, draft, s.draftTTL); err != nil {
		return nil, err
	}
	return s.stateResponse(ctx, draft, nil)
}

// SaveProfessional stores the affiliation step
func (s *wizardService) SaveProfessional(ctx context.Context, sessionID string, req *dto.WizardProfessionalRequest) (*dto.WizardStateResponse, error) {
	if valid, errMsg := req.Validate(); !valid {
		return nil, errors.New(errMsg)
	}

	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	professional := *req
	draft.Professional = &professional
	if err := s.drafts.Save(ctx, draft, s.draftTTL); err != nil {
		return nil, err
	}
	return s.stateResponse(ctx, draft, nil)
}

// UploadDocument stores one supporting document into the draft. Uploading the
// same kind again replaces the earlier file.
func (s *wizardService) UploadDocument(ctx context.Context, sessionID, kind, fileName, contentType string, size int64, r io.Reader) (*dto.WizardStateResponse, error) {
	docKind := domain.DocumentKind(kind)
	if !docKind.IsValid() {
		return nil, ErrInvalidDocumentKind
	}

	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	container := "wizard-" + draft.SessionID
	storedName := fmt.Sprintf("%s-%s", docKind, fileName)
	if err := s.blobs.Put(ctx, container, storedName, r); err != nil {
		return nil, err
	}

	info := dto.WizardDocumentInfo{
		Kind:        string(docKind),
		FileName:    storedName,
		Container:   container,
		ContentType: contentType,
		SizeBytes:   size,
	}
	replaced := false
	for i := range draft.Documents {
		if draft.Documents[i].Kind == info.Kind {
			draft.Documents[i] = info
			replaced = true
			break
		}
	}
	if !replaced {
		draft.Documents = append(draft.Documents, info)
	}

	if err := s.drafts.Save(ctx, draft, s.draftTTL); err != nil {
		return nil, err
	}
	return s.stateResponse(ctx, draft, nil)
}

// SaveWishlist stores the requested meeting IDs
func (s *wizardService) SaveWishlist(ctx context.Context, sessionID string, req *dto.WizardWishlistRequest) (*dto.WizardStateResponse, error) {
	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	draft.MeetingIDs = req.MeetingIDs
	draft.WishlistSaved = true
	if err := s.drafts.Save(ctx, draft, s.draftTTL); err != nil {
		return nil, err
	}
	return s.stateResponse(ctx, draft, nil)
}

// State returns the current draft state for resumption
func (s *wizardService) State(ctx context.Context, sessionID string) (*dto.WizardStateResponse, error) {
	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.stateResponse(ctx, draft, nil)
}

// Destroy discards the draft; destroying a missing draft is a no-op
func (s *wizardService) Destroy(ctx context.Context, sessionID string) error {
	return s.drafts.Delete(ctx, sessionID)
}

// Complete commits the draft into a participant record bound to the first
// step of the resolved workflow. Required documents gate entry: completion
// fails until every kind the participant type demands has been uploaded.
func (s *wizardService) Complete(ctx context.Context, sessionID string) (*dto.CompleteWizardResponse, error) {
	draft, err := s.getDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if draft.General == nil {
		return nil, ErrWizardIncomplete
	}

	pt, err := s.typeRepo.GetByID(ctx, draft.ParticipantTypeID)
	if err != nil {
		return nil, err
	}
	if pt == nil {
		return nil, ErrParticipantTypeNotFound
	}
	if len(s.missingDocuments(draft, pt)) > 0 {
		return nil, ErrDocumentsIncomplete
	}

	event, err := s.eventRepo.GetByID(ctx, draft.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if !event.IsOpenForRegistration() {
		return nil, ErrEventNotOpen
	}

	workflow, err := s.workflowSvc.Resolve(ctx, draft.TenantID, draft.EventID, draft.ParticipantTypeID)
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
		TenantID:          draft.TenantID,
		EventID:           draft.EventID,
		ParticipantTypeID: draft.ParticipantTypeID,
		FirstName:         draft.General.FirstName,
		LastName:          draft.General.LastName,
		Email:             draft.General.Email,
		Phone:             draft.General.Phone,
		PassportNumber:    draft.General.PassportNumber,
		Nationality:       draft.General.Nationality,
		Status:            domain.StatusInProgress,
		StepID:            &firstStepID,
		RegistrationCode:  code,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if draft.Professional != nil {
		p.Organization = draft.Professional.Organization
		p.JobTitle = draft.Professional.JobTitle
	}
	p.SetWishIDs(draft.MeetingIDs)

	for _, doc := range draft.Documents {
		p.Documents = append(p.Documents, domain.ParticipantDocument{
			ID:            uuid.New().String(),
			ParticipantID: p.ID,
			Kind:          domain.DocumentKind(doc.Kind),
			Container:     doc.Container,
			FileName:      doc.FileName,
			ContentType:   doc.ContentType,
			SizeBytes:     doc.SizeBytes,
			UploadedAt:    now,
		})
	}

	entry := &domain.AuditEntry{
		ID:          uuid.New().String(),
		Action:      domain.AuditActionRegister,
		EntityType:  domain.EntityTypeParticipant,
		EntityID:    p.ID,
		ActorID:     p.ID, // self registration
		Description: "Registered at step " + first.Name,
		CreatedAt:   now,
	}

	if err := s.participantRepo.Create(ctx, p, entry); err != nil {
		return nil, err
	}

	// The draft is spent. A failed delete only means the TTL cleans it up.
	_ = s.drafts.Delete(ctx, sessionID)

	return &dto.CompleteWizardResponse{
		ParticipantID:    p.ID,
		RegistrationCode: p.RegistrationCode,
		Status:           string(p.Status),
	}, nil
}

func (s *wizardService) getDraft(ctx context.Context, sessionID string) (*WizardDraft, error) {
	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

// missingDocuments returns the required kinds the draft has not uploaded yet
func (s *wizardService) missingDocuments(draft *WizardDraft, pt *domain.ParticipantType) []string {
	uploaded := make(map[string]bool, len(draft.Documents))
	for _, d := range draft.Documents {
		uploaded[d.Kind] = true
	}
	var missing []string
	for _, kind := range pt.RequiredDocuments {
		if !uploaded[string(kind)] {
			missing = append(missing, string(kind))
		}
	}
	return missing
}

// stateResponse assembles the resumable draft view. pt may be nil, in which
// case the participant type is loaded to compute missing documents.
func (s *wizardService) stateResponse(ctx context.Context, draft *WizardDraft, pt *domain.ParticipantType) (*dto.WizardStateResponse, error) {
	if pt == nil {
		loaded, err := s.typeRepo.GetByID(ctx, draft.ParticipantTypeID)
		if err != nil {
			return nil, err
		}
		pt = loaded
	}

	missing := []string{}
	if pt != nil {
		if m := s.missingDocuments(draft, pt); m != nil {
			missing = m
		}
	}

	// "holds data" per step in dto.WizardStepOrder. The documents step holds
	// data once anything is uploaded; it counts as completed only when every
	// required kind is present.
	holdsData := map[string]bool{
		dto.WizardStepGeneral:      draft.General != nil,
		dto.WizardStepProfessional: draft.Professional != nil,
		dto.WizardStepWishlist:     draft.WishlistSaved,
		dto.WizardStepDocuments:    len(draft.Documents) > 0,
	}

	currentStep := len(dto.WizardStepOrder) - 1
	for i, step := range dto.WizardStepOrder {
		if !holdsData[step] {
			currentStep = i
			break
		}
	}
	hasData := holdsData[dto.WizardStepGeneral]

	completed := []string{}
	for _, step := range dto.WizardStepOrder {
		if step == dto.WizardStepDocuments {
			if len(missing) == 0 {
				completed = append(completed, step)
			}
			continue
		}
		if holdsData[step] {
			completed = append(completed, step)
		}
	}

	ttl, err := s.drafts.TTL(ctx, draft.SessionID)
	if err != nil {
		return nil, err
	}

	return &dto.WizardStateResponse{
		SessionID:         draft.SessionID,
		EventID:           draft.EventID,
		ParticipantTypeID: draft.ParticipantTypeID,
		General:           draft.General,
		Professional:      draft.Professional,
		Documents:         draft.Documents,
		MeetingIDs:        draft.MeetingIDs,
		MissingDocuments:  missing,
		CompletedSteps:    completed,
		CurrentStep:       currentStep,
		HasData:           hasData,
		ExpiresInSeconds:  int64(ttl.Seconds()),
	}, nil
}
