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
	ErrParticipantTypeNotFound = errors.New("participant type not found")
	ErrParticipantTypeExists   = errors.New("participant type with this slug already exists")
)

// ParticipantTypeService defines the interface for participant type operations
type ParticipantTypeService interface {
	// Create creates a new participant type
	Create(ctx context.Context, req *dto.CreateParticipantTypeRequest) (*dto.ParticipantTypeResponse, error)
	// GetByID retrieves a participant type by ID
	GetByID(ctx context.Context, id string) (*dto.ParticipantTypeResponse, error)
	// List retrieves all participant types of a tenant
	List(ctx context.Context, tenantID string) ([]*dto.ParticipantTypeResponse, error)
	// Update updates a participant type
	Update(ctx context.Context, id string, req *dto.UpdateParticipantTypeRequest) (*dto.ParticipantTypeResponse, error)
	// Delete removes a participant type
	Delete(ctx context.Context, id string) error
}

// participantTypeService implements ParticipantTypeService
type participantTypeService struct {
	typeRepo repository.ParticipantTypeRepository
}

// NewParticipantTypeService creates a new ParticipantTypeService
func NewParticipantTypeService(typeRepo repository.ParticipantTypeRepository) ParticipantTypeService {
	return &participantTypeService{
		typeRepo: typeRepo,
	}
}

// Create creates a new participant type
func (s *participantTypeService) Create(ctx context.Context, req *dto.CreateParticipantTypeRequest) (*dto.ParticipantTypeResponse, error) {
	if valid, errMsg := req.Validate(); !valid {
		return nil, errors.New(errMsg)
	}

	now := time.Now()
	pt := &domain.ParticipantType{
		ID:                uuid.New().String(),
		TenantID:          req.TenantID,
		Name:              req.Name,
		Slug:              req.Slug,
		RequiredDocuments: req.RequiredKinds(),
		AllowSelfRegister: req.AllowSelfRegister,
		QuotaExempt:       req.QuotaExempt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.typeRepo.Create(ctx, pt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrParticipantTypeExists
		}
		return nil, err
	}
	return dto.ToParticipantTypeResponse(pt), nil
}

// GetByID retrieves a participant type by ID
func (s *participantTypeService) GetByID(ctx context.Context, id string) (*dto.ParticipantTypeResponse, error) {
	pt, err := s.typeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pt == nil {
		return nil, ErrParticipantTypeNotFound
	}
	return dto.ToParticipantTypeResponse(pt), nil
}

// List retrieves all participant types of a tenant
func (s *participantTypeService) List(ctx context.Context, tenantID string) ([]*dto.ParticipantTypeResponse, error) {
	types, err := s.typeRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return dto.ToParticipantTypeResponses(types), nil
}

// Update updates a participant type
func (s *participantTypeService) Update(ctx context.Context, id string, req *dto.UpdateParticipantTypeRequest) (*dto.ParticipantTypeResponse, error) {
	if valid, errMsg := req.Validate(); !valid {
		return nil, errors.New(errMsg)
	}

	pt, err := s.typeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pt == nil {
		return nil, ErrParticipantTypeNotFound
	}

	if req.Name != "" {
		pt.Name = req.Name
	}
	if req.RequiredDocuments != nil {
		kinds := make([]domain.DocumentKind, 0, len(req.RequiredDocuments))
		for _, d := range req.RequiredDocuments {
			kinds = append(kinds, domain.DocumentKind(d))
		}
		pt.RequiredDocuments = kinds
	}
	if req.AllowSelfRegister != nil {
		pt.AllowSelfRegister = *req.AllowSelfRegister
	}
	if req.QuotaExempt != nil {
		pt.QuotaExempt = *req.QuotaExempt
	}
	pt.UpdatedAt = time.Now()

	if err := s.typeRepo.Update(ctx, pt); err != nil {
		return nil, err
	}
	return dto.ToParticipantTypeResponse(pt), nil
}

// Delete removes a participant type
func (s *participantTypeService) Delete(ctx context.Context, id string) error {
	pt, err := s.typeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if pt == nil {
		return ErrParticipantTypeNotFound
	}
	return s.typeRepo.Delete(ctx, id)
}
