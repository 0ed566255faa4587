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
	ErrTenantAlreadyExists = errors.New("tenant with this slug already exists")
	ErrTenantNotFound      = errors.New("tenant not found")
)

// TenantService defines the interface for tenant management operations
type TenantService interface {
	// Create creates a new tenant
	Create(ctx context.Context, req *dto.CreateTenantRequest) (*dto.TenantResponse, error)
	// GetByID retrieves a tenant by ID
	GetByID(ctx context.Context, id string) (*dto.TenantResponse, error)
	// GetBySlug retrieves a tenant by slug
	GetBySlug(ctx context.Context, slug string) (*dto.TenantResponse, error)
	// List retrieves tenants with pagination and filters
	List(ctx context.Context, filter *dto.TenantListFilter) ([]*dto.TenantResponse, int, error)
	// Update updates a tenant
	Update(ctx context.Context, id string, req *dto.UpdateTenantRequest) (*dto.TenantResponse, error)
	// Delete soft deletes a tenant
	Delete(ctx context.Context, id string) error
}

// tenantService implements TenantService
type tenantService struct {
	tenantRepo repository.TenantRepository
}

// NewTenantService creates a new TenantService
func NewTenantService(tenantRepo repository.TenantRepository) TenantService {
	return &tenantService{
		tenantRepo: tenantRepo,
	}
}

// Create creates a new tenant
func (s *tenantService) Create(ctx context.Context, req *dto.CreateTenantRequest) (*dto.TenantResponse, error) {
	if valid, errMsg := req.Validate(); !valid {
		return nil, errors.New(errMsg)
	}

	exists, err := s.tenantRepo.ExistsBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrTenantAlreadyExists
	}

	now := time.Now()
	tenant := &domain.Tenant{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Slug:      req.Slug,
		Domain:    req.Domain,
		LogoURL:   req.LogoURL,
		Settings:  req.Settings,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if tenant.Settings == nil {
		tenant.Settings = make(map[string]interface{})
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrTenantAlreadyExists
		}
		return nil, err
	}

	return dto.ToTenantResponse(tenant), nil
}

// GetByID retrieves a tenant by ID
func (s *tenantService) GetByID(ctx context.Context, id string) (*dto.TenantResponse, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	return dto.ToTenantResponse(tenant), nil
}

// GetBySlug retrieves a tenant by slug
func (s *tenantService) GetBySlug(ctx context.Context, slug string) (*dto.TenantResponse, error) {
	tenant, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	return dto.ToTenantResponse(tenant), nil
}

// List retrieves tenants with pagination and filters
func (s *tenantService) List(ctx context.Context, filter *dto.TenantListFilter) ([]*dto.TenantResponse, int, error) {
	filter.SetDefaults()

	tenants, total, err := s.tenantRepo.List(ctx, filter.Page, filter.Limit, filter.IsActive, filter.Search)
	if err != nil {
		return nil, 0, err
	}
	return dto.ToTenantResponses(tenants), total, nil
}

// Update updates a tenant
func (s *tenantService) Update(ctx context.Context, id string, req *dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	if valid, errMsg := req.Validate(); !valid {
		return nil, errors.New(errMsg)
	}

	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}

	if req.Name != "" {
		tenant.Name = req.Name
	}
	if req.Domain != "" {
		tenant.Domain = req.Domain
	}
	if req.LogoURL != "" {
		tenant.LogoURL = req.LogoURL
	}
	if req.Settings != nil {
		tenant.Settings = req.Settings
	}
	if req.IsActive != nil {
		tenant.IsActive = *req.IsActive
	}
	tenant.UpdatedAt = time.Now()

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return dto.ToTenantResponse(tenant), nil
}

// Delete soft deletes a tenant
func (s *tenantService) Delete(ctx context.Context, id string) error {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tenant == nil {
		return ErrTenantNotFound
	}
	return s.tenantRepo.SoftDelete(ctx, id)
}
