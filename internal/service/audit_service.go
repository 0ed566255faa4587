package service

import (
	"context"

	"github.com/shegerlabs/accreditation-service/internal/dto"
	"github.com/shegerlabs/accreditation-service/internal/repository"
)

// AuditService exposes read access to the append-only audit log. Writes only
// happen inside the repositories, coupled to the mutations they describe.
type AuditService interface {
	// ListByEntity retrieves the history of one entity, oldest first
	ListByEntity(ctx context.Context, entityType, entityID string, page, limit int) ([]*dto.AuditEntryResponse, int, error)
	// List retrieves audit entries with optional filters, newest first
	List(ctx context.Context, filter *dto.AuditListFilter) ([]*dto.AuditEntryResponse, int, error)
}

// auditService implements AuditService
type auditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService creates a new AuditService
func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{
		auditRepo: auditRepo,
	}
}

// ListByEntity retrieves the history of one entity, oldest first
func (s *auditService) ListByEntity(ctx context.Context, entityType, entityID string, page, limit int) ([]*dto.AuditEntryResponse, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	entries, total, err := s.auditRepo.ListByEntity(ctx, entityType, entityID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return dto.ToAuditEntryResponses(entries), total, nil
}

// List retrieves audit entries with optional filters, newest first
func (s *auditService) List(ctx context.Context, filter *dto.AuditListFilter) ([]*dto.AuditEntryResponse, int, error) {
	filter.SetDefaults()

	entries, total, err := s.auditRepo.List(ctx, filter.Page, filter.Limit, filter.Action, filter.ActorID)
	if err != nil {
		return nil, 0, err
	}
	return dto.ToAuditEntryResponses(entries), total, nil
}
