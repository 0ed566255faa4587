package di

import (
	"github.com/shegerlabs/accreditation-service/internal/handler"
	"github.com/shegerlabs/accreditation-service/internal/repository"
	"github.com/shegerlabs/accreditation-service/internal/service"
	"github.com/shegerlabs/accreditation-service/internal/storage"
	"github.com/shegerlabs/accreditation-service/pkg/config"
	"github.com/shegerlabs/accreditation-service/pkg/database"
	"github.com/shegerlabs/accreditation-service/pkg/redis"
)

// Container holds all dependencies for the accreditation service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Cache *redis.Client
	Blobs storage.BlobStore

	// Repositories
	TenantRepo      repository.TenantRepository
	TypeRepo        repository.ParticipantTypeRepository
	EventRepo       repository.EventRepository
	WorkflowRepo    repository.WorkflowRepository
	ParticipantRepo repository.ParticipantRepository
	AuditRepo       repository.AuditRepository

	// Services
	TenantService   service.TenantService
	EventService    service.EventService
	TypeService     service.ParticipantTypeService
	WorkflowService service.WorkflowService
	Engine          service.EngineService
	Participants    service.ParticipantService
	Wizard          service.WizardService
	Audit           service.AuditService

	// Handlers
	Router *handler.Router
}

// NewContainer wires repositories, services and handlers together
func NewContainer(cfg *config.Config, db *database.PostgresDB, cache *redis.Client, blobs storage.BlobStore) *Container {
	c := &Container{
		DB:    db,
		Cache: cache,
		Blobs: blobs,
	}

	c.TenantRepo = repository.NewPostgresTenantRepository(db.Pool)
	c.TypeRepo = repository.NewPostgresParticipantTypeRepository(db.Pool)
	c.EventRepo = repository.NewPostgresEventRepository(db.Pool)
	c.WorkflowRepo = repository.NewPostgresWorkflowRepository(db.Pool)
	c.ParticipantRepo = repository.NewPostgresParticipantRepository(db.Pool)
	c.AuditRepo = repository.NewPostgresAuditRepository(db.Pool)

	c.TenantService = service.NewTenantService(c.TenantRepo)
	c.EventService = service.NewEventService(c.EventRepo)
	c.TypeService = service.NewParticipantTypeService(c.TypeRepo)
	c.WorkflowService = service.NewWorkflowService(c.WorkflowRepo)
	c.Engine = service.NewEngineService(c.ParticipantRepo, c.WorkflowRepo)
	c.Participants = service.NewParticipantService(c.ParticipantRepo, c.TypeRepo, c.EventRepo, c.WorkflowRepo, c.WorkflowService, c.Blobs)
	c.Wizard = service.NewWizardService(
		service.NewRedisDraftStore(cache),
		c.ParticipantRepo, c.TypeRepo, c.EventRepo, c.WorkflowService, c.Blobs,
		cfg.Wizard.DraftTTL,
	)
	c.Audit = service.NewAuditService(c.AuditRepo)

	c.Router = handler.NewRouter(
		handler.NewHealthHandler(db, cache),
		handler.NewTenantHandler(c.TenantService),
		handler.NewEventHandler(c.EventService),
		handler.NewParticipantTypeHandler(c.TypeService),
		handler.NewWorkflowHandler(c.WorkflowService),
		handler.NewParticipantHandler(c.Participants, c.Engine),
		handler.NewWizardHandler(c.Wizard),
		handler.NewAuditHandler(c.Audit),
		cfg.JWT.Secret,
	)

	return c
}
